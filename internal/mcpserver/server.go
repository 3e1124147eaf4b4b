package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/akolanti/ChatPDF/internal/uploader"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Chat interface {
	SendMessage(ctx context.Context, question string)
	Snapshot() chatModel.State
}

type Uploader interface {
	HandleFileUpload(ctx context.Context, files []uploader.SelectedFile)
}

type UploadInput struct {
	Paths []string `json:"paths" jsonschema:"absolute paths of the PDF files to upload"`
}

type AskInput struct {
	Question string `json:"question" jsonschema:"question about the uploaded PDFs"`
}

type FilesInput struct{}

// ToolOutput holds the bot messages a tool call added to the chat.
type ToolOutput struct {
	Messages []string `json:"messages"`
}

type FilesOutput struct {
	Files []string `json:"files"`
}

// Server exposes one chat over MCP. Tool calls are serialized so each result only
// carries the messages of its own call.
type Server struct {
	mu       sync.Mutex
	chat     Chat
	uploader Uploader
	server   *mcp.Server
	logger   *logger_i.Logger
}

func New(chat Chat, up Uploader, version string) *Server {
	s := &Server{
		chat:     chat,
		uploader: up,
		server:   mcp.NewServer(&mcp.Implementation{Name: "chatpdf", Version: version}, nil),
		logger:   logger_i.NewLogger("MCP"),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_pdf",
		Description: "Upload PDF files so questions can be asked about them. Files already uploaded are skipped.",
	}, s.uploadPDF)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a question about the uploaded PDF files.",
	}, s.askQuestion)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "uploaded_files",
		Description: "List the PDF files uploaded so far.",
	}, s.uploadedFiles)

	return s
}

// Run serves MCP on stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Serving MCP on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) uploadPDF(ctx context.Context, req *mcp.CallToolRequest, in UploadInput) (*mcp.CallToolResult, ToolOutput, error) {
	if len(in.Paths) == 0 {
		return toolError("paths is required")
	}
	files := make([]uploader.SelectedFile, 0, len(in.Paths))
	for _, p := range in.Paths {
		f, err := uploader.FromPath(p)
		if err != nil {
			s.logger.WithTrace(ctx).Warn("Could not open file", "path", p, "error", err)
			return toolError(fmt.Sprintf("Could not open %s: %v", p, err))
		}
		files = append(files, f)
	}

	before, after := s.capture(func() {
		s.uploader.HandleFileUpload(ctx, files)
	})
	out := ToolOutput{Messages: botMessagesSince(after, len(before.Messages))}
	var names []string
	for _, f := range after.UploadedFiles {
		if !before.HasFile(f.Name) {
			names = append(names, f.Name)
		}
	}
	if len(names) > 0 {
		out.Messages = append(out.Messages, "Uploaded "+strings.Join(names, ", ")+".")
	}
	return textResult(out.Messages), out, nil
}

func (s *Server) askQuestion(ctx context.Context, req *mcp.CallToolRequest, in AskInput) (*mcp.CallToolResult, ToolOutput, error) {
	if strings.TrimSpace(in.Question) == "" {
		return toolError("question is required")
	}
	before, after := s.capture(func() {
		s.chat.SendMessage(ctx, in.Question)
	})
	out := ToolOutput{Messages: botMessagesSince(after, len(before.Messages))}
	return textResult(out.Messages), out, nil
}

func (s *Server) uploadedFiles(ctx context.Context, req *mcp.CallToolRequest, in FilesInput) (*mcp.CallToolResult, FilesOutput, error) {
	out := FilesOutput{Files: []string{}}
	for _, f := range s.chat.Snapshot().UploadedFiles {
		out.Files = append(out.Files, f.Name)
	}
	if len(out.Files) == 0 {
		return textResult([]string{"No files uploaded yet."}), out, nil
	}
	return textResult(out.Files), out, nil
}

// capture runs fn and returns the chat as it was before and after.
func (s *Server) capture(fn func()) (before chatModel.State, after chatModel.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before = s.chat.Snapshot()
	fn()
	return before, s.chat.Snapshot()
}

func botMessagesSince(state chatModel.State, from int) []string {
	messages := []string{}
	if from > len(state.Messages) {
		return messages
	}
	for _, m := range state.Messages[from:] {
		if m.Sender == chatModel.SenderBot {
			messages = append(messages, m.Text)
		}
	}
	return messages
}

func textResult(lines []string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: strings.Join(lines, "\n")}},
	}
}

func toolError(msg string) (*mcp.CallToolResult, ToolOutput, error) {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}, ToolOutput{Messages: []string{msg}}, nil
}
