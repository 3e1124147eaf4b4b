package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/backend"
	"github.com/akolanti/ChatPDF/internal/chat"
	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockUploadBackend struct {
	OnUpload func(ctx context.Context, docs []backend.Document) (api.UploadResponse, error)
	Calls    [][]backend.Document
}

func (m *MockUploadBackend) UploadPDFs(ctx context.Context, docs []backend.Document) (api.UploadResponse, error) {
	m.Calls = append(m.Calls, docs)
	if m.OnUpload != nil {
		return m.OnUpload(ctx, docs)
	}
	return api.UploadResponse{Message: "ok", Chunks: 1, SessionID: "sess-1"}, nil
}

type recordingSink struct {
	mu     sync.Mutex
	files  []chatModel.UploadedFile
	events []chatModel.Event
}

func (s *recordingSink) Dispatch(ev chatModel.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if started, ok := ev.(chatModel.SessionStarted); ok {
		s.files = append(s.files, started.Files...)
	}
}

func (s *recordingSink) UploadedFiles() []chatModel.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chatModel.UploadedFile(nil), s.files...)
}

func (s *recordingSink) botMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, ev := range s.events {
		if msg, ok := ev.(chatModel.BotMessage); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (s *recordingSink) sessions() []chatModel.SessionStarted {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []chatModel.SessionStarted
	for _, ev := range s.events {
		if started, ok := ev.(chatModel.SessionStarted); ok {
			out = append(out, started)
		}
	}
	return out
}

func pdfFile(name string) SelectedFile {
	return FromBytes(name, "application/pdf", []byte("%PDF-1.4 "+name))
}

func TestHandleFileUpload_RejectsWholeBatchOnNonPDF(t *testing.T) {
	mock := &MockUploadBackend{}
	sink := &recordingSink{}
	u := New(mock, sink, time.Second)

	u.HandleFileUpload(context.Background(), []SelectedFile{
		pdfFile("a.pdf"),
		FromBytes("notes.txt", "text/plain", []byte("hello")),
		pdfFile("b.pdf"),
	})

	assert.Empty(t, mock.Calls, "no request may be sent")
	assert.Equal(t, []string{"Please upload only PDF files."}, sink.botMessages())
	assert.Empty(t, sink.sessions())
}

func TestHandleFileUpload_SniffsUndeclaredType(t *testing.T) {
	mock := &MockUploadBackend{}
	sink := &recordingSink{}
	u := New(mock, sink, time.Second)

	u.HandleFileUpload(context.Background(), []SelectedFile{
		FromBytes("scan.pdf", "application/octet-stream", []byte("%PDF-1.7\n%binary")),
		FromBytes("photo.pdf", "", []byte("\x89PNG\r\n\x1a\n0000")),
	})

	assert.Empty(t, mock.Calls)
	assert.Equal(t, []string{"Please upload only PDF files."}, sink.botMessages())
}

func TestHandleFileUpload_SkipsDuplicatesAndUploadsTheRest(t *testing.T) {
	mock := &MockUploadBackend{
		OnUpload: func(ctx context.Context, docs []backend.Document) (api.UploadResponse, error) {
			return api.UploadResponse{SessionID: "sess-2", Chunks: 3}, nil
		},
	}
	sink := &recordingSink{files: []chatModel.UploadedFile{{Name: "report.pdf"}}}
	u := New(mock, sink, time.Second)

	u.HandleFileUpload(context.Background(), []SelectedFile{pdfFile("report.pdf"), pdfFile("new.pdf"), pdfFile("new.pdf")})

	require.Len(t, mock.Calls, 1)
	require.Len(t, mock.Calls[0], 1)
	assert.Equal(t, "new.pdf", mock.Calls[0][0].Name)

	assert.Equal(t, []string{
		`File "report.pdf" is already uploaded.`,
		`File "new.pdf" is already uploaded.`,
	}, sink.botMessages())

	sessions := sink.sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-2", sessions[0].SessionID)
	require.Len(t, sessions[0].Files, 1)
	assert.Equal(t, "new.pdf", sessions[0].Files[0].Name)
}

func TestHandleFileUpload_NothingNew(t *testing.T) {
	tests := []struct {
		name     string
		existing []chatModel.UploadedFile
		files    []SelectedFile
		want     []string
	}{
		{
			name:     "All_Duplicates",
			existing: []chatModel.UploadedFile{{Name: "a.pdf"}},
			files:    []SelectedFile{pdfFile("a.pdf")},
			want:     []string{`File "a.pdf" is already uploaded.`},
		},
		{
			name:  "Empty_Selection",
			files: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockUploadBackend{}
			sink := &recordingSink{files: tt.existing}
			New(mock, sink, time.Second).HandleFileUpload(context.Background(), tt.files)

			assert.Empty(t, mock.Calls)
			assert.Equal(t, tt.want, sink.botMessages())
		})
	}
}

func TestHandleFileUpload_BackendOutcomes(t *testing.T) {
	tests := []struct {
		name string
		resp api.UploadResponse
		err  error
		want string
	}{
		{
			name: "Missing_Session",
			resp: api.UploadResponse{Message: "ok"},
			want: "No session ID returned from the server.",
		},
		{
			name: "Server_Detail",
			err:  &backend.ServerError{StatusCode: http.StatusBadRequest, Detail: "File 'a.pdf' is not a valid PDF."},
			want: "Error uploading files: File 'a.pdf' is not a valid PDF.",
		},
		{
			name: "Server_Without_Detail",
			err:  &backend.ServerError{StatusCode: http.StatusInternalServerError},
			want: "Error uploading files: Failed to upload PDF",
		},
		{
			name: "Transport_Failure",
			err:  errors.New("dial tcp: connection refused"),
			want: "Error uploading files: dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockUploadBackend{
				OnUpload: func(ctx context.Context, docs []backend.Document) (api.UploadResponse, error) {
					return tt.resp, tt.err
				},
			}
			sink := &recordingSink{}
			New(mock, sink, time.Second).HandleFileUpload(context.Background(), []SelectedFile{pdfFile("a.pdf")})

			assert.Equal(t, []string{tt.want}, sink.botMessages())
			assert.Empty(t, sink.sessions())
			assert.Empty(t, sink.UploadedFiles())
		})
	}
}

func TestHandleFileUpload_BusyAlwaysCleared(t *testing.T) {
	sink := &recordingSink{}
	New(&MockUploadBackend{}, sink, time.Second).HandleFileUpload(context.Background(),
		[]SelectedFile{FromBytes("x.txt", "text/plain", []byte("x"))})

	require.NotEmpty(t, sink.events)
	assert.Equal(t, chatModel.UploadBusy{Busy: true}, sink.events[0])
	assert.Equal(t, chatModel.UploadBusy{Busy: false}, sink.events[len(sink.events)-1])
}

func TestHandleFileUpload_TooLarge(t *testing.T) {
	mock := &MockUploadBackend{}
	sink := &recordingSink{}
	u := New(mock, sink, time.Second)
	u.maxFileSize = 8

	u.HandleFileUpload(context.Background(), []SelectedFile{pdfFile("big.pdf")})

	assert.Empty(t, mock.Calls)
	msgs := sink.botMessages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "Error uploading files: big.pdf is larger than"), msgs[0])
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "two-pages.pdf")
	require.NoError(t, os.WriteFile(pdfPath, minimalPDF(2), 0o600))
	txtPath := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(txtPath, []byte("just some text"), 0o600))

	f, err := FromPath(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "two-pages.pdf", f.Name)
	assert.True(t, f.IsPDF())

	renamed, err := FromPath(txtPath)
	require.NoError(t, err)
	assert.False(t, renamed.IsPDF(), "type comes from the content, not the extension")

	_, err = FromPath(dir)
	assert.Error(t, err)
	_, err = FromPath(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestCountPages(t *testing.T) {
	pages, err := countPages(minimalPDF(3))
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	_, err = countPages([]byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
}

// report.pdf is uploaded, asked about, then re-selected alongside a new file.
func TestUploadThenAsk_AgainstBackend(t *testing.T) {
	var uploads [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		switch r.URL.Path {
		case "/upload_pdf/":
			var names []string
			for _, fh := range r.MultipartForm.File["files"] {
				names = append(names, fh.Filename)
			}
			uploads = append(uploads, names)
			json.NewEncoder(w).Encode(api.UploadResponse{
				Message:   "PDF processed successfully",
				Chunks:    len(names),
				SessionID: fmt.Sprintf("sess-%d", len(uploads)),
			})
		case "/ask/":
			json.NewEncoder(w).Encode(api.AskResponse{Answer: "answer for " + r.FormValue("session_id")})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := backend.NewClient(server.URL, server.Client())
	controller := chat.NewController(client, chat.Options{TypingInterval: 5 * time.Millisecond, RequestTimeout: time.Second})
	defer controller.Close()
	u := New(client, controller, time.Second)

	u.HandleFileUpload(context.Background(), []SelectedFile{FromBytes("report.pdf", "application/pdf", minimalPDF(1))})
	controller.SendMessage(context.Background(), "summary?")
	u.HandleFileUpload(context.Background(), []SelectedFile{
		FromBytes("report.pdf", "application/pdf", minimalPDF(1)),
		FromBytes("appendix.pdf", "application/pdf", minimalPDF(2)),
	})

	assert.Equal(t, [][]string{{"report.pdf"}, {"appendix.pdf"}}, uploads)

	s := controller.Snapshot()
	assert.Equal(t, "sess-2", s.SessionID)
	require.Len(t, s.UploadedFiles, 2)
	assert.Equal(t, 1, s.UploadedFiles[0].Pages)
	assert.Equal(t, 2, s.UploadedFiles[1].Pages)
	assert.False(t, s.Uploading)

	var texts []string
	for _, m := range s.Messages {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"summary?", "answer for sess-1", `File "report.pdf" is already uploaded.`}, texts)
}

// minimalPDF builds a valid PDF with the given number of blank pages.
func minimalPDF(pages int) []byte {
	var objects []string
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return []byte(b.String())
}
