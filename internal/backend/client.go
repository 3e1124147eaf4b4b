package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

// Document is one PDF ready to be sent to the backend.
type Document struct {
	Name string
	Data []byte
}

// Client talks to the PDF question-answering service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger_i.Logger
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger_i.NewLogger("Backend"),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping hits the backend root. The body is only logged.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+config.HealthPath, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	var body any
	if err := c.do(req, "backend_health", &body); err != nil {
		return err
	}
	c.logger.WithTrace(ctx).Debug("backend health", "body", body)
	return nil
}

// UploadPDFs sends all documents in a single multipart request.
func (c *Client) UploadPDFs(ctx context.Context, docs []Document) (api.UploadResponse, error) {
	var result api.UploadResponse

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, doc := range docs {
		part, err := writer.CreatePart(pdfPartHeader(doc.Name))
		if err != nil {
			return result, fmt.Errorf("create part for %s: %w", doc.Name, err)
		}
		if _, err := part.Write(doc.Data); err != nil {
			return result, fmt.Errorf("write part for %s: %w", doc.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return result, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+config.UploadPath, &buf)
	if err != nil {
		return result, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	err = c.do(req, "backend_upload", &result)
	if err == nil {
		c.logger.WithTrace(ctx).Info("PDFs uploaded", "files", len(docs), "chunks", result.Chunks)
	}
	return result, err
}

// Ask posts a question scoped to sessionID.
func (c *Client) Ask(ctx context.Context, sessionID string, question string) (api.AskResponse, error) {
	var result api.AskResponse

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("session_id", sessionID); err != nil {
		return result, fmt.Errorf("write session_id: %w", err)
	}
	if err := writer.WriteField("question", question); err != nil {
		return result, fmt.Errorf("write question: %w", err)
	}
	if err := writer.Close(); err != nil {
		return result, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+config.AskPath, &buf)
	if err != nil {
		return result, fmt.Errorf("build ask request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	err = c.do(req, "backend_ask", &result)
	if err == nil {
		c.logger.WithTrace(ctx).Debug("answer received", "historyLength", len(result.ChatHistory))
	}
	return result, err
}

func (c *Client) do(req *http.Request, label string, out any) error {
	log := c.logger.WithTrace(req.Context())
	if trace, ok := req.Context().Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		req.Header.Set("X-Trace-Id", trace)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.CaptureExecutionMetrics(label, time.Since(start))
	if err != nil {
		log.Error("backend request failed", "path", req.URL.Path, "error", err)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serverErr := &ServerError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
		log.Warn("backend returned an error", "path", req.URL.Path, "status", resp.StatusCode, "detail", serverErr.Detail)
		return serverErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// the backend checks the part content type, so CreateFormFile's octet-stream won't do
func pdfPartHeader(name string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, config.UploadFormField, quoteEscaper.Replace(name)))
	h.Set("Content-Type", config.PDFMimeType)
	return h
}
