package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/backend"
	"github.com/akolanti/ChatPDF/internal/chat"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/data/store"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/handlers"
	"github.com/akolanti/ChatPDF/internal/job"
	"github.com/akolanti/ChatPDF/internal/visitor"
	"github.com/akolanti/ChatPDF/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockBackend struct{}

func (m *MockBackend) Ping(ctx context.Context) error { return nil }

func (m *MockBackend) Ask(ctx context.Context, sessionID string, question string) (api.AskResponse, error) {
	return api.AskResponse{Answer: "answer to " + question}, nil
}

func (m *MockBackend) UploadPDFs(ctx context.Context, docs []backend.Document) (api.UploadResponse, error) {
	return api.UploadResponse{SessionID: "sess-1", Chunks: 4}, nil
}

// zeroReader streams zero bytes without holding them in memory.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// newTestRouter wires the handlers to a fresh registry, job store and worker pool.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	registry := visitor.NewRegistry(&MockBackend{}, store.InitInMemoryChatStore(),
		chat.Options{TypingInterval: 5 * time.Millisecond, RequestTimeout: time.Second})

	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, config.BufferLimit),
		DispatcherChannel: make(chan bool, config.MaxWorkerCount),
		JobStore:          store.InitInMemoryJobStore(),
	})
	stop := make(chan bool)
	wg := &sync.WaitGroup{}
	worker.InitWorkerPool(service, registry, stop, wg)
	handlers.InitJobHandler(service, registry)

	t.Cleanup(func() {
		close(stop)
		wg.Wait()
		registry.Close()
	})

	r := utils.NewRouter()
	RegisterRoutes(r)
	return r
}

type client struct {
	t      *testing.T
	router http.Handler
	addr   string
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	req.RemoteAddr = c.addr
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == config.VisitorCookieName {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) chat() api.ChatResponse {
	c.t.Helper()
	rec := c.do(httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	require.Equal(c.t, http.StatusOK, rec.Code)
	var resp api.ChatResponse
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (c *client) ask(question string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(api.AskRequest{Question: question})
	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(names ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", "application/pdf")
		part, err := mw.CreatePart(h)
		require.NoError(c.t, err)
		_, err = part.Write([]byte("%PDF-1.4\n%%EOF\n"))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *client) waitForJob(accepted *httptest.ResponseRecorder) api.JobResponse {
	c.t.Helper()
	require.Equal(c.t, http.StatusAccepted, accepted.Code, accepted.Body.String())
	var ack api.AcceptedResponse
	require.NoError(c.t, json.Unmarshal(accepted.Body.Bytes(), &ack))
	require.NotEmpty(c.t, ack.JobId)
	assert.Equal(c.t, "/api/jobs/"+ack.JobId, ack.StatusURL)

	var status api.JobResponse
	require.Eventually(c.t, func() bool {
		rec := c.do(httptest.NewRequest(http.MethodGet, ack.StatusURL, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Status == string(jobModel.JobStatusComplete)
	}, 2*time.Second, 10*time.Millisecond)
	return status
}

func TestChat_NewVisitorIsGreeted(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t), addr: "192.0.2.10:4000"}

	rec := c.do(httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
	require.NotNil(t, c.cookie, "visitor cookie should be issued")
	assert.True(t, utils.IsUUID(c.cookie.Value))

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, config.GreetingMessage, resp.Messages[0].Text)
	assert.Equal(t, "bot", resp.Messages[0].Sender)
	assert.False(t, resp.HasSession)
	assert.NotNil(t, resp.UploadedFiles)

	first := c.cookie.Value
	c.chat()
	assert.Equal(t, first, c.cookie.Value, "the cookie must be reused")
	assert.Len(t, c.chat().Messages, 1, "a returning visitor is not greeted twice")
}

func TestChat_AskBeforeUpload(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t), addr: "192.0.2.11:4000"}
	c.chat()

	c.waitForJob(c.ask("what is this?"))

	msgs := c.chat().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, config.NoSessionMessage, msgs[1].Text)
}

func TestChat_UploadThenAsk(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t), addr: "192.0.2.12:4000"}
	c.chat()

	c.waitForJob(c.upload("a.pdf", "b.pdf"))

	resp := c.chat()
	assert.True(t, resp.HasSession)
	assert.False(t, resp.Uploading)
	require.Len(t, resp.UploadedFiles, 2)
	assert.Equal(t, "a.pdf", resp.UploadedFiles[0].Name)

	c.waitForJob(c.ask("summary?"))

	msgs := c.chat().Messages
	require.GreaterOrEqual(t, len(msgs), 3)
	assert.Equal(t, "summary?", msgs[len(msgs)-2].Text)
	assert.Equal(t, "user", msgs[len(msgs)-2].Sender)
	assert.Equal(t, "answer to summary?", msgs[len(msgs)-1].Text)

	c.waitForJob(c.upload("a.pdf"))
	msgs = c.chat().Messages
	assert.Equal(t, `File "a.pdf" is already uploaded.`, msgs[len(msgs)-1].Text)
}

func TestRequests_Rejected(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name     string
		request  func(c *client) *httptest.ResponseRecorder
		wantCode int
	}{
		{
			name:     "Blank_Question",
			request:  func(c *client) *httptest.ResponseRecorder { return c.ask("   ") },
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Malformed_Json",
			request: func(c *client) *httptest.ResponseRecorder {
				return c.do(httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader("{")))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "No_Files",
			request:  func(c *client) *httptest.ResponseRecorder { return c.upload() },
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Not_Multipart",
			request: func(c *client) *httptest.ResponseRecorder {
				return c.do(httptest.NewRequest(http.MethodPost, "/api/files", strings.NewReader("x")))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Too_Large",
			request: func(c *client) *httptest.ResponseRecorder {
				const boundary = "chatpdf-boundary"
				body := io.MultiReader(
					strings.NewReader("--"+boundary+"\r\n"+
						`Content-Disposition: form-data; name="files"; filename="huge.pdf"`+"\r\n"+
						"Content-Type: application/pdf\r\n\r\n"),
					io.LimitReader(zeroReader{}, 4*config.MaxUploadSize+1024),
					strings.NewReader("\r\n--"+boundary+"--\r\n"),
				)
				req := httptest.NewRequest(http.MethodPost, "/api/files", body)
				req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
				return c.do(req)
			},
			wantCode: http.StatusRequestEntityTooLarge,
		},
		{
			name: "Unknown_Job",
			request: func(c *client) *httptest.ResponseRecorder {
				return c.do(httptest.NewRequest(http.MethodGet, "/api/jobs/"+utils.GetNewUUID(), nil))
			},
			wantCode: http.StatusNotFound,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &client{t: t, router: router, addr: "192.0.2.2" + string(rune('0'+i)) + ":4000"}
			rec := tt.request(c)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, api.ChatStatusError, resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestRateLimit_OnlyPosts(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t), addr: "198.51.100.7:4000"}

	limited := 0
	for i := 0; i < config.BURST_RATE_LIMIT_PER_SECOND+5; i++ {
		if c.ask("").Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Positive(t, limited, "a burst of posts should be limited")

	for i := 0; i < 20; i++ {
		rec := c.do(httptest.NewRequest(http.MethodGet, "/api/chat", nil))
		require.Equal(t, http.StatusOK, rec.Code, "polling must not be limited")
	}
}

func TestPageAndHealth(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t), addr: "192.0.2.30:4000"}

	rec := c.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/chat")

	rec = c.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-Id", "trace-from-caller")
	rec = c.do(req)
	assert.Equal(t, "trace-from-caller", rec.Header().Get("X-Trace-Id"))
}
