package chat

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/backend"
	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
)

type MockBackend struct {
	OnAsk     func(ctx context.Context, sessionID string, question string) (api.AskResponse, error)
	OnPing    func(ctx context.Context) error
	AskCount  int32
	PingCount int32
}

func (m *MockBackend) Ask(ctx context.Context, sessionID string, question string) (api.AskResponse, error) {
	atomic.AddInt32(&m.AskCount, 1)
	if m.OnAsk != nil {
		return m.OnAsk(ctx, sessionID, question)
	}
	return api.AskResponse{Answer: "mocked answer"}, nil
}

func (m *MockBackend) Ping(ctx context.Context) error {
	atomic.AddInt32(&m.PingCount, 1)
	if m.OnPing != nil {
		return m.OnPing(ctx)
	}
	return nil
}

func newTestController(b *MockBackend) *Controller {
	return NewController(b, Options{TypingInterval: 5 * time.Millisecond, RequestTimeout: time.Second})
}

func withSession(c *Controller) {
	c.Dispatch(chatModel.SessionStarted{
		SessionID: "sess-1",
		Files:     []chatModel.UploadedFile{{Name: "report.pdf"}},
	})
}

func TestSendMessage_BlankIsNoOp(t *testing.T) {
	mock := &MockBackend{}
	c := newTestController(mock)
	defer c.Close()
	withSession(c)

	for _, q := range []string{"", "   ", "\t\n"} {
		c.SendMessage(context.Background(), q)
	}

	if n := len(c.Snapshot().Messages); n != 0 {
		t.Errorf("expected no messages, got %d", n)
	}
	if atomic.LoadInt32(&mock.AskCount) != 0 {
		t.Error("blank question must not reach the backend")
	}
}

func TestSendMessage_WithoutSession(t *testing.T) {
	mock := &MockBackend{}
	c := newTestController(mock)
	defer c.Close()

	c.SendMessage(context.Background(), "what is this?")

	msgs := c.Snapshot().Messages
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one message, got %d", len(msgs))
	}
	if msgs[0].Text != "Please upload your PDF files first." || msgs[0].Sender != chatModel.SenderBot {
		t.Errorf("unexpected message: %+v", msgs[0])
	}
	if atomic.LoadInt32(&mock.AskCount) != 0 {
		t.Error("no request should be made without a session")
	}
}

func TestSendMessage_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		askErr    error
		answer    string
		wantReply string
	}{
		{
			name:      "Success",
			answer:    "X",
			wantReply: "X",
		},
		{
			name:      "Server_Detail",
			askErr:    &backend.ServerError{StatusCode: http.StatusInternalServerError, Detail: "boom"},
			wantReply: "Sorry, an error has occurred... (boom)",
		},
		{
			name:      "Server_Without_Detail",
			askErr:    &backend.ServerError{StatusCode: http.StatusInternalServerError},
			wantReply: "Sorry, an error has occurred... (Failed to get response from server)",
		},
		{
			name:      "Transport_Failure",
			askErr:    errors.New("connection refused"),
			wantReply: "Sorry, an error has occurred... (connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockBackend{
				OnAsk: func(ctx context.Context, sessionID string, question string) (api.AskResponse, error) {
					if sessionID != "sess-1" || question != "what?" {
						t.Errorf("unexpected ask(%q, %q)", sessionID, question)
					}
					return api.AskResponse{Answer: tt.answer}, tt.askErr
				},
			}
			c := newTestController(mock)
			defer c.Close()
			withSession(c)

			c.SendMessage(context.Background(), "what?")

			s := c.Snapshot()
			if len(s.Messages) != 2 {
				t.Fatalf("expected user + bot message, got %d", len(s.Messages))
			}
			if s.Messages[0].Sender != chatModel.SenderUser || s.Messages[0].Text != "what?" {
				t.Errorf("unexpected user message: %+v", s.Messages[0])
			}
			if s.Messages[1].Sender != chatModel.SenderBot || s.Messages[1].Text != tt.wantReply {
				t.Errorf("got bot message %q, want %q", s.Messages[1].Text, tt.wantReply)
			}
			if s.Typing {
				t.Error("typing indicator should be cleared")
			}
		})
	}
}

func TestSendMessage_TypingWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	mock := &MockBackend{
		OnAsk: func(ctx context.Context, sessionID string, question string) (api.AskResponse, error) {
			<-release
			return api.AskResponse{Answer: "done"}, nil
		},
	}
	c := newTestController(mock)
	defer c.Close()
	withSession(c)

	finished := make(chan struct{})
	go func() {
		c.SendMessage(context.Background(), "slow question")
		close(finished)
	}()

	deadline := time.After(2 * time.Second)
	for {
		s := c.Snapshot()
		if s.Typing && s.TypingLabel != "Typing" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("typing label never advanced: %+v", s)
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(release)
	<-finished

	s := c.Snapshot()
	if s.Typing {
		t.Error("typing should stop once the answer arrives")
	}
	if last := s.Messages[len(s.Messages)-1]; last.Text != "done" {
		t.Errorf("unexpected last message %q", last.Text)
	}
}

func TestDisplayTypingIndicator_Idempotent(t *testing.T) {
	c := newTestController(&MockBackend{})
	defer c.Close()

	c.DisplayTypingIndicator()
	first := c.typing
	c.DisplayTypingIndicator()

	if c.typing != first {
		t.Error("a second call must not start another timer")
	}

	c.DisplayChatbotMessage("hello")
	if c.typing != nil || c.Snapshot().Typing {
		t.Error("bot message must cancel the typing task")
	}
}

func TestMount_GreetsOnceAndPings(t *testing.T) {
	pinged := make(chan struct{}, 2)
	mock := &MockBackend{
		OnPing: func(ctx context.Context) error {
			pinged <- struct{}{}
			return errors.New("backend asleep")
		},
	}
	c := newTestController(mock)
	defer c.Close()

	c.Mount(context.Background())
	c.Mount(context.Background())

	msgs := c.Snapshot().Messages
	if len(msgs) != 1 || msgs[0].Text != "Hi, I'm a PDF Chat Bot. Upload your PDF files below." {
		t.Fatalf("expected a single greeting, got %+v", msgs)
	}

	select {
	case <-pinged:
	case <-time.After(time.Second):
		t.Fatal("health check was not fired")
	}
}

func TestDispatch_Events(t *testing.T) {
	c := newTestController(&MockBackend{})
	defer c.Close()

	c.Dispatch(chatModel.UploadBusy{Busy: true})
	if !c.Snapshot().Uploading {
		t.Error("expected uploading state")
	}

	c.Dispatch(chatModel.SessionStarted{SessionID: "a", Files: []chatModel.UploadedFile{{Name: "one.pdf"}}})
	c.Dispatch(chatModel.SessionStarted{SessionID: "b", Files: []chatModel.UploadedFile{{Name: "two.pdf"}}})
	c.Dispatch(chatModel.UploadBusy{Busy: false})
	c.Dispatch(chatModel.BotMessage{Text: "note"})

	s := c.Snapshot()
	if s.SessionID != "b" {
		t.Errorf("latest upload should own the session, got %q", s.SessionID)
	}
	if len(s.UploadedFiles) != 2 || !s.HasFile("one.pdf") || !s.HasFile("two.pdf") {
		t.Errorf("unexpected files: %+v", s.UploadedFiles)
	}
	if s.Uploading {
		t.Error("uploading should be cleared")
	}
	if len(s.Messages) != 1 || s.Messages[0].Text != "note" {
		t.Errorf("unexpected messages: %+v", s.Messages)
	}
}

func TestChanges_NotifiedAndClosed(t *testing.T) {
	c := newTestController(&MockBackend{})
	changes := c.Changes()

	c.DisplayUserMessage("hi")
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	c.Close()
	if _, ok := <-changes; ok {
		t.Error("channel should be closed after Close")
	}
	if _, ok := <-c.Changes(); ok {
		t.Error("Changes after Close should return a closed channel")
	}
}

func TestRestore_DropsTransientState(t *testing.T) {
	c := newTestController(&MockBackend{})
	defer c.Close()

	c.Restore(chatModel.State{
		Messages:      []chatModel.Message{{Text: "old", Sender: chatModel.SenderBot}},
		SessionID:     "sess-9",
		UploadedFiles: []chatModel.UploadedFile{{Name: "report.pdf"}},
		Typing:        true,
		TypingLabel:   "Typing..",
		Uploading:     true,
		Greeted:       true,
	})
	c.Mount(context.Background())

	s := c.Snapshot()
	if s.Typing || s.Uploading || s.TypingLabel != "" {
		t.Errorf("transient flags restored: %+v", s)
	}
	if len(s.Messages) != 1 {
		t.Errorf("restored chat must not be greeted again, got %d messages", len(s.Messages))
	}
	if !c.HasSession() {
		t.Error("session id should be restored")
	}
}

func TestNextTypingLabel_Cycles(t *testing.T) {
	label := "Typing"
	var seen []string
	for i := 0; i < 4; i++ {
		label = nextTypingLabel(label)
		seen = append(seen, label)
	}
	want := []string{"Typing.", "Typing..", "Typing...", "Typing"}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("step %d: got %q, want %q", i, seen[i], want[i])
		}
	}
	if nextTypingLabel("garbage") != "Typing..." {
		t.Error("unknown label should fall back to the last state")
	}
}
