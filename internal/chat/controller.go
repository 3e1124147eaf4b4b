package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/backend"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

// Backend is the part of the question-answering service the controller needs.
type Backend interface {
	Ping(ctx context.Context) error
	Ask(ctx context.Context, sessionID string, question string) (api.AskResponse, error)
}

type Options struct {
	TypingInterval time.Duration
	RequestTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		TypingInterval: config.TypingInterval,
		RequestTimeout: config.DefaultRequestTimeout,
	}
}

// Controller owns one chat: transcript, session id, uploaded files and the typing indicator.
// All methods are safe for concurrent use.
type Controller struct {
	mu          sync.Mutex
	state       chatModel.State
	backend     Backend
	options     Options
	typing      *repeatingTask
	subscribers []chan struct{}
	closed      bool
	logger      *logger_i.Logger
}

func NewController(b Backend, options Options) *Controller {
	if options.TypingInterval <= 0 {
		options.TypingInterval = config.TypingInterval
	}
	return &Controller{
		backend: b,
		options: options,
		state: chatModel.State{
			Messages:      []chatModel.Message{},
			UploadedFiles: []chatModel.UploadedFile{},
		},
		logger: logger_i.NewLogger("Chat"),
	}
}

// Mount fires one best-effort health check and greets the user the first time.
func (c *Controller) Mount(ctx context.Context) {
	go func() {
		pingCtx, cancel := c.requestContext(ctx)
		defer cancel()
		if err := c.backend.Ping(pingCtx); err != nil {
			c.logger.WithTrace(ctx).Warn("backend health check failed", "error", err)
		}
	}()

	c.mu.Lock()
	greet := !c.state.Greeted
	c.state.Greeted = true
	c.mu.Unlock()

	if greet {
		c.DisplayChatbotMessage(config.GreetingMessage)
	}
}

// SendMessage asks the backend about the uploaded PDFs and appends exactly one bot reply.
func (c *Controller) SendMessage(ctx context.Context, question string) {
	if strings.TrimSpace(question) == "" {
		return
	}
	log := c.logger.WithTrace(ctx)

	c.mu.Lock()
	sessionID := c.state.SessionID
	c.mu.Unlock()

	if sessionID == "" {
		metrics.CountQuestion("no_session")
		c.DisplayChatbotMessage(config.NoSessionMessage)
		return
	}

	c.DisplayUserMessage(question)
	c.DisplayTypingIndicator()

	askCtx, cancel := c.requestContext(ctx)
	defer cancel()

	resp, err := c.backend.Ask(askCtx, sessionID, question)
	if err != nil {
		log.Error("ask failed", "error", err)
		metrics.CountQuestion("failed")
		c.DisplayChatbotMessage(fmt.Sprintf("Sorry, an error has occurred... (%s)",
			backend.Reason(err, config.AskFallbackReason)))
		return
	}

	log.Debug("answer received", "length", len(resp.Answer))
	metrics.CountQuestion("answered")
	c.DisplayChatbotMessage(resp.Answer)
}

func (c *Controller) DisplayUserMessage(text string) {
	c.appendMessage(text, chatModel.SenderUser)
}

// DisplayChatbotMessage appends a bot message and stops the typing indicator.
func (c *Controller) DisplayChatbotMessage(text string) {
	c.appendMessage(text, chatModel.SenderBot)
}

// DisplayTypingIndicator starts the typing animation unless it is already running.
func (c *Controller) DisplayTypingIndicator() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Typing || c.closed {
		return
	}

	c.typing.Cancel()
	c.state.Typing = true
	c.state.TypingLabel = typingLabels[0]

	task := newRepeatingTask()
	c.typing = task
	task.start(c.options.TypingInterval, func() { c.advanceTyping(task) })
	c.notifyLocked()
}

// Dispatch applies an event coming from an input surface.
func (c *Controller) Dispatch(ev chatModel.Event) {
	switch e := ev.(type) {
	case chatModel.BotMessage:
		c.DisplayChatbotMessage(e.Text)

	case chatModel.SessionStarted:
		c.mu.Lock()
		c.state.SessionID = e.SessionID
		c.state.UploadedFiles = append(c.state.UploadedFiles, e.Files...)
		c.notifyLocked()
		c.mu.Unlock()
		c.logger.Info("session started", "files", len(e.Files))

	case chatModel.UploadBusy:
		c.mu.Lock()
		c.state.Uploading = e.Busy
		c.notifyLocked()
		c.mu.Unlock()

	default:
		c.logger.Warn("unknown chat event", "type", fmt.Sprintf("%T", ev))
	}
}

func (c *Controller) UploadedFiles() []chatModel.UploadedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chatModel.UploadedFile(nil), c.state.UploadedFiles...)
}

func (c *Controller) HasSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SessionID != ""
}

func (c *Controller) Snapshot() chatModel.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Messages = append([]chatModel.Message(nil), c.state.Messages...)
	s.UploadedFiles = append([]chatModel.UploadedFile(nil), c.state.UploadedFiles...)
	return s
}

// Restore replaces the chat with a stored snapshot. Transient flags are not restored.
func (c *Controller) Restore(s chatModel.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing.Cancel()
	c.typing = nil
	c.state = chatModel.State{
		Messages:      append([]chatModel.Message{}, s.Messages...),
		SessionID:     s.SessionID,
		UploadedFiles: append([]chatModel.UploadedFile{}, s.UploadedFiles...),
		Greeted:       s.Greeted,
	}
	c.notifyLocked()
}

// Changes returns a channel that receives a value whenever the state changes.
// Notifications coalesce; the channel is closed by Close.
func (c *Controller) Changes() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan struct{}, 1)
	if c.closed {
		close(ch)
		return ch
	}
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Close stops the typing indicator and closes every Changes channel.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.typing.Cancel()
	c.typing = nil
	c.state.Typing = false
	for _, ch := range c.subscribers {
		close(ch)
	}
	c.subscribers = nil
}

func (c *Controller) appendMessage(text string, sender chatModel.Sender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sender == chatModel.SenderBot {
		c.stopTypingLocked()
	}
	c.state.Messages = append(c.state.Messages, chatModel.Message{
		Text:   text,
		Sender: sender,
		Time:   time.Now(),
	})
	c.notifyLocked()
}

func (c *Controller) advanceTyping(task *repeatingTask) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typing != task || !c.state.Typing {
		return
	}
	c.state.TypingLabel = nextTypingLabel(c.state.TypingLabel)
	c.notifyLocked()
}

func (c *Controller) stopTypingLocked() {
	c.typing.Cancel()
	c.typing = nil
	c.state.Typing = false
}

func (c *Controller) notifyLocked() {
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (c *Controller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.options.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.options.RequestTimeout)
	}
	return context.WithCancel(ctx)
}
