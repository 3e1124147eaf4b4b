package visitor

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/ChatPDF/internal/chat"
	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/internal/uploader"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

const saveTimeout = 5 * time.Second

// Backend is everything a visitor's chat and uploader talk to.
type Backend interface {
	chat.Backend
	uploader.Backend
}

// Visitor is one browser's chat widget.
type Visitor struct {
	Id           string
	Controller   *chat.Controller
	Uploader     *uploader.Uploader
	lastAccessed time.Time
	saved        chan struct{}
}

// Registry keeps one chat per browser visitor. Chats are restored from the store on
// first use and saved back whenever the transcript, session or files change.
type Registry struct {
	mu       sync.Mutex
	visitors map[string]*Visitor
	backend  Backend
	store    chatModel.ChatStore
	options  chat.Options
	logger   *logger_i.Logger
}

func NewRegistry(b Backend, store chatModel.ChatStore, options chat.Options) *Registry {
	return &Registry{
		visitors: make(map[string]*Visitor),
		backend:  b,
		store:    store,
		options:  options,
		logger:   logger_i.NewLogger("Visitors"),
	}
}

// Get returns the visitor's chat, creating or restoring it on first use.
func (r *Registry) Get(ctx context.Context, id string) *Visitor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.visitors[id]; ok {
		v.lastAccessed = time.Now()
		return v
	}

	controller := chat.NewController(r.backend, r.options)
	v := &Visitor{
		Id:           id,
		Controller:   controller,
		Uploader:     uploader.New(r.backend, controller, r.options.RequestTimeout),
		lastAccessed: time.Now(),
		saved:        make(chan struct{}),
	}

	if saved, found := r.store.GetChat(ctx, id); found {
		r.logger.WithTrace(ctx).Info("Restored visitor chat", "visitorId", id, "messages", len(saved.Messages))
		controller.Restore(saved)
	}
	go r.persist(v, controller.Changes())
	controller.Mount(context.WithoutCancel(ctx))

	r.visitors[id] = v
	metrics.SetActiveVisitors(len(r.visitors))
	return v
}

// Lookup returns a live visitor without creating one.
func (r *Registry) Lookup(id string) (*Visitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visitors[id]
	if ok {
		v.lastAccessed = time.Now()
	}
	return v, ok
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// CleanupIdle closes the chats of visitors not seen for maxIdle. Visitors still
// waiting on an answer or an upload are kept. The final snapshot is saved, so they
// are restored on the next visit.
func (r *Registry) CleanupIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Visitor
	for id, v := range r.visitors {
		if !v.lastAccessed.Before(cutoff) {
			continue
		}
		if s := v.Controller.Snapshot(); s.Typing || s.Uploading {
			continue
		}
		idle = append(idle, v)
		delete(r.visitors, id)
	}
	metrics.SetActiveVisitors(len(r.visitors))
	r.mu.Unlock()

	for _, v := range idle {
		r.logger.Info("Closing idle visitor", "visitorId", v.Id, "idle", time.Since(v.lastAccessed).Round(time.Second))
		r.closeVisitor(v)
	}
	return len(idle)
}

// StartCleanup runs CleanupIdle every interval until ctx is done.
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.CleanupIdle(maxIdle); n > 0 {
					r.logger.Debug("Idle visitors removed", "count", n)
				}
			}
		}
	}()
}

// Close closes every chat. The registry can still be used afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	visitors := r.visitors
	r.visitors = make(map[string]*Visitor)
	metrics.SetActiveVisitors(0)
	r.mu.Unlock()

	for _, v := range visitors {
		r.closeVisitor(v)
	}
}

// closeVisitor closes the chat and waits for its last snapshot to be saved.
func (r *Registry) closeVisitor(v *Visitor) {
	v.Controller.Close()
	select {
	case <-v.saved:
	case <-time.After(saveTimeout):
		r.logger.Warn("Final save of visitor chat timed out", "visitorId", v.Id)
	}
}

type persistedShape struct {
	messages  int
	sessionID string
	files     int
	greeted   bool
}

// persist saves the chat whenever something worth keeping changed. Typing and
// upload spinners are not worth a write.
// Once the controller is closed the latest snapshot is saved one last time.
func (r *Registry) persist(v *Visitor, changes <-chan struct{}) {
	defer close(v.saved)

	var last persistedShape
	save := func() {
		s := v.Controller.Snapshot()
		shape := persistedShape{
			messages:  len(s.Messages),
			sessionID: s.SessionID,
			files:     len(s.UploadedFiles),
			greeted:   s.Greeted,
		}
		if shape == last {
			return
		}
		last = shape

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := r.store.SaveChat(ctx, v.Id, s); err != nil {
			r.logger.Error("Could not save visitor chat", "visitorId", v.Id, "error", err)
		}
	}

	for range changes {
		save()
	}
	save()
}
