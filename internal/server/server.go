package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/middleware"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
	CloseVisitors    func()
}

// RegisterRoutes mounts the chat widget endpoints on r.
func RegisterRoutes(r *chi.Mux) {
	r.Get("/", middleware.PageHandler)
	r.Get("/health", middleware.GetHandler)
	r.Get("/api/chat", middleware.GetChatHandler)
	r.Post("/api/messages", middleware.PostMessageHandler)
	r.Post("/api/files", middleware.PostFilesHandler)
	r.Get("/api/jobs/{id}", middleware.GetStatusHandler)
}

// CreateServer builds the http server; Serve starts it.
func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()
	RegisterRoutes(r.Router)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
}

func Serve() {
	_logger.Info("Server is listening at", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", server.Addr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		if shutdownParams.CloseVisitors != nil {
			shutdownParams.CloseVisitors()
		}
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
	}
	close(shutdownParams.StopExecution)
}
