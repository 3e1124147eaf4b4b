package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/ChatPDF/internal/backend"
	"github.com/akolanti/ChatPDF/internal/chat"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/customHttpClient"
	"github.com/akolanti/ChatPDF/internal/mcpserver"
	"github.com/akolanti/ChatPDF/internal/tui"
	"github.com/akolanti/ChatPDF/internal/uploader"
	"github.com/akolanti/ChatPDF/internal/watcher"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	tea "github.com/charmbracelet/bubbletea"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code.
func run(args []string) int {
	settings := config.Load()
	var (
		serveMCP bool
		watchDir string
	)
	fs := flag.NewFlagSet("pdfchat", flag.ContinueOnError)
	fs.StringVar(&settings.BackendURL, "backend-url", settings.BackendURL, "question-answering backend url")
	fs.DurationVar(&settings.RequestTimeout, "request-timeout", settings.RequestTimeout, "timeout of a single backend request")
	fs.StringVar(&settings.LogFile, "log-file", settings.LogFile, "log file, stdout belongs to the widget")
	fs.BoolVar(&serveMCP, "mcp", false, "serve the chat as MCP tools on stdio instead of the terminal widget")
	fs.StringVar(&watchDir, "watch", "", "upload PDFs created in this folder")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logFile, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open log file %s: %v\n", settings.LogFile, err)
		return 1
	}
	defer logFile.Close()
	logger_i.InitWithWriter(logFile)
	logger := logger_i.NewLogger("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendClient := backend.NewClient(settings.BackendURL, customHttpClient.NewClient())
	logger.Info("Using backend", "url", backendClient.BaseURL())

	options := chat.DefaultOptions()
	options.RequestTimeout = settings.RequestTimeout
	controller := chat.NewController(backendClient, options)
	defer controller.Close()
	up := uploader.New(backendClient, controller, settings.RequestTimeout)
	controller.Mount(ctx)

	if watchDir != "" {
		w, err := watcher.NewWatcher(up, watcher.DefaultDebounce)
		if err != nil {
			logger.Error("Could not start folder watcher", "error", err)
			return 1
		}
		defer w.Stop()
		go func() {
			if err := w.Run(ctx, watchDir); err != nil {
				logger.Error("Folder watcher stopped", "error", err)
				controller.DisplayChatbotMessage(fmt.Sprintf("Could not watch %s: %v", watchDir, err))
			}
		}()
	}

	if serveMCP {
		if err := mcpserver.New(controller, up, version).Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("MCP server stopped", "error", err)
			return 1
		}
		return 0
	}

	if _, err := tea.NewProgram(tui.NewModel(ctx, controller, up), tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && ctx.Err() == nil {
		logger.Error("Terminal widget crashed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger.Info("Bye")
	return 0
}
