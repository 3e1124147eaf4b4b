package uploader

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/backend"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

// Backend is the upload half of the question-answering service.
type Backend interface {
	UploadPDFs(ctx context.Context, docs []backend.Document) (api.UploadResponse, error)
}

// Uploader validates a file selection and sends the new PDFs in one batch.
// Every outcome is reported to the sink as chat events.
type Uploader struct {
	backend        Backend
	sink           chatModel.Sink
	requestTimeout time.Duration
	maxFileSize    int64
	logger         *logger_i.Logger
}

func New(b Backend, sink chatModel.Sink, requestTimeout time.Duration) *Uploader {
	return &Uploader{
		backend:        b,
		sink:           sink,
		requestTimeout: requestTimeout,
		maxFileSize:    config.MaxUploadSize,
		logger:         logger_i.NewLogger("Uploader"),
	}
}

// HandleFileUpload rejects the whole selection on the first non-PDF file, skips files
// whose name is already uploaded and uploads the rest in a single request.
func (u *Uploader) HandleFileUpload(ctx context.Context, files []SelectedFile) {
	if len(files) == 0 {
		return
	}
	log := u.logger.WithTrace(ctx)

	u.sink.Dispatch(chatModel.UploadBusy{Busy: true})
	defer u.sink.Dispatch(chatModel.UploadBusy{Busy: false})

	seen := make(map[string]bool)
	for _, f := range u.sink.UploadedFiles() {
		seen[f.Name] = true
	}

	hasDuplicate := false
	var accepted []SelectedFile
	for _, f := range files {
		if !f.IsPDF() {
			log.Warn("rejected non-pdf selection", "file", f.Name, "type", f.MimeType())
			metrics.CountUpload("rejected_type")
			u.say(config.OnlyPDFMessage)
			return
		}
		if seen[f.Name] {
			metrics.CountUpload("duplicate")
			u.say(fmt.Sprintf("File %q is already uploaded.", f.Name))
			hasDuplicate = true
			continue
		}
		seen[f.Name] = true
		accepted = append(accepted, f)
	}

	if len(accepted) == 0 {
		if !hasDuplicate {
			u.say(config.NoNewFilesMessage)
		}
		return
	}

	docs, uploaded, err := u.prepare(accepted)
	if err != nil {
		log.Error("could not read selection", "error", err)
		metrics.CountUpload("failed")
		u.say(fmt.Sprintf("Error uploading files: %s", err.Error()))
		return
	}

	uploadCtx, cancel := u.requestContext(ctx)
	defer cancel()

	resp, err := u.backend.UploadPDFs(uploadCtx, docs)
	if err != nil {
		log.Error("error uploading files", "error", err)
		metrics.CountUpload("failed")
		u.say(fmt.Sprintf("Error uploading files: %s", backend.Reason(err, config.UploadFallbackReason)))
		return
	}
	if resp.SessionID == "" {
		metrics.CountUpload("no_session")
		u.say(config.NoSessionIdMessage)
		return
	}

	log.Info("upload successful", "files", len(uploaded), "chunks", resp.Chunks)
	metrics.CountUpload("uploaded")
	u.sink.Dispatch(chatModel.SessionStarted{SessionID: resp.SessionID, Files: uploaded})
}

func (u *Uploader) prepare(files []SelectedFile) ([]backend.Document, []chatModel.UploadedFile, error) {
	docs := make([]backend.Document, 0, len(files))
	uploaded := make([]chatModel.UploadedFile, 0, len(files))
	for _, f := range files {
		data, err := f.read(u.maxFileSize)
		if err != nil {
			return nil, nil, err
		}
		pages, err := countPages(data)
		if err != nil {
			u.logger.Debug("could not count pages", "file", f.Name, "error", err)
		}
		docs = append(docs, backend.Document{Name: f.Name, Data: data})
		uploaded = append(uploaded, chatModel.UploadedFile{Name: f.Name, Size: int64(len(data)), Pages: pages})
	}
	return docs, uploaded, nil
}

func (u *Uploader) say(text string) {
	u.sink.Dispatch(chatModel.BotMessage{Text: text})
}

func (u *Uploader) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.requestTimeout > 0 {
		return context.WithTimeout(ctx, u.requestTimeout)
	}
	return context.WithCancel(ctx)
}
