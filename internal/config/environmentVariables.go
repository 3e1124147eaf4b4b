package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, visitors are kept in an in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//chat widget
	PDFMimeType          = "application/pdf"
	TypingInterval       = 400 * time.Millisecond
	GreetingMessage      = "Hi, I'm a PDF Chat Bot. Upload your PDF files below."
	NoSessionMessage     = "Please upload your PDF files first."
	OnlyPDFMessage       = "Please upload only PDF files."
	NoNewFilesMessage    = "No new files to upload."
	NoSessionIdMessage   = "No session ID returned from the server."
	AskFallbackReason    = "Failed to get response from server"
	UploadFallbackReason = "Failed to upload PDF"

	//backend endpoints, relative to the backend url
	HealthPath      = "/"
	UploadPath      = "/upload_pdf/"
	AskPath         = "/ask/"
	UploadFormField = "files"

	MaxUploadSize = 32 << 20 //32mb per file

	//worker pool for browser visitors
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	BufferLimit                     = 100

	//browser visitors
	VisitorCookieName      = "chatpdf_visitor"
	VisitorIdleTimeout     = 30 * time.Minute
	VisitorCleanupInterval = 5 * time.Minute

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore     = 1
	RedisChatStore    = 2
	RedisJobStoreTTL  = 1 * time.Hour
	RedisChatStoreTTL = 24 * time.Hour
)
