package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/ChatPDF/internal/handlers"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
	limited    bool
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var GetHandler = Wrap(handlers.GetHandler)
var PageHandler = Wrap(handlers.PageHandler)
var GetChatHandler = Wrap(handlers.GetChatHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)

// posts reach the backend, so they are rate limited per IP
var PostMessageHandler = WrapLimited(handlers.PostMessageHandler)
var PostFilesHandler = WrapLimited(handlers.PostFilesHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, false)
}

func WrapLimited(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, true)
}

func wrap(next http.HandlerFunc, limited bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := processRequest(requestResponseStruct{req: r, writer: rec, limited: limited})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	if re.limited {
		re = rateLimiter(re)
	}
	return re
}
