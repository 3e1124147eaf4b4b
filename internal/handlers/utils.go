package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/akolanti/ChatPDF/internal/adapter"
	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
)

// a few files per request, each capped at MaxUploadSize
const maxRequestBody = 4 * config.MaxUploadSize

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, nothing left but logging
		logRH.Error("Error encoding response", "err", err)
	}
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(w http.ResponseWriter, ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithTrace(ctx).Warn("context error", "err", ctx.Err())
		return false
	}
	if handlerInstance == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "chat service is not ready")
		return false
	}
	return true
}

func traceId(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(error, httpCode))
}

// visitorId returns the id from the visitor cookie, issuing a new one when it is
// missing or malformed.
func visitorId(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(config.VisitorCookieName); err == nil && utils.IsUUID(cookie.Value) {
		return cookie.Value
	}
	id := utils.GetNewUUID()
	http.SetCookie(w, &http.Cookie{
		Name:     config.VisitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(config.RedisChatStoreTTL.Seconds()),
	})
	logRH.Debug("New visitor", "visitorId", id)
	return id
}

func readFilePayloads(headers []*multipart.FileHeader) ([]jobModel.FilePayload, error) {
	payloads := make([]jobModel.FilePayload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		payloads = append(payloads, jobModel.FilePayload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return payloads, nil
}

func processNewJobData(request *http.Request, w http.ResponseWriter, newJob newJobData) {
	newJob.id = utils.GetNewUUID()
	newJob.traceId = traceId(request.Context())
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToAcceptedResponse(newJob.id))
}
