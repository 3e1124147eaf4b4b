package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/akolanti/ChatPDF/internal/adapter"
	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/web"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id        string
	visitorId string
	traceId   string
	jobType   jobModel.JobType
	question  string
	files     []jobModel.FilePayload
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PageHandler serves the chat widget page.
func PageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(w, r.Context()) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(web.IndexHTML()); err != nil {
		logRH.Error("Error writing page", "err", err)
	}
}

// GetChatHandler godoc
// @Summary      Get the visitor's chat
// @Description  Returns the transcript, uploaded files and the typing/uploading indicators of the visitor identified by the chatpdf_visitor cookie. A new visitor is greeted.
// @Tags         Chat
// @Produce      json
// @Success      200  {object}  api.ChatResponse  "Current chat snapshot"
// @Router       /api/chat [get]
func GetChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(w, r.Context()) {
		return
	}
	v := handlerInstance.visitors.Get(r.Context(), visitorId(w, r))
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(v.Controller.Snapshot()))
}

// PostMessageHandler godoc
// @Summary      Ask a question about the uploaded PDFs
// @Description  Queues the question. The answer, or an error message, is appended to the chat; poll /api/chat.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest         true  "Question"
// @Success      202      {object}  api.AcceptedResponse   "Question queued"
// @Failure      400      {object}  api.ErrorResponse      "Missing question"
// @Router       /api/messages [post]
func PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(w, r.Context()) {
		return
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the message handler reader", "err", err)
		}
	}(r.Body)

	var requestData api.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Question) == "" {
		logRH.Warn("Bad message request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	v := handlerInstance.visitors.Get(r.Context(), visitorId(w, r))
	processNewJobData(r, w, newJobData{
		visitorId: v.Id,
		jobType:   jobModel.JobTypeAsk,
		question:  requestData.Question,
	})
}

// PostFilesHandler godoc
// @Summary      Upload PDF files
// @Description  Queues the selected files for upload. Validation and backend errors are reported in the chat; poll /api/chat.
// @Tags         Chat
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "One or more PDF files"
// @Success      202    {object}  api.AcceptedResponse  "Upload queued"
// @Failure      400    {object}  api.ErrorResponse     "No files or not multipart"
// @Failure      413    {object}  api.ErrorResponse     "Upload is too large"
// @Router       /api/files [post]
func PostFilesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(w, r.Context()) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "upload is too large")
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "multipart form expected")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[config.UploadFormField]
	if len(headers) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "no files selected")
		return
	}

	payloads, err := readFilePayloads(headers)
	if err != nil {
		logRH.Error("Could not read uploaded files", "err", err)
		WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := handlerInstance.visitors.Get(r.Context(), visitorId(w, r))
	processNewJobData(r, w, newJobData{
		visitorId: v.Id,
		jobType:   jobModel.JobTypeUpload,
		files:     payloads,
	})
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the progress of a queued question or upload.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse    "The current status of the job"
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /api/jobs/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(w, r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceId(r.Context()))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToJobResponse(result))
}
