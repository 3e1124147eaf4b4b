package adapter

import (
	"fmt"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/uploader"
)

func ToChatResponse(state chatModel.State) api.ChatResponse {
	messages := make([]api.MessageResponse, 0, len(state.Messages))
	for _, m := range state.Messages {
		messages = append(messages, api.MessageResponse{
			Text:   m.Text,
			Sender: string(m.Sender),
			Time:   m.Time,
		})
	}

	files := make([]api.FileResponse, 0, len(state.UploadedFiles))
	for _, f := range state.UploadedFiles {
		files = append(files, api.FileResponse{Name: f.Name, Size: f.Size, Pages: f.Pages})
	}

	label := ""
	if state.Typing {
		label = state.TypingLabel
	}

	return api.ChatResponse{
		Messages:      messages,
		UploadedFiles: files,
		HasSession:    state.SessionID != "",
		Typing:        state.Typing,
		TypingLabel:   label,
		Uploading:     state.Uploading,
	}
}

func ToAcceptedResponse(jobId string) api.AcceptedResponse {
	return api.AcceptedResponse{
		JobId:     jobId,
		StatusURL: fmt.Sprintf("/api/jobs/%s", jobId),
		ChatURL:   "/api/chat",
	}
}

func ToJobResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.OutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.OutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.JobResponse{
		Id:        job.Id,
		Type:      string(job.JobType),
		Status:    string(job.Status),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
	}
}

func BadRequest(error string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Status: api.ChatStatusError,
		Error: &api.OutgoingError{
			Code:    code,
			Message: error,
			Retry:   code == 429 || code >= 500,
		},
	}
}

func ToSelectedFiles(payloads []jobModel.FilePayload) []uploader.SelectedFile {
	files := make([]uploader.SelectedFile, 0, len(payloads))
	for _, p := range payloads {
		files = append(files, uploader.FromBytes(p.Name, p.ContentType, p.Data))
	}
	return files
}
