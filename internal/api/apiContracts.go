package api

import "time"

// backend wire format---------------------

type UploadResponse struct {
	Message   string `json:"message,omitempty"`
	Chunks    int    `json:"chunks,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AskResponse struct {
	Answer      string         `json:"answer"`
	ChatHistory []HistoryEntry `json:"chat_history,omitempty"`
}

// BackendError is the body the backend sends with a non-2xx status.
type BackendError struct {
	Detail string `json:"detail"`
}

// browser widget---------------------

type ChatStatus string

const (
	ChatStatusError ChatStatus = "Error"
)

type MessageResponse struct {
	Text   string    `json:"text" example:"Hi, I'm a PDF Chat Bot. Upload your PDF files below."`
	Sender string    `json:"sender" example:"bot"`
	Time   time.Time `json:"time"`
}

type FileResponse struct {
	Name  string `json:"name" example:"report.pdf"`
	Size  int64  `json:"size" example:"48213"`
	Pages int    `json:"pages,omitempty" example:"3"`
}

type ChatResponse struct {
	Messages      []MessageResponse `json:"messages"`
	UploadedFiles []FileResponse    `json:"uploaded_files"`
	HasSession    bool              `json:"has_session"`
	Typing        bool              `json:"typing"`
	TypingLabel   string            `json:"typing_label,omitempty" example:"Typing.."`
	Uploading     bool              `json:"uploading"`
}

type AcceptedResponse struct {
	JobId     string `json:"job_id" example:"0b6c2a62-2f3e-4d7e-9d0c-6c1f0f0a4a11"`
	StatusURL string `json:"status_url" example:"/api/jobs/0b6c2a62-2f3e-4d7e-9d0c-6c1f0f0a4a11"`
	ChatURL   string `json:"chat_url" example:"/api/chat"`
}

type JobResponse struct {
	Id        string         `json:"id"`
	Type      string         `json:"type" example:"Ask"`
	Status    string         `json:"status" example:"COMPLETE"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time,omitempty"`
	Error     *OutgoingError `json:"error,omitempty"`
}

type ErrorResponse struct {
	Status ChatStatus     `json:"status"`
	Error  *OutgoingError `json:"error"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"question is required"`
	Retry   bool   `json:"can_retry" example:"false"`
}

// requests---------------------

type AskRequest struct {
	Question string `json:"question" validate:"required"`
}
