package jobModel

import (
	"context"
	"time"
)

type JobStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	JobTypeAsk    JobType = "Ask"
	JobTypeUpload JobType = "Upload"
)

// Job is one browser action waiting for a worker. The outcome itself lands in the
// visitor's chat; the job only tracks progress.
type Job struct {
	Id          string        `json:"id"`
	VisitorId   string        `json:"visitor_id"`
	TraceId     string        `json:"trace_id"`
	JobType     JobType       `json:"job_type"`
	Question    string        `json:"question,omitempty"`
	Files       []FilePayload `json:"-"`
	FileNames   []string      `json:"file_names,omitempty"`
	Error       JobError      `json:"error,omitempty"`
	CreatedTime time.Time     `json:"created_time"`
	EndTime     time.Time     `json:"end_time,omitempty"`
	Status      JobStatus     `json:"status"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// FilePayload is an uploaded file already read from the browser request.
type FilePayload struct {
	Name        string
	ContentType string
	Data        []byte
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
