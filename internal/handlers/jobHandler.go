package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/job"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/internal/visitor"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service  *job.Service
	visitors *visitor.Registry
}

func InitJobHandler(jobService *job.Service, visitors *visitor.Registry) {
	once.Do(func() {
		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
	handlerInstance = &JobHandler{service: jobService, visitors: visitors}
}

func CreateNewJob(newJob newJobData) string {
	logJH.Debug("To create new job", "traceId", newJob.traceId, "jobId", newJob.id, "type", newJob.jobType)
	handlerInstance.pushToJobChannel(newJob)
	return newJob.id
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil && handlerInstance.service.JobStore != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {
	_job := jobModel.Job{
		Id:          newJob.id,
		VisitorId:   newJob.visitorId,
		TraceId:     newJob.traceId,
		JobType:     newJob.jobType,
		Question:    newJob.question,
		Files:       newJob.files,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
	}
	for _, f := range newJob.files {
		_job.FileNames = append(_job.FileNames, f.Name)
	}

	if h.service.JobStore != nil {
		ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.traceId)
		if err := h.service.JobStore.SaveJob(ctx, _job); err != nil {
			logJH.Error("Could not save queued job", "jobId", _job.Id, "err", err)
		}
	}

	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //blocking send so a flood of requests waits instead of piling up
	logJH.Debug("Created new job", "jobId", _job.Id)

	// a new worker every RequestsPerNewWorkerCount requests, and for every upload since
	// those wait on the backend the longest; idle workers retire on their own
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeUpload {
		metrics.StartDispatcherSignalCount()
		select {
		case h.service.DispatcherChannel <- true:
		default:
		}
	}
}
