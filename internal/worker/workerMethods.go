package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/ChatPDF/internal/adapter"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/metrics"
)

func (p *Pool) executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureExecutionMetrics("job_"+string(job.JobType), time.Since(start))
	}()
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	log := p.logger.WithTrace(ctx).With("jobId", job.Id, "visitorId", job.VisitorId)
	log.Debug("Processing job", "type", job.JobType)

	job = p.saveJobState(ctx, job, jobModel.JobStatusRunning)

	v, ok := p.visitors.Lookup(job.VisitorId)
	if !ok {
		log.Warn("Visitor chat is gone, dropping job")
		job.Error = jobModel.JobError{Code: http.StatusGone, Message: "chat expired, reload the page"}
		job.EndTime = time.Now()
		p.saveJobState(ctx, job, jobModel.JobStatusError)
		return
	}

	switch job.JobType {
	case jobModel.JobTypeAsk:
		v.Controller.SendMessage(ctx, job.Question)
	case jobModel.JobTypeUpload:
		v.Uploader.HandleFileUpload(ctx, adapter.ToSelectedFiles(job.Files))
	default:
		log.Error("Unknown job type", "type", job.JobType)
	}

	job.EndTime = time.Now()
	p.saveJobState(ctx, job, jobModel.JobStatusComplete)
}

func (p *Pool) removeWorker(reason string) {
	p.workerWaitGroup.Done()
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
}

func (p *Pool) saveJobState(ctx context.Context, job jobModel.Job, jobStatus jobModel.JobStatus) jobModel.Job {
	job.Status = jobStatus
	if p.jobService.JobStore == nil {
		return job
	}
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		p.logger.WithTrace(ctx).Error("Failed to update job status", "err", err)
	}
	return job
}
