package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/job"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/internal/visitor"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

// Visitors resolves the chat a job belongs to.
type Visitors interface {
	Lookup(id string) (*visitor.Visitor, bool)
}

// Pool runs visitor jobs. It starts with one worker, the dispatcher adds workers on
// demand up to MaxWorkerCount and idle workers above the minimum retire.
type Pool struct {
	jobService         *job.Service
	visitors           Visitors
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	minWorkerCount     int64
	maxWorkerCount     int64
	idleTimeout        time.Duration
	logger             *logger_i.Logger
}

func InitWorkerPool(jobService *job.Service, visitors Visitors, stopWorkerChan chan bool, waitGroup *sync.WaitGroup) *Pool {
	p := &Pool{
		jobService:        jobService,
		visitors:          visitors,
		stopWorkerChannel: stopWorkerChan,
		workerWaitGroup:   waitGroup,
		minWorkerCount:    config.MinWorkerCount,
		maxWorkerCount:    config.MaxWorkerCount,
		idleTimeout:       config.IdleWorkerTimeout,
		logger:            logger_i.NewLogger("WorkerPool"),
	}
	p.logger.Info("Initializing worker pool")
	p.createWorker()
	go p.dispatcher()
	return p
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.stopWorkerChannel:
			return
		case <-p.jobService.DispatcherChannel:
			if atomic.LoadInt64(&p.currentWorkerCount) < p.maxWorkerCount {
				p.logger.Info("Creating new worker", "workerCount", p.WorkerCount())
				p.createWorker()
			}
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)

		case <-p.stopWorkerChannel:
			atomic.AddInt64(&p.currentWorkerCount, -1)
			p.removeWorker("Stop worker signal received")
			return

		case <-time.After(p.idleTimeout):
			if p.releaseIdleSlot() {
				p.removeWorker("Idle worker timeout")
				return
			}
		}
	}
}

// releaseIdleSlot decrements the worker count unless that would go below the minimum.
func (p *Pool) releaseIdleSlot() bool {
	for {
		current := atomic.LoadInt64(&p.currentWorkerCount)
		if current <= p.minWorkerCount {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, current, current-1) {
			return true
		}
	}
}
