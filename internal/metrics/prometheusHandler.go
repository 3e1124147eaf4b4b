package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of visitor jobs waiting for a worker",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var activeVisitorCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_visitor_count",
	Help: "Number of browser visitors with a live chat",
})

var uploadOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pdf_upload_outcomes_total",
	Help: "Upload attempts labelled by outcome",
}, []string{"outcome"})

var askOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "question_outcomes_total",
	Help: "Questions labelled by outcome",
}, []string{"outcome"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of backend calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 60},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func SetActiveVisitors(n int) {
	activeVisitorCount.Set(float64(n))
}

func CountUpload(outcome string) {
	uploadOutcomes.WithLabelValues(outcome).Inc()
}

func CountQuestion(outcome string) {
	askOutcomes.WithLabelValues(outcome).Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
