// @title           PDF Chat Widget API
// @version         1.0
// @description     Browser front end of the PDF chat widget. Questions and uploads are queued and the page polls the chat snapshot.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/ChatPDF/internal/backend"
	"github.com/akolanti/ChatPDF/internal/chat"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/customHttpClient"
	"github.com/akolanti/ChatPDF/internal/data/store"
	jobmodel "github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/handlers"
	"github.com/akolanti/ChatPDF/internal/job"
	"github.com/akolanti/ChatPDF/internal/server"
	"github.com/akolanti/ChatPDF/internal/visitor"
	"github.com/akolanti/ChatPDF/internal/worker"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

var (
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	settings := config.Load()
	flag.StringVar(&settings.ListenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.StringVar(&settings.BackendURL, "backend-url", settings.BackendURL, "question-answering backend url")
	flag.DurationVar(&settings.RequestTimeout, "request-timeout", settings.RequestTimeout, "timeout of a single backend request")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	chatStore, jobStore := store.GetStores(serviceContext, settings)
	if chatStore == nil || jobStore == nil {
		logger.Error("No store available. Shutting down.")
		return
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	backendClient := backend.NewClient(settings.BackendURL, customHttpClient.NewClient())
	logger.Info("Using backend", "url", backendClient.BaseURL())

	options := chat.DefaultOptions()
	options.RequestTimeout = settings.RequestTimeout
	visitors := visitor.NewRegistry(backendClient, chatStore, options)
	visitors.StartCleanup(serviceContext, config.VisitorCleanupInterval, config.VisitorIdleTimeout)

	handlers.InitJobHandler(service, visitors)

	//init worker pool
	worker.InitWorkerPool(service, visitors, stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
		CloseVisitors:    visitors.Close,
	}
	server.CreateServer(settings.ListenAddr)
	go server.ShutDownHandler(shutdownParams)
	go server.Serve()

	<-stopExecution
	logger.Info("Server stopped")
}
