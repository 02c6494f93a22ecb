package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "CryptoBrain/pkg/http"
	pkgkafka "CryptoBrain/pkg/kafka"
	applogger "CryptoBrain/pkg/logger"
	"CryptoBrain/pkg/scheduler"
)

// Closer releases one infrastructure client on shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// Job is a scheduled task registered at startup.
type Job struct {
	Name string
	Spec string
	Task scheduler.Task
}

type Options struct {
	ShutdownTimeout time.Duration
	// RunJobsOnStart executes every job once before serving.
	RunJobsOnStart bool
}

// App encapsulates the application lifecycle: HTTP, the mine-request
// consumer, scheduled jobs and the clients they share.
type App struct {
	log       *applogger.Logger
	http      *xhttp.Server
	consumer  *pkgkafka.Consumer
	handlers  []pkgkafka.MessageHandler
	scheduler *scheduler.Scheduler
	jobs      []Job
	closers   []Closer
	opts      Options
}

// New assembles an App. consumer may be nil when Kafka is disabled.
func New(
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	sched *scheduler.Scheduler,
	jobs []Job,
	closers []Closer,
	opts Options,
) *App {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &App{
		log:       log,
		http:      httpServer,
		consumer:  consumer,
		handlers:  handlers,
		scheduler: sched,
		jobs:      jobs,
		closers:   closers,
		opts:      opts,
	}
}

// Run starts every component and blocks until SIGINT/SIGTERM, ctx ends or
// the HTTP listener fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.start(); err != nil {
		a.shutdown()
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-a.http.Errors():
		a.log.Error("http server error", applogger.Error(err))
		runErr = err
	}
	a.shutdown()
	return runErr
}

func (a *App) start() error {
	for _, j := range a.jobs {
		if err := a.scheduler.Register(j.Name, j.Spec, j.Task); err != nil {
			return err
		}
	}
	if a.opts.RunJobsOnStart {
		for _, j := range a.jobs {
			go a.scheduler.RunNow(j.Name, j.Task)
		}
	}
	a.scheduler.Start()

	if a.consumer != nil && len(a.handlers) > 0 {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		if err := a.consumer.Start(); err != nil {
			return err
		}
	}

	return a.http.Start()
}

// shutdown stops intake first, then background work, then the clients.
func (a *App) shutdown() {
	a.log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.ShutdownTimeout)
	defer cancel()

	if err := a.http.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	a.scheduler.Stop()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("component", c.Name), applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		a.log.Warn("shutdown finished with errors", applogger.Error(errors.Join(errs...)))
		return
	}
	a.log.Info("shutdown complete")
}
