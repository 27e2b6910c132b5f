package worker

import (
	"context"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

// Worker runs background task processing until its context is cancelled.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

// Config defines worker connection and scheduling settings.
type Config struct {
	RedisAddr   string
	RedisDB     int
	Concurrency int
	Queues      map[string]int

	// ReconcileEvery is how often the sweep for stuck documents runs.
	ReconcileEvery time.Duration
	// StuckThreshold is how long a processing record may go untouched
	// before the sweep re-enqueues it.
	StuckThreshold time.Duration
	// StagingTTL is how long orphaned staged uploads are kept before the
	// cleanup sweep drops them.
	StagingTTL time.Duration
}

type BaseWorker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	logger   logger.Logger
	stopOnce sync.Once
	stopChan chan struct{}
}

// Stop is safe to call more than once; both the signal handler and the
// context monitor reach it during shutdown.
func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.server.Stop()
		w.server.Shutdown()
	})
	return nil
}
