package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emireminder/config"
	"emireminder/models"
	"emireminder/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeReminderSweep = "reminders:sweep"
	sweepQueue        = "reminders"
)

// NewSweepTask builds the periodic sweep task.
func NewSweepTask(source string) (*asynq.Task, error) {
	b, err := json.Marshal(models.ReminderPayload{
		TriggeredAt: time.Now().UTC().Format(time.RFC3339),
		Source:      source,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReminderSweep, b), nil
}

// SweepWorker runs sweeps from a Redis-backed asynq queue. The scheduler
// enqueues one unique task per interval and a single-concurrency server
// processes it.
type SweepWorker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

// RedisOpt reads the queue connection from config.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

func NewSweepWorker(redisOpt asynq.RedisClientOpt, d *Dispatcher, interval time.Duration, logger *zap.Logger) (*SweepWorker, error) {
	logger = utils.LoggerOr(logger)
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{sweepQueue: 1},
		Logger:      logger.Sugar(),
	})
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger:   logger.Sugar(),
		Location: time.UTC,
	})

	task, err := NewSweepTask("scheduler")
	if err != nil {
		return nil, err
	}
	entryID, err := scheduler.Register("@every "+interval.String(), task,
		asynq.Queue(sweepQueue),
		asynq.Unique(interval),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register sweep: %w", err)
	}
	logger.Info("Sweep task registered", zap.String("entryId", entryID), zap.Duration("interval", interval))

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSweep, handleSweepTask(d, logger))

	return &SweepWorker{server: srv, scheduler: scheduler, mux: mux, logger: logger}, nil
}

// Start launches the scheduler and the worker, retrying with backoff.
func (w *SweepWorker) Start() error {
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start sweep scheduler: %w", err)
	}

	const maxAttempts = 5
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = w.server.Start(w.mux); err == nil {
			w.logger.Info("Sweep worker started")
			return nil
		}
		w.logger.Warn("Sweep worker failed to start",
			zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}
	w.scheduler.Shutdown()
	return fmt.Errorf("sweep worker did not start: %w", err)
}

func (w *SweepWorker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func handleSweepTask(d *Dispatcher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid sweep payload", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		res := d.Sweep(ctx)
		logger.Debug("Queued sweep handled",
			zap.String("source", p.Source),
			zap.String("triggeredAt", p.TriggeredAt),
			zap.Bool("busy", res.Busy))
		return nil
	}
}
