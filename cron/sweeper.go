package cron

import (
	"context"
	"fmt"
	"time"

	"emireminder/utils"

	robfigcron "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper runs the dispatcher on a fixed interval inside the API process.
type Sweeper struct {
	cron   *robfigcron.Cron
	logger *zap.Logger
}

func NewSweeper(d *Dispatcher, interval time.Duration, logger *zap.Logger) (*Sweeper, error) {
	logger = utils.LoggerOr(logger)
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	cl := cronLogger{logger.Sugar()}
	c := robfigcron.New(
		robfigcron.WithLogger(cl),
		robfigcron.WithChain(robfigcron.Recover(cl), robfigcron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc("@every "+interval.String(), func() {
		d.Sweep(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule sweep: %w", err)
	}
	return &Sweeper{cron: c, logger: logger}, nil
}

func (s *Sweeper) Start() {
	s.logger.Info("Reminder sweeper started", zap.Int("entries", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Sweeper stop timed out")
	}
}

// cronLogger routes robfig/cron logs to zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
