package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"emireminder/config"
	"emireminder/cron"
	"emireminder/routes"
	"emireminder/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// scheduler is the common shape of the cron and asynq sweep drivers.
type scheduler interface {
	start() error
	stop(ctx context.Context)
}

type cronScheduler struct{ s *cron.Sweeper }

func (c cronScheduler) start() error             { c.s.Start(); return nil }
func (c cronScheduler) stop(ctx context.Context) { c.s.Stop(ctx) }

type asynqScheduler struct{ w *cron.SweepWorker }

func (a asynqScheduler) start() error         { return a.w.Start() }
func (a asynqScheduler) stop(context.Context) { a.w.Shutdown() }

func newScheduler(a *app) (scheduler, error) {
	switch strings.ToLower(a.cfg.SchedulerMode) {
	case "off":
		return nil, nil
	case "asynq":
		w, err := cron.NewSweepWorker(cron.RedisOpt(), a.dispatcher, a.cfg.SweepInterval, a.logger.Named("asynq"))
		if err != nil {
			return nil, err
		}
		return asynqScheduler{w}, nil
	default:
		s, err := cron.NewSweeper(a.dispatcher, a.cfg.SweepInterval, a.logger.Named("sweeper"))
		if err != nil {
			return nil, err
		}
		return cronScheduler{s}, nil
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.RegisterRoutes(router, a.handlers, routes.Options{
		AllowedOrigins:    cfg.Origins(),
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		Storage:           a.storage,
		Redis:             a.redisPinger(),
		Gatherer:          a.registry,
		Logger:            logger.Named("http"),
	})
	utils.StartHealthMonitor(ctx, a.storage, a.redisPinger())

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if sched != nil {
		if err := sched.start(); err != nil {
			return err
		}
	} else {
		logger.Info("Scheduler disabled, sweeps run only on demand")
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("scheduler", cfg.SchedulerMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server is shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sched != nil {
		sched.stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully")
	return nil
}
