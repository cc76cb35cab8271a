package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"emireminder/config"
	"emireminder/cron"
	"emireminder/database"
	"emireminder/database/repository"
	"emireminder/database/sqlite"
	"emireminder/handlers"
	"emireminder/services/bill"
	"emireminder/services/dashboard"
	"emireminder/services/insight"
	"emireminder/services/notification"
	"emireminder/services/preference"
	"emireminder/services/reminder"
	"emireminder/services/user"
	"emireminder/utils"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const insightCacheTTL = 30 * time.Minute

// app holds every long-lived dependency of the process.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	clock  utils.Clock

	repos   repository.Repositories
	storage utils.Pinger
	redis   *redis.Client

	registry   *prometheus.Registry
	dispatcher *cron.Dispatcher
	handlers   *handlers.HandlerBundle

	closers []func()
}

// openStorage connects the configured backend. Opening also applies the
// SQLite schema or ensures the Mongo indexes.
func openStorage(cfg config.Config, logger *zap.Logger) (repository.Repositories, utils.Pinger, func(), error) {
	switch strings.ToLower(cfg.DBDriver) {
	case "mongo":
		client, err := database.InitDB(cfg.DatabaseURL)
		if err != nil {
			return repository.Repositories{}, nil, nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		ping := utils.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) })
		closer := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Warn("Mongo disconnect failed", zap.Error(err))
			}
		}
		logger.Info("Using MongoDB storage", zap.String("database", cfg.MongoDatabase))
		return repository.NewMongoRepositories(db), ping, closer, nil
	default:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return repository.Repositories{}, nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLitePath))
		return store.Repositories(), store, func() { store.Close() }, nil
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger := utils.GetLogger()
	// An unknown zone was already reported by loadConfig.
	loc, _ := cfg.Location()
	a := &app{
		cfg:      cfg,
		logger:   logger,
		clock:    utils.NewClock(loc),
		registry: prometheus.NewRegistry(),
	}

	repos, storage, closeStorage, err := openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.repos, a.storage = repos, storage
	a.closers = append(a.closers, closeStorage)

	a.redis, err = utils.InitRedis()
	if err != nil {
		a.close()
		return nil, err
	}
	if a.redis != nil {
		a.closers = append(a.closers, func() { a.redis.Close() })
	}

	fcm, err := utils.FirebaseInit(ctx, cfg.FirebaseCredentialsFile)
	if err != nil {
		// Push stays a no-op; SMS and WhatsApp still work.
		logger.Error("Firebase init failed, push disabled", zap.Error(err))
	}
	transports := notification.Transports{
		Push: notification.NewPushTransport(fcm, logger),
		SMS: notification.NewTwilioTransport(notification.TwilioOptions{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioSMSFrom,
			DevSkip:    cfg.SMSDevSkip,
		}, logger),
		WhatsApp: notification.NewTwilioTransport(notification.TwilioOptions{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioWhatsAppFrom,
			WhatsApp:   true,
			DevSkip:    cfg.SMSDevSkip,
		}, logger),
	}

	a.dispatcher = &cron.Dispatcher{
		Reminders:  repos.Reminders,
		Users:      repos.Users,
		Transports: transports,
		Metrics:    cron.NewMetrics(a.registry),
		Clock:      a.clock,
		Timeout:    cfg.DeliveryTimeout,
		Logger:     logger.Named("dispatcher"),
	}
	if a.redis != nil {
		a.dispatcher.Lease = cron.NewRedisLease(a.redis, cfg.SweepLeaseTTL)
		a.dispatcher.Guard = notification.NewRedisDeliveryGuard(a.redis, cfg.DeliveryKeyTTL)
	} else {
		a.dispatcher.Lease = &cron.LocalLease{}
		a.dispatcher.Guard = notification.NewMemoryDeliveryGuard(cfg.DeliveryKeyTTL)
	}

	var narrator insight.Narrator
	var insightCache insight.Cache = insight.NewMemoryCache(insightCacheTTL)
	if a.redis != nil {
		insightCache = insight.NewRedisCache(a.redis, insightCacheTTL)
	}
	if cfg.GeminiAPIKey != "" {
		g, err := insight.NewGeminiNarrator(ctx, cfg.GeminiAPIKey, "")
		if err != nil {
			logger.Warn("Gemini unavailable, insights use templates only", zap.Error(err))
		} else {
			narrator = g
			a.closers = append(a.closers, func() { g.Close() })
		}
	}

	schedule := reminder.Schedule{
		Location:    loc,
		FireHour:    cfg.ReminderHour,
		DefaultDays: reminder.ParseDays(cfg.DefaultReminderDays, reminder.DefaultDays),
	}
	reminderService := &reminder.DefaultReminderService{
		Reminders:   repos.Reminders,
		Preferences: repos.Preferences,
		Bills:       repos.Bills,
		Schedule:    schedule,
		Clock:       a.clock,
		Logger:      logger.Named("reminder"),
	}
	billService := &bill.DefaultBillService{
		Repo:    repos.Bills,
		Planner: reminderService,
		Clock:   a.clock,
		Logger:  logger.Named("bill"),
	}

	a.handlers = &handlers.HandlerBundle{
		Bills:     &handlers.BillHandler{BillService: billService},
		Reminders: &handlers.ReminderHandler{ReminderService: reminderService},
		Dashboard: &handlers.DashboardHandler{DashboardService: &dashboard.DefaultDashboardService{
			Bills:  repos.Bills,
			Clock:  a.clock,
			Logger: logger.Named("dashboard"),
		}},
		Users: &handlers.UserHandler{UserService: &user.DefaultUserService{
			Repo:   repos.Users,
			Clock:  a.clock,
			Logger: logger.Named("user"),
		}},
		Preferences: &handlers.PreferenceHandler{PreferenceService: &preference.DefaultPreferenceService{
			Repo:   repos.Preferences,
			Logger: logger.Named("preference"),
		}},
		Notifications: &handlers.NotificationHandler{
			NotificationService: &notification.DefaultNotificationService{Users: repos.Users, Logger: logger},
			ReminderService:     reminderService,
		},
		Insights: &handlers.InsightHandler{InsightService: &insight.DefaultInsightService{
			Bills:       repos.Bills,
			Preferences: repos.Preferences,
			Narrator:    narrator,
			Cache:       insightCache,
			Clock:       a.clock,
			Logger:      logger.Named("insight"),
		}},
		Admin: &handlers.AdminHandler{Dispatcher: a.dispatcher},
	}
	return a, nil
}

// redisPinger is nil when Redis is not configured.
func (a *app) redisPinger() utils.Pinger {
	if a.redis == nil {
		return nil
	}
	client := a.redis
	return utils.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
