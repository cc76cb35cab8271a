package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`

	// Storage. DB_DRIVER selects sqlite or mongo.
	DBDriver      string `mapstructure:"DB_DRIVER"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Sweep scheduling.
	SchedulerMode   string        `mapstructure:"SCHEDULER_MODE"`
	SweepInterval   time.Duration `mapstructure:"SWEEP_INTERVAL"`
	SweepLeaseTTL   time.Duration `mapstructure:"SWEEP_LEASE_TTL"`
	DeliveryTimeout time.Duration `mapstructure:"DELIVERY_TIMEOUT"`
	DeliveryKeyTTL  time.Duration `mapstructure:"DELIVERY_KEY_TTL"`

	// Reminder planning.
	ReminderTimezone    string `mapstructure:"REMINDER_TIMEZONE"`
	ReminderHour        int    `mapstructure:"REMINDER_HOUR"`
	DefaultReminderDays string `mapstructure:"DEFAULT_REMINDER_DAYS"`

	// Transports.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	TwilioAccountSID        string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken         string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioSMSFrom           string `mapstructure:"TWILIO_SMS_FROM"`
	TwilioWhatsAppFrom      string `mapstructure:"TWILIO_WHATSAPP_FROM"`
	SMSDevSkip              bool   `mapstructure:"SMS_DEV_SKIP"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
}

var AppConfig Config

var defaults = map[string]interface{}{
	"APP_PORT":                  "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"JWT_SECRET":                "",
	"MAX_REQUESTS_PER_MIN":      100,
	"ALLOWED_ORIGINS":           "*",
	"DB_DRIVER":                 "sqlite",
	"SQLITE_PATH":               "emireminder.db",
	"DATABASE_URL":              "mongodb://localhost:27017",
	"MONGO_DATABASE":            "emireminder",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_LOCK_DB":             0,
	"REDIS_QUEUE_DB":            1,
	"SCHEDULER_MODE":            "cron",
	"SWEEP_INTERVAL":            "15m",
	"SWEEP_LEASE_TTL":           "10m",
	"DELIVERY_TIMEOUT":          "15s",
	"DELIVERY_KEY_TTL":          "72h",
	"REMINDER_TIMEZONE":         "Asia/Kolkata",
	"REMINDER_HOUR":             9,
	"DEFAULT_REMINDER_DAYS":     "7,3,0",
	"FIREBASE_CREDENTIALS_FILE": "",
	"TWILIO_ACCOUNT_SID":        "",
	"TWILIO_AUTH_TOKEN":         "",
	"TWILIO_SMS_FROM":           "",
	"TWILIO_WHATSAPP_FROM":      "",
	"SMS_DEV_SKIP":              false,
	"GEMINI_API_KEY":            "",
}

// LoadConfig reads config.yaml (optional) and the environment into AppConfig.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	AppConfig = cfg
	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "sqlite", "mongo":
	default:
		return fmt.Errorf("config: DB_DRIVER must be sqlite or mongo, got %q", c.DBDriver)
	}
	switch strings.ToLower(c.SchedulerMode) {
	case "cron", "asynq", "off":
	default:
		return fmt.Errorf("config: SCHEDULER_MODE must be cron, asynq or off, got %q", c.SchedulerMode)
	}
	if c.SchedulerMode == "asynq" && c.RedisAddr == "" {
		return fmt.Errorf("config: SCHEDULER_MODE=asynq requires REDIS_ADDR")
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("config: REMINDER_HOUR must be within 0..23, got %d", c.ReminderHour)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: SWEEP_INTERVAL must be positive")
	}
	return nil
}

// Location resolves the reminder timezone. When the zone cannot be loaded
// the India Standard Time offset is returned together with the load error.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60), fmt.Errorf("config: unknown timezone %q: %w", c.ReminderTimezone, err)
	}
	return loc, nil
}

func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
