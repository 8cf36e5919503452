package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// Service
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"onduty"`

	// PostgreSQL
	PostgreSQLHost       string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort       string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser       string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword   string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase   string `env:"POSTGRESQL_DATABASE" envDefault:"onduty"`
	PostgreSQLSchema     string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode    string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle    int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen    int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`
	PostgreSQLReplicaDSN string `env:"POSTGRESQL_REPLICA_DSN"` // optional read replica for dashboard queries

	// Redis
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"onduty"`

	// RabbitMQ
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT
	JWTSecret        string `env:"JWT_SECRET"` // required, signs dashboard tokens
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// Push delivery
	PushProvider       string `env:"PUSH_PROVIDER" envDefault:"fcm"` // fcm, mock
	FCMProjectID       string `env:"FCM_PROJECT_ID"`
	FCMCredentialsFile string `env:"FCM_CREDENTIALS_FILE"` // Google service account JSON
	PushBatchSize      int    `env:"PUSH_BATCH_SIZE" envDefault:"500"`
	DispatchWorkers    int    `env:"DISPATCH_WORKERS" envDefault:"16"`

	// Workday schedule. Times are local to Timezone, triggers fire Monday-Friday.
	Timezone          string  `env:"TIMEZONE" envDefault:"Africa/Nairobi"`
	WorkdayStart      string  `env:"WORKDAY_START" envDefault:"08:00:00"`
	WorkdayEnd        string  `env:"WORKDAY_END" envDefault:"17:00:00"`
	LateAlertAt       string  `env:"LATE_ALERT_AT" envDefault:"08:15:00"`
	DailySummaryAt    string  `env:"DAILY_SUMMARY_AT" envDefault:"18:00:00"`
	StandardWorkHours float64 `env:"STANDARD_WORK_HOURS" envDefault:"8"`

	// Telemetry. Traces and metrics export over OTLP gRPC when an endpoint
	// is configured; empty leaves the no-op providers in place.
	OTLPEndpoint     string  `env:"OTLP_ENDPOINT"`
	ServiceVersion   string  `env:"SERVICE_VERSION" envDefault:"dev"`
	TraceSampleRatio float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"0.1"`

	// Snowflake ID generator
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// Logging
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// Rate limiting (middleware)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		if Cfg.Environment == "production" {
			log.Fatal("JWT_SECRET is required in production")
		}
		log.Printf("WARN: JWT_SECRET is not set, using an insecure development secret")
		Cfg.JWTSecret = "insecure-development-secret"
	}

	if _, err := time.LoadLocation(Cfg.Timezone); err != nil {
		log.Fatalf("TIMEZONE %q is invalid: %v", Cfg.Timezone, err)
	}

	for _, t := range []string{Cfg.WorkdayStart, Cfg.WorkdayEnd, Cfg.LateAlertAt, Cfg.DailySummaryAt} {
		if _, err := time.Parse("15:04:05", t); err != nil {
			log.Fatalf("workday time %q is invalid, expected HH:MM:SS: %v", t, err)
		}
	}

	if Cfg.PushProvider == "fcm" {
		if Cfg.FCMProjectID == "" {
			log.Printf("WARN: FCM_PROJECT_ID is not set, push delivery will not work")
		}
		if Cfg.FCMCredentialsFile == "" {
			log.Printf("WARN: FCM_CREDENTIALS_FILE is not set, push delivery will not work")
		}
	}
}

// Location returns the workday timezone. Validated at startup, so failures
// here only happen when tzdata is missing at runtime; fall back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
