package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure. It contains
// settings for the environment, HTTP server, database, redis, job workers,
// outgoing mail and graceful shutdown behavior.
//
// External API credentials and pacing parameters deliberately do NOT live
// here; they are administrator-changeable settings stored in the database.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MaxUploadBytes caps the size of an uploaded URL list file
		MaxUploadBytes int64 `env:"HTTP_MAX_UPLOAD_BYTES" env-default:"10485760" yaml:"maxUploadBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"domaincheck" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Redis contains the connection settings for the lock backend
	Redis struct {
		// Addr is the redis server address
		Addr string `env:"REDIS_ADDR" env-default:"localhost:6379" yaml:"addr"`
		// Password for redis authentication, empty for none
		Password string `env:"REDIS_PASSWORD" env-default:"" yaml:"password"`
		// DB is the redis logical database number
		DB int `env:"REDIS_DB" env-default:"0" yaml:"db"`
		// LockTTL is the lease duration for processing locks
		LockTTL time.Duration `env:"REDIS_LOCK_TTL" env-default:"2m" yaml:"lockTTL"`
	} `yaml:"redis"`

	// Worker contains the background job processing configurations
	Worker struct {
		// MaxWorkers is the number of concurrent job executors
		MaxWorkers int `env:"WORKER_MAX_WORKERS" env-default:"10" yaml:"maxWorkers"`
		// MetricsSweepInterval is how often projects with unmeasured links are re-driven
		MetricsSweepInterval time.Duration `env:"WORKER_METRICS_SWEEP_INTERVAL" env-default:"30m" yaml:"metricsSweepInterval"` //nolint: lll
		// ReconcileInterval is how often stalled checking projects are re-enqueued
		ReconcileInterval time.Duration `env:"WORKER_RECONCILE_INTERVAL" env-default:"15m" yaml:"reconcileInterval"`
		// LastUpdatePollInterval is how often the metrics provider refresh timestamp is polled
		LastUpdatePollInterval time.Duration `env:"WORKER_LAST_UPDATE_POLL_INTERVAL" env-default:"24h" yaml:"lastUpdatePollInterval"` //nolint: lll
	} `yaml:"worker"`

	// SMTP contains the outgoing mail settings for notifications
	SMTP struct {
		// Host is the SMTP server hostname
		Host string `env:"SMTP_HOST" env-default:"localhost" yaml:"host"`
		// Port is the SMTP server port
		Port int `env:"SMTP_PORT" env-default:"25" yaml:"port"`
		// Username for SMTP authentication, empty to skip auth
		Username string `env:"SMTP_USERNAME" env-default:"" yaml:"username"`
		// Password for SMTP authentication
		Password string `env:"SMTP_PASSWORD" env-default:"" yaml:"password"`
		// From is the sender address for all outgoing notifications
		From string `env:"SMTP_FROM" env-default:"noreply@localhost" yaml:"from"`
		// UseTLS enables opportunistic TLS on the SMTP connection
		UseTLS bool `env:"SMTP_USE_TLS" env-default:"true" yaml:"useTLS"`
	} `yaml:"smtp"`

	// JWT contains the RS256 key material for API authentication
	JWT struct {
		// PublicKey is the PEM-encoded RSA public key used to verify bearer tokens
		PublicKey string `env:"JWT_PUBLIC_KEY" env-default:"" yaml:"publicKey"`
		// PrivateKey is the PEM-encoded RSA private key used by the jwt command to mint tokens
		PrivateKey string `env:"JWT_PRIVATE_KEY" env-default:"" yaml:"privateKey"`
	} `yaml:"jwt"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
