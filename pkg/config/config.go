package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup and read-only afterwards. Changing any
// value requires a restart.
type Config struct {
	Server     ServerConfig
	Monitoring MonitoringConfig
	Thresholds ThresholdsConfig
	Alerts     AlertsConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	CloudWatch CloudWatchConfig
	Security   SecurityConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
}

type MonitoringConfig struct {
	CollectionInterval time.Duration
	SourceTimeout      time.Duration
	RetentionDays      int
	// EscalationCommand validates that the process can perform privileged
	// helper operations, e.g. "sudo -n true".
	EscalationCommand string
	EscalationTimeout time.Duration
}

// ThresholdsConfig holds per-category alert thresholds. Readings above a max
// are breaches; which severity a breach carries is decided by the analyzer.
type ThresholdsConfig struct {
	CPUUsageMax    float64
	CPUTempMax     float64
	MemoryUsageMax float64
	DiskUsageMax   float64
	SensorTempMax  float64
}

type AlertsConfig struct {
	Email   EmailChannelConfig
	Webhook WebhookChannelConfig
	// SendTimeout bounds a single channel delivery attempt.
	SendTimeout time.Duration
}

type EmailChannelConfig struct {
	Enabled    bool
	SMTPServer string
	SMTPPort   int
	Sender     string
	Password   string
	Recipients []string
}

type WebhookChannelConfig struct {
	Enabled bool
	URL     string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	TTL          time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type NATSConfig struct {
	Enabled bool
	URL     string
	Subject string
}

type CloudWatchConfig struct {
	Enabled         bool
	Namespace       string
	LogGroupName    string
	LogStreamName   string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type SecurityConfig struct {
	AuthEnabled bool
	AuthToken   string
	// AllowedOrigins gates WebSocket upgrades; "*" allows any origin.
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// .env is optional; env vars win either way.
	_ = godotenv.Load()

	interval, err := time.ParseDuration(getEnv("MONITORING_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONITORING_INTERVAL: %w", err)
	}

	sourceTimeout, err := time.ParseDuration(getEnv("SOURCE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_TIMEOUT: %w", err)
	}

	sendTimeout, err := time.ParseDuration(getEnv("ALERT_SEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_SEND_TIMEOUT: %w", err)
	}

	retentionDays, err := strconv.Atoi(getEnv("SNAPSHOT_RETENTION_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_RETENTION_DAYS: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	thresholds, err := loadThresholds()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 10),
			RateLimitBurst:  int(getEnvFloat("RATE_LIMIT_BURST", 20)),
		},
		Monitoring: MonitoringConfig{
			CollectionInterval: interval,
			SourceTimeout:      sourceTimeout,
			RetentionDays:      retentionDays,
			EscalationCommand:  getEnv("ESCALATION_COMMAND", "sudo -n true"),
			EscalationTimeout:  30 * time.Second,
		},
		Thresholds: thresholds,
		Alerts: AlertsConfig{
			Email: EmailChannelConfig{
				Enabled:    getEnvBool("EMAIL_ALERTS_ENABLED", false),
				SMTPServer: getEnv("SMTP_SERVER", "smtp.gmail.com"),
				SMTPPort:   smtpPort,
				Sender:     getEnv("SENDER_EMAIL", ""),
				Password:   getEnv("SENDER_PASSWORD", ""),
				Recipients: splitCSV(getEnv("RECIPIENT_EMAILS", "")),
			},
			Webhook: WebhookChannelConfig{
				Enabled: getEnvBool("WEBHOOK_ALERTS_ENABLED", false),
				URL:     getEnv("WEBHOOK_URL", ""),
			},
			SendTimeout: sendTimeout,
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "diagnostics"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           redisDB,
			TTL:          5 * time.Minute,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		NATS: NATSConfig{
			Enabled: getEnvBool("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Subject: getEnv("NATS_SUBJECT_PREFIX", "diagnostics"),
		},
		CloudWatch: CloudWatchConfig{
			Enabled:         getEnvBool("CLOUDWATCH_ENABLED", false),
			Namespace:       getEnv("CLOUDWATCH_NAMESPACE", "SystemDiagnostics/Host"),
			LogGroupName:    getEnv("CLOUDWATCH_LOG_GROUP", "/system-diagnostics/alerts"),
			LogStreamName:   getEnv("CLOUDWATCH_LOG_STREAM", "alerts"),
			Region:          getEnv("CLOUDWATCH_REGION", "us-east-1"),
			Endpoint:        getEnv("CLOUDWATCH_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Security: SecurityConfig{
			AuthEnabled:    getEnvBool("AUTH_ENABLED", false),
			AuthToken:      getEnv("AUTH_BEARER_TOKEN", ""),
			AllowedOrigins: splitCSV(getEnv("WS_ALLOWED_ORIGINS", "http://localhost:8080")),
		},
	}

	if cfg.Security.AuthEnabled && cfg.Security.AuthToken == "" {
		return nil, fmt.Errorf("AUTH_BEARER_TOKEN is required when AUTH_ENABLED=true")
	}
	if cfg.Alerts.Email.Enabled && cfg.Alerts.Email.Sender == "" {
		return nil, fmt.Errorf("SENDER_EMAIL is required when EMAIL_ALERTS_ENABLED=true")
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_ALERTS_ENABLED=true")
	}

	return cfg, nil
}

func loadThresholds() (ThresholdsConfig, error) {
	t := ThresholdsConfig{}
	fields := []struct {
		name string
		def  float64
		dst  *float64
	}{
		{"CPU_USAGE_MAX", 90, &t.CPUUsageMax},
		{"CPU_TEMP_MAX", 85, &t.CPUTempMax},
		{"MEMORY_USAGE_MAX", 90, &t.MemoryUsageMax},
		{"DISK_USAGE_MAX", 90, &t.DiskUsageMax},
		{"SENSOR_TEMP_MAX", 85, &t.SensorTempMax},
	}

	for _, f := range fields {
		raw := getEnv(f.name, "")
		if raw == "" {
			*f.dst = f.def
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return t, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = v
	}

	return t, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func splitCSV(raw string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
