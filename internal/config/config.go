package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores database connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection string from the DB settings.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Payments stores payment processor settings.
type Payments struct {
	BaseURL        string
	KeyID          string
	KeySecret      string
	WebhookSecret  string
	CaptureTimeout time.Duration
}

// AgreementsGateway stores borrow-agreements gateway settings.
type AgreementsGateway struct {
	BaseURL     string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Kafka stores broker and topic settings for the async paths.
type Kafka struct {
	Brokers       []string
	PaymentsTopic string
	NotifyTopic   string
	GroupID       string
}

// Delivery stores delivery workflow policy settings.
type Delivery struct {
	FeeAmount         int64
	Ordering          string
	VerifyMaxAttempts int
	VerifyWindow      time.Duration
}

// RateLimit stores HTTP rate limiter settings.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Config stores delivery service settings.
type Config struct {
	Port       int
	DB         DB
	Payments   Payments
	Agreements AgreementsGateway
	Kafka      Kafka
	Delivery   Delivery
	RateLimit  RateLimit
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:       DefaultPort(),
		DB:         DefaultDB(),
		Payments:   DefaultPayments(),
		Agreements: DefaultAgreementsGateway(),
		Kafka:      DefaultKafka(),
		Delivery:   DefaultDelivery(),
		RateLimit:  DefaultRateLimit(),
	}
	cfg.applyEnv()

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Delivery.FeeAmount <= 0 {
		return nil, fmt.Errorf("invalid delivery fee: %d", cfg.Delivery.FeeAmount)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}

	setEnvString(&c.DB.Host, "DB_HOST")
	setEnvString(&c.DB.Port, "DB_PORT")
	setEnvString(&c.DB.User, "DB_USER")
	setEnvString(&c.DB.Pass, "DB_PASS")
	setEnvString(&c.DB.Name, "DB_NAME")

	setEnvString(&c.Payments.BaseURL, "PAYMENTS_BASE_URL")
	setEnvString(&c.Payments.KeyID, "PAYMENTS_KEY_ID")
	setEnvString(&c.Payments.KeySecret, "PAYMENTS_KEY_SECRET")
	setEnvString(&c.Payments.WebhookSecret, "PAYMENTS_WEBHOOK_SECRET")
	setEnvDuration(&c.Payments.CaptureTimeout, "PAYMENTS_CAPTURE_TIMEOUT")

	setEnvString(&c.Agreements.BaseURL, "AGREEMENTS_BASE_URL")
	setEnvInt(&c.Agreements.MaxAttempts, "AGREEMENTS_MAX_ATTEMPTS")
	setEnvDuration(&c.Agreements.BaseDelay, "AGREEMENTS_BASE_DELAY")
	setEnvDuration(&c.Agreements.MaxDelay, "AGREEMENTS_MAX_DELAY")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitAndTrim(v)
	}
	setEnvString(&c.Kafka.PaymentsTopic, "KAFKA_PAYMENTS_TOPIC")
	setEnvString(&c.Kafka.NotifyTopic, "KAFKA_NOTIFY_TOPIC")
	setEnvString(&c.Kafka.GroupID, "KAFKA_GROUP_ID")

	setEnvInt64(&c.Delivery.FeeAmount, "DELIVERY_FEE_AMOUNT")
	setEnvString(&c.Delivery.Ordering, "DELIVERY_ORDERING")
	setEnvInt(&c.Delivery.VerifyMaxAttempts, "DELIVERY_VERIFY_MAX_ATTEMPTS")
	setEnvDuration(&c.Delivery.VerifyWindow, "DELIVERY_VERIFY_WINDOW")

	setEnvInt(&c.RateLimit.Limit, "RATE_LIMIT")
	setEnvDuration(&c.RateLimit.Window, "RATE_LIMIT_WINDOW")
}

func setEnvString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setEnvInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setEnvInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setEnvDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
