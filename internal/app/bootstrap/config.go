package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	MaxDBConns int32

	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	AdminAccount    string
	IdempotencyTTL  time.Duration
	BalanceCacheTTL time.Duration

	// Platform seed values, applied only when the singleton record does
	// not exist yet. Runtime changes go through the admin endpoints.
	SeedFeeRateBps       uint64
	SeedMinPaymentAmount uint64
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Platform struct {
		AdminAccount     string `yaml:"admin_account"`
		FeeRateBps       uint64 `yaml:"fee_rate_bps"`
		MinPaymentAmount uint64 `yaml:"min_payment_amount"`
	} `yaml:"platform"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "M15-Payments-Ledger-Service",
		HTTPPort:             8080,
		GRPCPort:             9090,
		MaxDBConns:           20,
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      100,
		AdminAccount:         "platform-admin",
		IdempotencyTTL:       7 * 24 * time.Hour,
		BalanceCacheTTL:      30 * time.Second,
		SeedFeeRateBps:       25,
		SeedMinPaymentAmount: 1,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Platform.AdminAccount != "" {
			cfg.AdminAccount = f.Platform.AdminAccount
		}
		if f.Platform.FeeRateBps > 0 {
			cfg.SeedFeeRateBps = f.Platform.FeeRateBps
		}
		if f.Platform.MinPaymentAmount > 0 {
			cfg.SeedMinPaymentAmount = f.Platform.MinPaymentAmount
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.AdminAccount = envOrDefault("ADMIN_ACCOUNT", cfg.AdminAccount)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.BalanceCacheTTL = time.Duration(envInt("BALANCE_CACHE_SECONDS", int(cfg.BalanceCacheTTL.Seconds()))) * time.Second
	cfg.SeedFeeRateBps = envUint("SEED_FEE_RATE_BPS", cfg.SeedFeeRateBps)
	cfg.SeedMinPaymentAmount = envUint("SEED_MIN_PAYMENT_AMOUNT", cfg.SeedMinPaymentAmount)

	if cfg.AdminAccount == "" {
		return Config{}, fmt.Errorf("missing ADMIN_ACCOUNT")
	}
	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envUint(name string, fallback uint64) uint64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
