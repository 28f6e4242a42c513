package app

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	Version     string
	ServiceName string

	AuthJWTSecret string
	AuthJWTIssuer string

	SchedulesYAML  string
	SessionIdleTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	MidtransServerKey string
	MidtransEnv       string

	PlansYAML   string
	CORSOrigins []string

	ShutdownTimeout time.Duration
}

// LoadDotEnv loads .env (or ENV_FILE) into the process environment. Variables
// already set win. A missing file is not an error.
func LoadDotEnv() error {
	path := envutil.String("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "studyhub-api"),

		AuthJWTSecret: envutil.String("AUTH_JWT_SECRET", ""),
		AuthJWTIssuer: envutil.String("AUTH_JWT_ISSUER", ""),

		SchedulesYAML:  envutil.String("GENERATION_SCHEDULES_YAML", ""),
		SessionIdleTTL: envutil.Duration("SESSION_IDLE_TTL", 30*time.Minute),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisChannel:  envutil.String("REDIS_CHANNEL", "studyhub:sse"),

		MidtransServerKey: envutil.String("MIDTRANS_SERVER_KEY", ""),
		MidtransEnv:       envutil.String("MIDTRANS_ENV", "sandbox"),

		PlansYAML:   envutil.String("PLANS_YAML", ""),
		CORSOrigins: envutil.List("CORS_ORIGINS", nil),

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if log != nil {
		log.Info("config loaded",
			"env", cfg.Environment,
			"port", cfg.Port,
			"redis", cfg.RedisAddr != "",
			"billing", cfg.MidtransServerKey != "",
			"session_idle_ttl", cfg.SessionIdleTTL,
		)
	}
	return cfg
}
