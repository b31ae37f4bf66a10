package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	NatsUrl        string // vide = événements désactivés
	RedisAddr      string // vide = rate limiting en mémoire
	OtelEndpoint   string
	Env            string // "local" ou "prod"

	SweepInterval time.Duration

	// Feedback (email via Resend)
	ResendAPIKey      string
	FeedbackToEmail   string
	FeedbackFromEmail string
	MailTimeout       time.Duration

	// Rate limiting (fenêtre fixe par IP)
	RateWindow   time.Duration
	RateGeneral  int
	RateCreate   int
	RateMutate   int
	RateFeedback int
}

// Load lit le fichier .env s'il existe puis l'environnement.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getEnv("PORT", "4000"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5500,https://easylfg-1.onrender.com")),
		NatsUrl:        getEnv("NATS_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		OtelEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Env:            getEnv("APP_ENV", "local"),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),

		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		FeedbackToEmail:   getEnv("FEEDBACK_TO_EMAIL", "your_email@example.com"),
		FeedbackFromEmail: getEnv("FEEDBACK_FROM_EMAIL", "EasyLFG Feedback <no-reply@easylfg.app>"),
		MailTimeout:       getEnvDuration("MAIL_TIMEOUT", 10*time.Second),

		RateWindow:   getEnvDuration("RATE_WINDOW", 15*time.Minute),
		RateGeneral:  getEnvInt("RATE_GENERAL", 300),
		RateCreate:   getEnvInt("RATE_CREATE", 25),
		RateMutate:   getEnvInt("RATE_MUTATE", 60),
		RateFeedback: getEnvInt("RATE_FEEDBACK", 40),
	}
}

// Redacted masque la clé Resend avant de logguer la config.
func (c Config) Redacted() Config {
	if c.ResendAPIKey != "" {
		c.ResendAPIKey = "***"
	}
	return c
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := getEnv(key, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := getEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
