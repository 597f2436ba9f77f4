package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	// Webhook verification
	FacebookAppSecret       string
	InstagramAppSecret      string
	WhatsAppAppSecret       string
	WhatsAppSignatureHeader string
	FormSharedSecret        string
	FormTokenHeader         string
	MetaVerifyToken         string

	// Outbound messaging
	GraphAPIVersion   string
	GraphAPIBaseURL   string
	WhatsAppTransport string // "cloud" or "whatsmeow"
	WhatsAppStoreURL  string

	// Email
	EmailProvider string
	BrevoAPIKey   string
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string

	// LLM
	LLMProvider    string
	LLMModel       string
	OpenAIKey      string
	GroqAPIKey     string
	DeepSeekAPIKey string

	// Dispatch
	ActionTimeout     time.Duration
	DispatchMode      string
	DispatchWorkers   int
	DispatchQueueSize int
	RuleConcurrency   int
	RuleCacheTTL      time.Duration
	RedisAddr         string
	DedupEvents       bool

	// Scheduler
	SchedulerEnabled bool
	SchedulerResync  time.Duration
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		FacebookAppSecret:       os.Getenv("FACEBOOK_APP_SECRET"),
		InstagramAppSecret:      os.Getenv("INSTAGRAM_APP_SECRET"),
		WhatsAppAppSecret:       os.Getenv("WHATSAPP_APP_SECRET"),
		WhatsAppSignatureHeader: getEnv("WHATSAPP_SIGNATURE_HEADER", "X-Hub-Signature-256"),
		FormSharedSecret:        os.Getenv("FORM_SHARED_SECRET"),
		FormTokenHeader:         getEnv("FORM_TOKEN_HEADER", "X-Form-Token"),
		MetaVerifyToken:         os.Getenv("META_VERIFY_TOKEN"),

		GraphAPIVersion:   getEnv("GRAPH_API_VERSION", "v21.0"),
		GraphAPIBaseURL:   getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com"),
		WhatsAppTransport: strings.ToLower(getEnv("WHATSAPP_TRANSPORT", "cloud")),
		WhatsAppStoreURL:  os.Getenv("WHATSAPP_STORE_URL"),

		EmailProvider: strings.ToLower(os.Getenv("EMAIL_PROVIDER")),
		BrevoAPIKey:   os.Getenv("BREVO_API_KEY"),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Automation"),

		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:       os.Getenv("LLM_MODEL"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		DeepSeekAPIKey: os.Getenv("DEEPSEEK_API_KEY"),

		ActionTimeout:     getDuration("ACTION_TIMEOUT", 10*time.Second),
		DispatchMode:      strings.ToLower(getEnv("DISPATCH_MODE", "pool")),
		DispatchWorkers:   getInt("DISPATCH_WORKERS", 8),
		DispatchQueueSize: getInt("DISPATCH_QUEUE_SIZE", 256),
		RuleConcurrency:   getInt("RULE_CONCURRENCY", 4),
		RuleCacheTTL:      getDuration("RULE_CACHE_TTL", 30*time.Second),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		DedupEvents:       getBool("DEDUP_EVENTS", true),

		SchedulerEnabled: getBool("SCHEDULER_ENABLED", true),
		SchedulerResync:  getDuration("SCHEDULER_RESYNC", time.Minute),
	}

	// Instagram apps are usually the same Meta app as the page
	if cfg.InstagramAppSecret == "" {
		cfg.InstagramAppSecret = cfg.FacebookAppSecret
	}
	if cfg.WhatsAppStoreURL == "" {
		// Default to main database if not specified
		cfg.WhatsAppStoreURL = cfg.DatabaseURL
	}

	return cfg
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("⚠️ Invalid integer, using default")
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("⚠️ Invalid boolean, using default")
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("15s") or plain seconds ("15")
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("⚠️ Invalid duration, using default")
		return fallback
	}
	return v
}
