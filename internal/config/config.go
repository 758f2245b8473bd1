package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	QueueCacheTTL  time.Duration
	WorkerCount    int
	UseMemoryQueue bool

	// Outbound telephony / WhatsApp
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioVoiceNumber    string
	TwilioWhatsAppFrom   string
	PublicWebhookBaseURL string

	// Optional suggestion enrichment
	GeminiAPIKey  string
	GeminiModelID string

	// Enrichment job queue (SQS when configured, in-process channel otherwise)
	AWSRegion          string
	SuggestionQueueURL string

	// End-of-day report email
	EmailProvider   string
	SendGridAPIKey  string
	ReportFromEmail string
	ReportToEmail   string

	// Safe-calling window, local hours
	CallWindowStartHour int
	CallWindowEndHour   int
	CallWindowTimezone  string

	SupervisorJWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		QueueCacheTTL:  getEnvAsDuration("QUEUE_CACHE_TTL", 2*time.Minute),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", true),

		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioVoiceNumber:    getEnv("TWILIO_VOICE_NUMBER", ""),
		TwilioWhatsAppFrom:   getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		PublicWebhookBaseURL: getEnv("WEBHOOK_BASE_URL", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		SuggestionQueueURL: getEnv("SUGGESTION_QUEUE_URL", ""),

		EmailProvider:   getEnv("EMAIL_PROVIDER", "sendgrid"),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		ReportFromEmail: getEnv("REPORT_FROM_EMAIL", ""),
		ReportToEmail:   getEnv("REPORT_TO_EMAIL", ""),

		CallWindowStartHour: getEnvAsInt("CALL_WINDOW_START_HOUR", 8),
		CallWindowEndHour:   getEnvAsInt("CALL_WINDOW_END_HOUR", 20),
		CallWindowTimezone:  getEnv("CALL_WINDOW_TZ", "Asia/Kolkata"),

		SupervisorJWTSecret: getEnv("SUPERVISOR_JWT_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
