package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/japap-media/server/pkg/logging"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string
	EventsAddress string
	RealIPHeader  string
	FrontendURL   string
	AdminToken    string

	MongoURI string
	MongoDB  string
	RedisURI string
	NodeId   string

	SentryDSN         string
	SessionSigningKey string

	SweepInterval time.Duration
	BlockedWords  []string

	Media MediaConfig
	SMTP  SMTPConfig
}

type MediaConfig struct {
	Backend      string // "s3" or "http"
	S3Bucket     string
	S3Region     string
	S3PublicURL  string
	UploadURL    string
	UploadPreset string
}

type SMTPConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	FromName        string
	FromAddress     string
	ModerationEmail string
}

// Load reads .env files (if any) and then the process environment.
func Load() *Config {
	env := os.Getenv("JAPAP_ENV")
	if env == "" {
		env = "dev"
	}
	// .env.[env].local has the highest priority, .env the lowest
	godotenv.Load(".env." + env + ".local")
	godotenv.Load(".env.local")
	godotenv.Load(".env." + env)
	godotenv.Load()

	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "3000"),
		EventsAddress: getEnv("EVENTS_ADDRESS", ":3001"),
		RealIPHeader:  getEnv("REAL_IP_HEADER", ""),
		FrontendURL:   strings.TrimSuffix(getEnv("FRONTEND_URL", "https://japap.app"), "/"),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "japap"),
		RedisURI: getEnv("REDIS_URI", "redis://localhost:6379/0"),
		NodeId:   getEnv("NODE_ID", "0"),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SessionSigningKey: getEnv("SESSION_SIGNING_KEY", ""),

		SweepInterval: getDuration("SWEEP_INTERVAL", time.Hour),
		BlockedWords:  splitList(getEnv("BLOCKED_WORDS", "")),

		Media: MediaConfig{
			Backend:      getEnv("MEDIA_BACKEND", "http"),
			S3Bucket:     getEnv("S3_BUCKET", ""),
			S3Region:     getEnv("S3_REGION", "us-west-1"),
			S3PublicURL:  getEnv("S3_PUBLIC_URL", ""),
			UploadURL:    getEnv("MEDIA_UPLOAD_URL", ""),
			UploadPreset: getEnv("MEDIA_UPLOAD_PRESET", ""),
		},
		SMTP: SMTPConfig{
			Host:            getEnv("SMTP_HOST", ""),
			Port:            getInt("SMTP_PORT", 587),
			Username:        getEnv("SMTP_USERNAME", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			FromName:        getEnv("SMTP_FROM_NAME", "Japap"),
			FromAddress:     getEnv("SMTP_FROM_ADDRESS", ""),
			ModerationEmail: getEnv("MODERATION_EMAIL", ""),
		},
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logging.Log.WithField("key", key).Warnf("invalid duration %q, using %s", raw, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		logging.Log.WithField("key", key).Warnf("invalid integer %q, using %d", raw, fallback)
		return fallback
	}
	return i
}

func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
