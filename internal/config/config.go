package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	AdminSecret     string
	SMTPHost        string
	SMTPPort        int
	EmailUser       string
	EmailPass       string
	AbsenteeCron    string
	ConnectTimeout  time.Duration
	RateLimitPerMin int
}

// Load returns application config populated from environment variables with sensible defaults.
// A local .env file is read first when present.
func Load() App {
	_ = godotenv.Load()
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("PORT", "5000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "smartattendance"),
		AdminSecret:     getEnv("ADMIN_SECRET", ""),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        intEnv("SMTP_PORT", 587),
		EmailUser:       getEnv("EMAIL_USER", ""),
		EmailPass:       getEnv("EMAIL_PASS", ""),
		AbsenteeCron:    getEnv("ABSENTEE_CRON", "0 17 * * *"),
		ConnectTimeout:  durationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
	}
}

// MailConfigured reports whether SMTP credentials are present; without them
// the notification dispatcher runs in its degraded no-op mode.
func (a App) MailConfigured() bool {
	return a.EmailUser != "" && a.EmailPass != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
