package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	// SNSPlatformARN is the platform application the mobile device tokens
	// belong to (APNS or FCM application registered in SNS).
	SNSPlatformARN string

	// ArchiveBucket receives the JSONL exports of finished reminders.
	ArchiveBucket string

	// ReminderScanSpec / ArchiveSpec are cron expressions for the worker.
	ReminderScanSpec     string
	ArchiveSpec          string
	ReminderScanLimit    int
	ReminderIntervalDays int
	ArchiveRetentionDays int
	// ReminderTimezone is where "09:00 local" is evaluated when seeding.
	ReminderTimezone string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
// Events and attendances are owned by the events platform and read-only here.
type DynamoTables struct {
	Users         string
	Notifications string
	Reminders     string
	Events        string
	Attendances   string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3001"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Reminders:     getEnv("DYNAMO_TABLE_REMINDERS", "reminders"),
			Events:        getEnv("DYNAMO_TABLE_EVENTS", "events"),
			Attendances:   getEnv("DYNAMO_TABLE_ATTENDANCES", "attendances"),
		},

		SNSPlatformARN: getEnv("SNS_PLATFORM_APPLICATION_ARN", ""),
		ArchiveBucket:  getEnv("ARCHIVE_BUCKET_NAME", "event-reminder-archive"),

		ReminderScanSpec:     getEnv("REMINDER_SCAN_CRON", "* * * * *"),
		ArchiveSpec:          getEnv("REMINDER_ARCHIVE_CRON", "0 3 * * *"),
		ReminderScanLimit:    getEnvInt("REMINDER_SCAN_LIMIT", 50),
		ReminderIntervalDays: getEnvInt("REMINDER_INTERVAL_DAYS", 3),
		ArchiveRetentionDays: getEnvInt("REMINDER_ARCHIVE_RETENTION_DAYS", 7),
		ReminderTimezone:     getEnv("REMINDER_TIMEZONE", "Local"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
