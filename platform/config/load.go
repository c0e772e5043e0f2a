package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	defaultSheetID := getEnv("GOOGLE_SHEET_ID", "")
	clientSheetIDs := splitCSV(getEnv("CLIENT_SHEET_IDS", ""))
	if len(clientSheetIDs) == 0 && defaultSheetID != "" {
		clientSheetIDs = []string{defaultSheetID}
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		VapiBaseURL:            getEnv("VAPI_BASE_URL", "https://api.vapi.ai"),
		VapiAPIKey:             getEnv("VAPI_API_KEY", ""),
		VapiPhoneNumberID:      getEnv("VAPI_PHONE_NUMBER_ID", ""),
		VapiWebhookSecret:      getEnv("VAPI_WEBHOOK_SECRET", ""),
		WebhookURL:             getEnv("WEBHOOK_URL", "http://localhost:8080/api/v1/webhook/vapi"),
		MaxCallDurationSeconds: mustInt(getEnv("MAX_CALL_DURATION_SECONDS", "300")),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		SheetsCredentialsFile:  getEnv("GOOGLE_SHEETS_CREDENTIALS_FILE", "credentials.json"),
		DefaultSheetID:         defaultSheetID,
		ClientSheetIDs:         clientSheetIDs,
		SheetHeaderRow:         mustInt(getEnv("SHEET_HEADER_ROW", "10")),
		SheetDateCol:           mustInt(getEnv("SHEET_DATE_COL", "4")),
		SheetInvoiceCol:        mustInt(getEnv("SHEET_INVOICE_COL", "6")),
		SheetPendingCol:        mustInt(getEnv("SHEET_PENDING_COL", "1")),
		SheetDueDateCol:        mustInt(getEnv("SHEET_DUE_DATE_COL", "7")),
		Timezone:               getEnv("TIMEZONE", "Asia/Kolkata"),
		BusinessHoursStart:     getEnv("BUSINESS_HOURS_START", "10:00"),
		BusinessHoursEnd:       getEnv("BUSINESS_HOURS_END", "19:00"),
		CallRateLimitPerMinute: mustInt(getEnv("CALL_RATE_LIMIT_PER_MINUTE", "10")),
		DailyRunTime:           getEnv("DAILY_RUN_TIME", "09:00"),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE_NAME", "paycall"),
		AsynqConcurrency:       mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.VapiAPIKey == "" || cfg.VapiPhoneNumberID == "" {
		return nil, fmt.Errorf("VAPI_API_KEY and VAPI_PHONE_NUMBER_ID are required")
	}
	if cfg.DefaultSheetID == "" {
		return nil, fmt.Errorf("GOOGLE_SHEET_ID is required")
	}
	if cfg.CallRateLimitPerMinute < 1 {
		return nil, fmt.Errorf("CALL_RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
