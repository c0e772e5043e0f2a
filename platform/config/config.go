// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetEnvironment() string
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// VapiConfig provides settings for the outbound call provider client.
type VapiConfig interface {
	GetVapiBaseURL() string
	GetVapiAPIKey() string
	GetVapiPhoneNumberID() string
	GetVapiWebhookSecret() string
	GetWebhookURL() string
	GetMaxCallDurationSeconds() int
}

// ClassifierConfig provides settings for the transcript outcome classifier.
type ClassifierConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsClassifierEnabled() bool
}

// SheetsConfig provides settings for the spreadsheet gateway.
type SheetsConfig interface {
	GetSheetsCredentialsFile() string
	GetDefaultSheetID() string
	GetSheetHeaderRow() int
	GetSheetDateCol() int
	GetSheetInvoiceCol() int
	GetSheetPendingCol() int
	GetSheetDueDateCol() int
}

// DispatchConfig provides settings for the outbound call batch.
type DispatchConfig interface {
	GetTimezone() string
	GetBusinessHoursStart() string
	GetBusinessHoursEnd() string
	GetCallRateLimitPerMinute() int
	GetDefaultSheetID() string
	GetClientSheetIDs() []string
}

// SchedulerConfig provides settings for the asynq-backed scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetDailyRunTime() string
	GetTimezone() string
	GetClientSheetIDs() []string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	VapiBaseURL            string
	VapiAPIKey             string
	VapiPhoneNumberID      string
	VapiWebhookSecret      string
	WebhookURL             string
	MaxCallDurationSeconds int
	GeminiAPIKey           string
	GeminiModel            string
	SheetsCredentialsFile  string
	DefaultSheetID         string
	ClientSheetIDs         []string
	SheetHeaderRow         int
	SheetDateCol           int
	SheetInvoiceCol        int
	SheetPendingCol        int
	SheetDueDateCol        int
	Timezone               string
	BusinessHoursStart     string
	BusinessHoursEnd       string
	CallRateLimitPerMinute int
	DailyRunTime           string
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetEnvironment() string   { return c.Env }
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// VapiConfig implementation
func (c *Config) GetVapiBaseURL() string         { return c.VapiBaseURL }
func (c *Config) GetVapiAPIKey() string          { return c.VapiAPIKey }
func (c *Config) GetVapiPhoneNumberID() string   { return c.VapiPhoneNumberID }
func (c *Config) GetVapiWebhookSecret() string   { return c.VapiWebhookSecret }
func (c *Config) GetWebhookURL() string          { return c.WebhookURL }
func (c *Config) GetMaxCallDurationSeconds() int { return c.MaxCallDurationSeconds }

// ClassifierConfig implementation
func (c *Config) GetGeminiAPIKey() string   { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string    { return c.GeminiModel }
func (c *Config) IsClassifierEnabled() bool { return c.GeminiAPIKey != "" }

// SheetsConfig implementation
func (c *Config) GetSheetsCredentialsFile() string { return c.SheetsCredentialsFile }
func (c *Config) GetDefaultSheetID() string        { return c.DefaultSheetID }
func (c *Config) GetSheetHeaderRow() int           { return c.SheetHeaderRow }
func (c *Config) GetSheetDateCol() int             { return c.SheetDateCol }
func (c *Config) GetSheetInvoiceCol() int          { return c.SheetInvoiceCol }
func (c *Config) GetSheetPendingCol() int          { return c.SheetPendingCol }
func (c *Config) GetSheetDueDateCol() int          { return c.SheetDueDateCol }

// DispatchConfig implementation
func (c *Config) GetTimezone() string            { return c.Timezone }
func (c *Config) GetBusinessHoursStart() string  { return c.BusinessHoursStart }
func (c *Config) GetBusinessHoursEnd() string    { return c.BusinessHoursEnd }
func (c *Config) GetCallRateLimitPerMinute() int { return c.CallRateLimitPerMinute }
func (c *Config) GetClientSheetIDs() []string    { return c.ClientSheetIDs }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetDailyRunTime() string   { return c.DailyRunTime }
