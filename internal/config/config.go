package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	WebhookURL    string
	RetellAPIKey  string
	RetellAgentID string
	RetellBaseURL string
	GHLAPIKey     string
	GHLLocationID string
	GHLCalendarID string
	GHLBaseURL    string

	CallPollInterval time.Duration
	CallMaxWait      time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		RetellAPIKey:  getEnv("RETELL_API_KEY", ""),
		RetellAgentID: getEnv("RETELL_AGENT_ID", ""),
		RetellBaseURL: getEnv("RETELL_BASE_URL", ""),
		GHLAPIKey:     getEnv("GHL_API_KEY", ""),
		GHLLocationID: getEnv("GHL_LOCATION_ID", ""),
		GHLCalendarID: getEnv("GHL_CALENDAR_ID", ""),
		GHLBaseURL:    getEnv("GHL_BASE_URL", ""),

		CallPollInterval: getEnvAsDuration("CALL_POLL_INTERVAL", 5*time.Second),
		CallMaxWait:      getEnvAsDuration("CALL_MAX_WAIT", 10*time.Minute),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// Validate checks that all credentials required to serve traffic are set.
// A non-nil error here is fatal: the process must not start serving
// requests with a partial configuration.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"RETELL_API_KEY", c.RetellAPIKey},
		{"RETELL_AGENT_ID", c.RetellAgentID},
		{"GHL_API_KEY", c.GHLAPIKey},
		{"GHL_LOCATION_ID", c.GHLLocationID},
		{"GHL_CALENDAR_ID", c.GHLCalendarID},
		{"WEBHOOK_URL", c.WebhookURL},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable as a slice
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
