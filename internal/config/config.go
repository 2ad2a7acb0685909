package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 18790,
			Bind: "loopback",
		},
		Models: ModelsConfig{
			Default: "gemini-2.0-flash",
			Available: []string{
				"gemini-2.0-flash",
				"gemini-2.5-pro-preview-03-25",
			},
		},
		History: HistoryConfig{
			Store: "sqlite",
		},
		Lookup: LookupConfig{
			UserAgent:      "toolforge-lookup/1.0",
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
