package config

// Config is the root configuration for toolforge.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Models  ModelsConfig  `yaml:"models,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Lookup  LookupConfig  `yaml:"lookup,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ServerConfig controls the management API server.
type ServerConfig struct {
	Port           int        `yaml:"port,omitempty"`
	Bind           string     `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string     `yaml:"customBindHost,omitempty"`
	Auth           ServerAuth `yaml:"auth,omitempty"`
	TLS            ServerTLS  `yaml:"tls,omitempty"`
	AllowedOrigins []string   `yaml:"allowedOrigins,omitempty"`
}

// ServerAuth configures API authentication. An empty token disables auth,
// which is only sensible for loopback deployments.
type ServerAuth struct {
	Token string `yaml:"token,omitempty"`
}

// ServerTLS configures TLS for the API server.
type ServerTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// ModelsConfig lists the model IDs agents may reference.
type ModelsConfig struct {
	Default   string   `yaml:"default,omitempty"`
	Available []string `yaml:"available,omitempty"`
}

// HistoryConfig controls the revision history store.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // nil means enabled
	Store   string `yaml:"store,omitempty"`   // "sqlite" | "none"
}

// LookupConfig controls the weather/time lookup client.
type LookupConfig struct {
	UserAgent      string `yaml:"userAgent,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// HistoryEnabled reports whether revision history should be recorded.
func (c Config) HistoryEnabled() bool {
	if c.History.Store == "none" {
		return false
	}
	if c.History.Enabled == nil {
		return true
	}
	return *c.History.Enabled
}
