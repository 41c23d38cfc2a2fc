package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultBackendURL    = "http://localhost:8000"
	DefaultGatewayPort   = 18790
	DefaultScrollDelayMs = 100
	DefaultLocale        = "pt-BR"
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
		},
		UI: UIConfig{
			Locale:        DefaultLocale,
			ScrollDelayMs: DefaultScrollDelayMs,
			Render:        "minimal",
		},
		Storage: StorageConfig{
			Store: "sqlite",
		},
		Gateway: GatewayConfig{
			Port: DefaultGatewayPort,
			Bind: "loopback",
			Auth: GatewayAuth{
				Mode: "none",
			},
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
