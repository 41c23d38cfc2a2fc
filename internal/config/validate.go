package config

import (
	"fmt"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Backend validation
	if cfg.Backend.BaseURL != "" {
		u, err := url.Parse(cfg.Backend.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, ValidationIssue{
				Path:    "backend.baseUrl",
				Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", cfg.Backend.BaseURL),
			})
		}
	}
	if cfg.Backend.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "backend.timeoutSeconds",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Backend.TimeoutSeconds),
		})
	}

	// UI validation
	validLocales := []string{"pt-BR", "en"}
	if cfg.UI.Locale != "" && !slices.Contains(validLocales, cfg.UI.Locale) {
		issues = append(issues, ValidationIssue{
			Path:    "ui.locale",
			Message: fmt.Sprintf("must be one of %v, got %q", validLocales, cfg.UI.Locale),
		})
	}
	if cfg.UI.ScrollDelayMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "ui.scrollDelayMs",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.UI.ScrollDelayMs),
		})
	}
	validRenders := []string{"minimal", "markdown"}
	if cfg.UI.Render != "" && !slices.Contains(validRenders, cfg.UI.Render) {
		issues = append(issues, ValidationIssue{
			Path:    "ui.render",
			Message: fmt.Sprintf("must be one of %v, got %q", validRenders, cfg.UI.Render),
		})
	}

	// Storage validation
	validStores := []string{"sqlite", "memory"}
	if cfg.Storage.Store != "" && !slices.Contains(validStores, cfg.Storage.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "storage.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Storage.Store),
		})
	}

	// Gateway validation
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}

	validBinds := []string{"auto", "lan", "loopback", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.customBindHost",
			Message: "required when bind: custom",
		})
	}

	validAuthModes := []string{"none", "token", "password"}
	if cfg.Gateway.Auth.Mode != "" && !slices.Contains(validAuthModes, cfg.Gateway.Auth.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.auth.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validAuthModes, cfg.Gateway.Auth.Mode),
		})
	}
	if cfg.Gateway.Auth.Mode == "password" && cfg.Gateway.Auth.Password == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.auth.password",
			Message: "required when auth mode is password",
		})
	}

	if cfg.Gateway.TLS.Enabled && (cfg.Gateway.TLS.CertPath == "" || cfg.Gateway.TLS.KeyPath == "") {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.tls",
			Message: "certPath and keyPath are required when TLS is enabled",
		})
	}

	if cfg.Gateway.RequestsPerSecond < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.requestsPerSecond",
			Message: fmt.Sprintf("must be >= 0, got %g", cfg.Gateway.RequestsPerSecond),
		})
	}
	if cfg.Gateway.Burst < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.burst",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Gateway.Burst),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	// Hook validation
	hookLists := map[string][]HookEntry{
		"hooks.messageAppended": cfg.Hooks.MessageAppended,
		"hooks.statusChanged":   cfg.Hooks.StatusChanged,
		"hooks.agentSwitched":   cfg.Hooks.AgentSwitched,
		"hooks.knowledgeAdded":  cfg.Hooks.KnowledgeAdded,
		"hooks.bridgeStart":     cfg.Hooks.BridgeStart,
		"hooks.bridgeStop":      cfg.Hooks.BridgeStop,
	}
	names := make([]string, 0, len(hookLists))
	for name := range hookLists {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for i, entry := range hookLists[name] {
			if entry.Command == "" {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].command", name, i),
					Message: "command is required",
				})
			}
		}
	}

	return issues
}
