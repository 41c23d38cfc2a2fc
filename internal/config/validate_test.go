package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePaths(issues []ValidationIssue) []string {
	var paths []string
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_Port(t *testing.T) {
	cfg := Defaults()
	for _, port := range []int{0, 8080, 65535} {
		cfg.Gateway.Port = port
		assert.Empty(t, Validate(&cfg), "port %d should be valid", port)
	}

	cfg.Gateway.Port = 70000
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "gateway.port", issues[0].Path)
}

func TestValidate_BackendURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"http://localhost:8000", true},
		{"https://agents.example.com/api", true},
		{"localhost:8000", false},
		{"ftp://example.com", false},
		{"http://", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := Defaults()
			cfg.Backend.BaseURL = tt.url
			issues := Validate(&cfg)
			if tt.valid {
				assert.Empty(t, issues)
			} else {
				assert.Contains(t, issuePaths(issues), "backend.baseUrl")
			}
		})
	}
}

func TestValidate_Enums(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"locale", func(c *Config) { c.UI.Locale = "fr" }, "ui.locale"},
		{"render", func(c *Config) { c.UI.Render = "rich" }, "ui.render"},
		{"store", func(c *Config) { c.Storage.Store = "redis" }, "storage.store"},
		{"bind", func(c *Config) { c.Gateway.Bind = "tailnet" }, "gateway.bind"},
		{"auth mode", func(c *Config) { c.Gateway.Auth.Mode = "oauth" }, "gateway.auth.mode"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"console style", func(c *Config) { c.Logging.ConsoleStyle = "compact" }, "logging.consoleStyle"},
		{"negative scroll delay", func(c *Config) { c.UI.ScrollDelayMs = -1 }, "ui.scrollDelayMs"},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSeconds = -5 }, "backend.timeoutSeconds"},
		{"negative burst", func(c *Config) { c.Gateway.Burst = -1 }, "gateway.burst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			issues := Validate(&cfg)
			require.Len(t, issues, 1)
			assert.Equal(t, tt.path, issues[0].Path)
		})
	}
}

func TestValidate_CustomBindRequiresHost(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Bind = "custom"
	assert.Contains(t, issuePaths(Validate(&cfg)), "gateway.customBindHost")

	cfg.Gateway.CustomBindHost = "10.0.0.5"
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_PasswordModeRequiresPassword(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Auth.Mode = "password"
	assert.Contains(t, issuePaths(Validate(&cfg)), "gateway.auth.password")
}

func TestValidate_TLSRequiresFiles(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.TLS.Enabled = true
	cfg.Gateway.TLS.CertPath = "/etc/cert.pem"
	assert.Contains(t, issuePaths(Validate(&cfg)), "gateway.tls")
}

func TestValidate_HookCommandRequired(t *testing.T) {
	cfg := Defaults()
	cfg.Hooks.AgentSwitched = []HookEntry{{Command: "echo ok"}, {Timeout: 100}}
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "hooks.agentSwitched[1].command", issues[0].Path)
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "ui.locale", Message: "bad"}
	assert.Equal(t, "ui.locale: bad", issue.String())
}
