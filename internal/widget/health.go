package widget

import (
	"strings"

	"github.com/soyeahso/agentchat/internal/backend"
)

// MissingPrerequisites lists, in display order, the labels of every
// prerequisite the health response reports as absent.
func MissingPrerequisites(h *backend.HealthResponse, c *Catalog) []string {
	var missing []string
	if !h.AgentManagerAvailable {
		missing = append(missing, c.LabelManager)
	}
	keys := backend.APIKeysStatus{}
	if h.APIKeys != nil {
		keys = *h.APIKeys
	}
	if !keys.Google {
		missing = append(missing, c.LabelGoogleKey)
	}
	if !keys.OpenAI {
		missing = append(missing, c.LabelOpenAIKey)
	}
	if !keys.Tavily {
		missing = append(missing, c.LabelTavilyKey)
	}
	return missing
}

// EvaluateHealth maps a health response to the status indicator. The
// backend is online only when the manager and all three keys are present.
// A nil response or one without api_keys_status is a connection error.
func EvaluateHealth(h *backend.HealthResponse, c *Catalog) HealthReport {
	if h == nil || h.APIKeys == nil {
		return HealthReport{Status: StatusOffline, Text: c.StatusConnError}
	}
	missing := MissingPrerequisites(h, c)
	if len(missing) == 0 {
		return HealthReport{Status: StatusOnline, Text: c.StatusOnline}
	}
	return HealthReport{
		Status:  StatusOffline,
		Text:    c.StatusOffline + ": " + strings.Join(missing, ", "),
		Missing: missing,
	}
}
