package backend

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// APIKeysStatus reports which provider keys the backend has configured.
type APIKeysStatus struct {
	Google bool `json:"google_api_key"`
	OpenAI bool `json:"openai_api_key"`
	Tavily bool `json:"tavily_api_key"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status                string `json:"status"`
	AgentManagerAvailable bool   `json:"agent_manager_available"`
	CurrentAgent          string `json:"current_agent,omitempty"`
	// APIKeys is nil when the backend omitted api_keys_status, which
	// callers treat as an unusable health report.
	APIKeys *APIKeysStatus `json:"api_keys_status"`
}

// AgentEntry is one agent from agents_status, keyed by its identifier.
type AgentEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// AgentsInfo is the body of GET /api/agents-info and the agent_info
// object returned by POST /switch-agent. Agents keep the backend's
// document order.
type AgentsInfo struct {
	Available       bool
	Message         string
	CurrentAgent    string
	AvailableAgents []string
	Agents          []AgentEntry

	availableSet bool
}

// Agent returns the entry for id, if present.
func (a *AgentsInfo) Agent(id string) (AgentEntry, bool) {
	for _, e := range a.Agents {
		if e.ID == id {
			return e, true
		}
	}
	return AgentEntry{}, false
}

// UnmarshalJSON decodes agents_status in document order, which
// encoding/json cannot do for an object decoded into a map.
func (a *AgentsInfo) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid agents info", ErrDecode)
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return fmt.Errorf("%w: agents info is not an object", ErrDecode)
	}

	*a = AgentsInfo{
		Message:      r.Get("message").String(),
		CurrentAgent: r.Get("current_agent").String(),
	}
	avail := r.Get("available")
	a.Available = avail.Bool()
	a.availableSet = avail.Exists()

	r.Get("available_agents").ForEach(func(_, v gjson.Result) bool {
		a.AvailableAgents = append(a.AvailableAgents, v.String())
		return true
	})

	r.Get("agents_status").ForEach(func(k, v gjson.Result) bool {
		entry := AgentEntry{
			ID:          k.String(),
			Name:        v.Get("name").String(),
			Description: v.Get("description").String(),
			Available:   v.Get("available").Bool(),
		}
		if entry.Name == "" {
			entry.Name = entry.ID
		}
		a.Agents = append(a.Agents, entry)
		return true
	})
	return nil
}

// SwitchAgentResponse is the body of POST /switch-agent.
type SwitchAgentResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message,omitempty"`
	CurrentAgent string      `json:"current_agent,omitempty"`
	AgentInfo    *AgentsInfo `json:"agent_info,omitempty"`
	Error        string      `json:"error,omitempty"`
	Detail       string      `json:"detail,omitempty"`
}

// ChatRequest is the form body of POST /chat.
type ChatRequest struct {
	Query     string
	UserID    string
	SessionID string
}

// ChatResponse is the body of POST /chat.
type ChatResponse struct {
	Success   bool   `json:"success"`
	Query     string `json:"query,omitempty"`
	Response  string `json:"response,omitempty"`
	Agent     string `json:"agent,omitempty"`
	AgentName string `json:"agent_name,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// KnowledgeRequest is the form body of POST /add-knowledge.
type KnowledgeRequest struct {
	Content string
	Source  string
	UserID  string
}

// KnowledgeResponse is the body of POST /add-knowledge.
type KnowledgeResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	DocID          string `json:"doc_id,omitempty"`
	ContentPreview string `json:"content_preview,omitempty"`
	Error          string `json:"error,omitempty"`
	Detail         string `json:"detail,omitempty"`
}

// errorText folds a FastAPI-style detail into error.
func errorText(errField, detail string) string {
	if errField != "" {
		return errField
	}
	return detail
}

func (r *SwitchAgentResponse) normalize() {
	r.Error = errorText(r.Error, r.Detail)
	// agent_info inside a switch response omits the flag; its presence
	// implies the manager is up.
	if r.AgentInfo != nil && !r.AgentInfo.availableSet {
		r.AgentInfo.Available = true
	}
}

func (r *ChatResponse) normalize()        { r.Error = errorText(r.Error, r.Detail) }
func (r *KnowledgeResponse) normalize()   { r.Error = errorText(r.Error, r.Detail) }
