package widget

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/soyeahso/agentchat/internal/backend"
)

// Sender identifies who produced a Message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// ConnectionStatus is the two-valued backend status indicator.
type ConnectionStatus string

const (
	StatusOnline  ConnectionStatus = "online"
	StatusOffline ConnectionStatus = "offline"
)

// TimeFormat is the clock format used in message time labels.
const TimeFormat = "15:04:05"

// Message is one entry in the message list. Messages are never mutated
// after they are appended.
type Message struct {
	ID        ulid.ULID
	Text      string
	Sender    Sender
	IsError   bool
	Timestamp time.Time
	AgentName string
	AgentType string
}

// TimeLabel renders the message time, suffixed with the responding agent
// for bot replies that carry one.
func (m Message) TimeLabel() string {
	label := m.Timestamp.Format(TimeFormat)
	if m.Sender == SenderBot && m.AgentName != "" {
		label += " - " + m.AgentName
	}
	return label
}

// AgentStatus describes one selectable agent.
type AgentStatus = backend.AgentEntry

// UIState is the controller-owned presentation state.
type UIState struct {
	Loading       bool
	Status        ConnectionStatus
	StatusText    string
	SelectedAgent string
	CurrentAgent  string
	Agents        []AgentStatus
	SwitchBusy    bool
	KnowledgeOpen bool
}

// ChatResult is the outcome of SendChat.
type ChatResult struct {
	// Sent is false when the input was empty and nothing happened.
	Sent      bool
	Success   bool
	Response  string
	Error     string
	AgentName string
	AgentType string
	// Stale is true when a newer chat started before this one resolved.
	Stale bool
}

// HealthReport is the outcome of CheckHealth.
type HealthReport struct {
	Status  ConnectionStatus
	Text    string
	Missing []string
}

// SwitchResult is the outcome of SwitchAgent.
type SwitchResult struct {
	Agent   string
	Success bool
	Error   string
	Stale   bool
}

// KnowledgeResult is the outcome of AddKnowledge.
type KnowledgeResult struct {
	// Sent is false when the content was empty and nothing happened.
	Sent    bool
	Success bool
	Preview string
	DocID   string
	Error   string
	Stale   bool
}
