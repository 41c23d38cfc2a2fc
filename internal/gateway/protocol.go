package gateway

import "encoding/json"

// Frame types for the WebSocket protocol.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Protocol version supported by this server.
const ProtocolVersion = 1

// Frame is the base envelope for all WebSocket messages.
// The Type field discriminates between request, response, and event frames.
type Frame struct {
	Type string `json:"type"`

	// Request fields
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	// Response fields
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// Event fields
	Event string `json:"event,omitempty"`
	Seq   int64  `json:"seq,omitempty"`

	// Error (response only)
	Error *ErrorShape `json:"error,omitempty"`
}

// ErrorShape is the standard error format in response frames.
type ErrorShape struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable,omitempty"`
	RetryAfter int    `json:"retryAfterMs,omitempty"`
}

// Error codes.
const (
	CodeProtocol       = "protocol_error"
	CodeInvalidParams  = "invalid_params"
	CodeUnauthorized   = "unauthorized"
	CodeMethodNotFound = "method_not_found"
	CodeRateLimited    = "rate_limited"
	CodeBackend        = "backend_error"
)

// ConnectParams are sent by the page in the initial "connect" request.
type ConnectParams struct {
	MinProtocol int          `json:"minProtocol"`
	MaxProtocol int          `json:"maxProtocol"`
	Client      ClientInfo   `json:"client"`
	Auth        *ConnectAuth `json:"auth,omitempty"`
	Locale      string       `json:"locale,omitempty"`
	// UserID is the identifier the page kept in localStorage, if any.
	UserID string `json:"userId,omitempty"`
}

// ClientInfo identifies the connecting page.
type ClientInfo struct {
	ID        string `json:"id"`
	Version   string `json:"version,omitempty"`
	Platform  string `json:"platform,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// ConnectAuth carries credentials in the connect request.
type ConnectAuth struct {
	Token    string `json:"token,omitempty"`
	Password string `json:"password,omitempty"`
}

// HelloOK is the server's response payload after successful authentication.
type HelloOK struct {
	Protocol int          `json:"protocol"`
	Server   ServerInfo   `json:"server"`
	Features Features     `json:"features"`
	Policy   ServerPolicy `json:"policy"`
	Locale   string       `json:"locale"`
}

// ServerInfo identifies the bridge.
type ServerInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Backend string `json:"backend"`
	ConnID  string `json:"connId"`
}

// Features advertises available RPC methods and events.
type Features struct {
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// ServerPolicy communicates protocol limits to the page.
type ServerPolicy struct {
	MaxPayload        int     `json:"maxPayload"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	Burst             int     `json:"burst"`
}

// RPC method names.
const (
	MethodConnect         = "connect"
	MethodChatSend        = "chat.send"
	MethodAgentSwitch     = "agent.switch"
	MethodAgentsRefresh   = "agents.refresh"
	MethodHealthCheck     = "health.check"
	MethodKnowledgeAdd    = "knowledge.add"
	MethodKnowledgeToggle = "knowledge.toggle"
)

// Event names pushed to the page.
const (
	EventChallenge        = "connect.challenge"
	EventMessageAppended  = "message.appended"
	EventScroll           = "scroll"
	EventStatusChanged    = "status.changed"
	EventLoadingChanged   = "loading.changed"
	EventSwitchBusy       = "switch.busy"
	EventAgentSelected    = "agent.selected"
	EventAgentCurrent     = "agent.current"
	EventAgentsRendered   = "agents.rendered"
	EventAgentsNotice     = "agents.notice"
	EventKnowledgePanel   = "knowledge.panel"
	EventKnowledgeCleared = "knowledge.cleared"
	EventInputCleared     = "input.cleared"
	EventInputFocus       = "input.focus"
	EventStorageSet       = "storage.set"
	EventShutdown         = "server.shutdown"
)

// AllEvents lists every event the bridge may push after hello.
var AllEvents = []string{
	EventMessageAppended,
	EventScroll,
	EventStatusChanged,
	EventLoadingChanged,
	EventSwitchBusy,
	EventAgentSelected,
	EventAgentCurrent,
	EventAgentsRendered,
	EventAgentsNotice,
	EventKnowledgePanel,
	EventKnowledgeCleared,
	EventInputCleared,
	EventInputFocus,
	EventStorageSet,
	EventShutdown,
}

// ChatSendParams are the params of chat.send.
type ChatSendParams struct {
	Text string `json:"text"`
}

// AgentSwitchParams are the params of agent.switch.
type AgentSwitchParams struct {
	Agent string `json:"agent"`
}

// KnowledgeAddParams are the params of knowledge.add.
type KnowledgeAddParams struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// KnowledgeToggleParams are the params of knowledge.toggle. A nil Open
// flips the panel.
type KnowledgeToggleParams struct {
	Open *bool `json:"open,omitempty"`
}

// MessagePayload is the payload of message.appended.
type MessagePayload struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	HTML    string `json:"html"`
	Time    string `json:"time"`
	IsError bool   `json:"isError"`
}

// AgentPayload describes one agent in agent.current and agents.rendered.
type AgentPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Badge       string `json:"badge"`
	// Active carries the active-agent marker on the current list entry.
	Active      string `json:"active,omitempty"`
}

// NewRequest creates a request frame.
func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:   FrameTypeRequest,
		ID:     id,
		Method: method,
		Params: raw,
	}, nil
}

// NewResponse creates a success response frame.
func NewResponse(id string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	ok := true
	return Frame{
		Type:    FrameTypeResponse,
		ID:      id,
		OK:      &ok,
		Payload: raw,
	}, nil
}

// NewErrorResponse creates an error response frame.
func NewErrorResponse(id string, errShape ErrorShape) Frame {
	ok := false
	return Frame{
		Type:  FrameTypeResponse,
		ID:    id,
		OK:    &ok,
		Error: &errShape,
	}
}

// NewEvent creates an event frame.
func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:    FrameTypeEvent,
		Event:   event,
		Payload: raw,
		Seq:     seq,
	}, nil
}
