package widget

import "context"

// View is the platform surface the widget drives. Implementations must be
// safe for concurrent use and must not call back into the Widget.
type View interface {
	AppendMessage(m Message)
	ScrollToBottom()
	SetStatus(status ConnectionStatus, text string)
	SetLoading(loading bool)
	SetSwitchBusy(busy bool)
	SetSelectedAgent(id string)
	ShowCurrentAgent(agent AgentStatus)
	RenderAgents(agents []AgentStatus, current string)
	ShowAgentsNotice(text string)
	SetKnowledgePanel(open bool)
	ClearKnowledgeInput()
	ClearInput()
	FocusInput()
}

// LayoutNotifier is implemented by views that can run a callback once
// pending output has been laid out. When present it replaces the fixed
// scroll delay.
type LayoutNotifier interface {
	AfterLayout(fn func())
}

// Storage persists small string values across sessions.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// NopView discards every update. Embed it to implement only part of View.
type NopView struct{}

func (NopView) AppendMessage(Message)              {}
func (NopView) ScrollToBottom()                    {}
func (NopView) SetStatus(ConnectionStatus, string) {}
func (NopView) SetLoading(bool)                    {}
func (NopView) SetSwitchBusy(bool)                 {}
func (NopView) SetSelectedAgent(string)            {}
func (NopView) ShowCurrentAgent(AgentStatus)       {}
func (NopView) RenderAgents([]AgentStatus, string) {}
func (NopView) ShowAgentsNotice(string)            {}
func (NopView) SetKnowledgePanel(bool)             {}
func (NopView) ClearKnowledgeInput()               {}
func (NopView) ClearInput()                        {}
func (NopView) FocusInput()                        {}
