package gateway

import (
	"context"
	"sync"

	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/widget"
)

// eventSender pushes an event to one page.
type eventSender interface {
	SendEvent(event string, payload any) error
}

// bridgeView implements widget.View by pushing event frames that the page
// applies to its DOM.
type bridgeView struct {
	out      eventSender
	renderer Renderer
	text     *widget.Catalog
	log      *logging.Logger
}

var (
	_ widget.View           = (*bridgeView)(nil)
	_ widget.LayoutNotifier = (*bridgeView)(nil)
)

func newBridgeView(out eventSender, renderer Renderer, text *widget.Catalog, log *logging.Logger) *bridgeView {
	return &bridgeView{out: out, renderer: renderer, text: text, log: log}
}

func (v *bridgeView) push(event string, payload any) {
	if err := v.out.SendEvent(event, payload); err != nil {
		v.log.Debug().Err(err).Str("event", event).Msg("event not delivered")
	}
}

func (v *bridgeView) agentPayload(a widget.AgentStatus) AgentPayload {
	return AgentPayload{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Available:   a.Available,
		Badge:       v.text.Badge(a.Available),
	}
}

func (v *bridgeView) AppendMessage(m widget.Message) {
	v.push(EventMessageAppended, MessagePayload{
		ID:      m.ID.String(),
		Sender:  string(m.Sender),
		HTML:    v.renderer.Render(m.Text),
		Time:    m.TimeLabel(),
		IsError: m.IsError,
	})
}

// ScrollToBottom asks the page to scroll. Events are applied in order, so
// the page scrolls after the DOM update that preceded it.
func (v *bridgeView) ScrollToBottom() { v.push(EventScroll, struct{}{}) }

// AfterLayout runs fn at once: the page applies frames in sequence and
// defers its own scroll to the next animation frame.
func (v *bridgeView) AfterLayout(fn func()) { fn() }

func (v *bridgeView) SetStatus(status widget.ConnectionStatus, text string) {
	v.push(EventStatusChanged, map[string]any{"status": string(status), "text": text})
}

func (v *bridgeView) SetLoading(loading bool) {
	v.push(EventLoadingChanged, map[string]any{"loading": loading})
}

func (v *bridgeView) SetSwitchBusy(busy bool) {
	v.push(EventSwitchBusy, map[string]any{"busy": busy})
}

func (v *bridgeView) SetSelectedAgent(id string) {
	v.push(EventAgentSelected, map[string]any{"agent": id})
}

func (v *bridgeView) ShowCurrentAgent(a widget.AgentStatus) {
	v.push(EventAgentCurrent, map[string]any{
		"label": v.text.CurrentAgent,
		"agent": v.agentPayload(a),
	})
}

func (v *bridgeView) RenderAgents(agents []widget.AgentStatus, current string) {
	list := make([]AgentPayload, 0, len(agents))
	for _, a := range agents {
		p := v.agentPayload(a)
		if a.ID == current {
			p.Active = v.text.ActiveAgent
		}
		list = append(list, p)
	}
	v.push(EventAgentsRendered, map[string]any{"agents": list, "current": current})
}

func (v *bridgeView) ShowAgentsNotice(text string) {
	v.push(EventAgentsNotice, map[string]any{"text": text})
}

func (v *bridgeView) SetKnowledgePanel(open bool) {
	v.push(EventKnowledgePanel, map[string]any{"open": open})
}

func (v *bridgeView) ClearKnowledgeInput() { v.push(EventKnowledgeCleared, struct{}{}) }
func (v *bridgeView) ClearInput()          { v.push(EventInputCleared, struct{}{}) }
func (v *bridgeView) FocusInput()          { v.push(EventInputFocus, struct{}{}) }

// browserStorage keeps values the page stores in localStorage. It is
// seeded from the connect request and pushes every write back to the page.
type browserStorage struct {
	out eventSender

	mu     sync.RWMutex
	values map[string]string
}

func newBrowserStorage(out eventSender, seed map[string]string) *browserStorage {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &browserStorage{out: out, values: values}
}

func (s *browserStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *browserStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return s.out.SendEvent(EventStorageSet, map[string]string{"key": key, "value": value})
}
