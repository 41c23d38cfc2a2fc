package widget

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentchat/internal/backend"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/store"
)

// fakeAPI answers each endpoint with a configurable function and records
// what it was asked.
type fakeAPI struct {
	health    func(ctx context.Context) (*backend.HealthResponse, error)
	agents    func(ctx context.Context) (*backend.AgentsInfo, error)
	switcher  func(ctx context.Context, id string) (*backend.SwitchAgentResponse, error)
	chat      func(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
	knowledge func(ctx context.Context, req backend.KnowledgeRequest) (*backend.KnowledgeResponse, error)

	mu            sync.Mutex
	calls         map[string]int
	chatReqs      []backend.ChatRequest
	knowledgeReqs []backend.KnowledgeRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Health(ctx context.Context) (*backend.HealthResponse, error) {
	f.record("health")
	if f.health == nil {
		return nil, fmt.Errorf("health not stubbed")
	}
	return f.health(ctx)
}

func (f *fakeAPI) AgentsInfo(ctx context.Context) (*backend.AgentsInfo, error) {
	f.record("agents")
	if f.agents == nil {
		return nil, fmt.Errorf("agents not stubbed")
	}
	return f.agents(ctx)
}

func (f *fakeAPI) SwitchAgent(ctx context.Context, id string) (*backend.SwitchAgentResponse, error) {
	f.record("switch")
	if f.switcher == nil {
		return nil, fmt.Errorf("switch not stubbed")
	}
	return f.switcher(ctx, id)
}

func (f *fakeAPI) Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error) {
	f.record("chat")
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	f.mu.Unlock()
	if f.chat == nil {
		return nil, fmt.Errorf("chat not stubbed")
	}
	return f.chat(ctx, req)
}

func (f *fakeAPI) AddKnowledge(ctx context.Context, req backend.KnowledgeRequest) (*backend.KnowledgeResponse, error) {
	f.record("knowledge")
	f.mu.Lock()
	f.knowledgeReqs = append(f.knowledgeReqs, req)
	f.mu.Unlock()
	if f.knowledge == nil {
		return nil, fmt.Errorf("knowledge not stubbed")
	}
	return f.knowledge(ctx, req)
}

// recordingView logs every call as a short string and keeps the
// resulting presentation state.
type recordingView struct {
	mu       sync.Mutex
	events   []string
	messages []Message
	scrolls  int
	status   ConnectionStatus
	text     string
	loading  bool
	busy     bool
	selected string
	current  AgentStatus
	agents   []AgentStatus
	notice   string
	panel    bool
}

func (v *recordingView) log(format string, args ...any) {
	v.events = append(v.events, fmt.Sprintf(format, args...))
}

func (v *recordingView) AppendMessage(m Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append(v.messages, m)
	v.log("message:%s", m.Sender)
}

func (v *recordingView) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolls++
}

func (v *recordingView) SetStatus(status ConnectionStatus, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status, v.text = status, text
	v.log("status:%s", status)
}

func (v *recordingView) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = loading
	v.log("loading:%t", loading)
}

func (v *recordingView) SetSwitchBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = busy
	v.log("busy:%t", busy)
}

func (v *recordingView) SetSelectedAgent(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = id
	v.log("selected:%s", id)
}

func (v *recordingView) ShowCurrentAgent(a AgentStatus) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = a
	v.log("current:%s", a.ID)
}

func (v *recordingView) RenderAgents(agents []AgentStatus, current string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.agents = agents
	v.log("render:%d:%s", len(agents), current)
}

func (v *recordingView) ShowAgentsNotice(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = text
	v.log("notice")
}

func (v *recordingView) SetKnowledgePanel(open bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panel = open
	v.log("panel:%t", open)
}

func (v *recordingView) ClearKnowledgeInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("knowledge-cleared")
}

func (v *recordingView) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("input-cleared")
}

func (v *recordingView) FocusInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("focus")
}

// viewState is a lock-free copy of a recordingView.
type viewState struct {
	events   []string
	messages []Message
	scrolls  int
	status   ConnectionStatus
	text     string
	loading  bool
	busy     bool
	selected string
	current  AgentStatus
	agents   []AgentStatus
	notice   string
	panel    bool
}

func (v *recordingView) snapshot() viewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return viewState{
		events:   append([]string(nil), v.events...),
		messages: append([]Message(nil), v.messages...),
		scrolls:  v.scrolls,
		status:   v.status,
		text:     v.text,
		loading:  v.loading,
		busy:     v.busy,
		selected: v.selected,
		current:  v.current,
		agents:   v.agents,
		notice:   v.notice,
		panel:    v.panel,
	}
}

// layoutView also implements LayoutNotifier.
type layoutView struct {
	recordingView
	layouts int
}

func (v *layoutView) AfterLayout(fn func()) {
	v.mu.Lock()
	v.layouts++
	v.mu.Unlock()
	fn()
}

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestWidget(t *testing.T, api *fakeAPI, view View) (*Widget, *store.MemoryKV) {
	t.Helper()
	kv := store.NewMemoryKV(nil)
	w, err := New(Options{
		API:         api,
		View:        view,
		Storage:     kv,
		Logger:      logging.New(nil, "silent"),
		ScrollDelay: -1,
		Clock:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return w, kv
}

func sampleAgents() *backend.AgentsInfo {
	return &backend.AgentsInfo{
		Available:    true,
		CurrentAgent: "langchain",
		Agents: []backend.AgentEntry{
			{ID: "adk", Name: "ADK Agent", Description: "Google ADK", Available: true},
			{ID: "langchain", Name: "LangChain Agent", Description: "LangChain + Gemini", Available: true},
		},
	}
}

func healthy() *backend.HealthResponse {
	return &backend.HealthResponse{
		AgentManagerAvailable: true,
		APIKeys:               &backend.APIKeysStatus{Google: true, OpenAI: true, Tavily: true},
	}
}
