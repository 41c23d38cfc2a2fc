// Package widget implements the chat widget controller. It owns the UI
// state, calls the backend, and drives a platform View.
package widget

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/soyeahso/agentchat/internal/backend"
	"github.com/soyeahso/agentchat/internal/hooks"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/store"
)

// DefaultScrollDelay is the settle time before scrolling when the view
// offers no layout callback.
const DefaultScrollDelay = 100 * time.Millisecond

// API is the subset of the backend client the widget uses.
type API interface {
	Health(ctx context.Context) (*backend.HealthResponse, error)
	AgentsInfo(ctx context.Context) (*backend.AgentsInfo, error)
	SwitchAgent(ctx context.Context, agentType string) (*backend.SwitchAgentResponse, error)
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
	AddKnowledge(ctx context.Context, req backend.KnowledgeRequest) (*backend.KnowledgeResponse, error)
}

// Options configures a Widget. API and View are required.
type Options struct {
	API     API
	View    View
	Storage Storage
	Hooks   *hooks.Manager
	Logger  *logging.Logger
	Catalog *Catalog
	// ScrollDelay applies only to views without LayoutNotifier.
	// Zero means DefaultScrollDelay; negative scrolls immediately.
	ScrollDelay time.Duration
	Clock       func() time.Time
	Entropy     io.Reader
}

// Widget is the chat controller. All methods are safe for concurrent use;
// overlapping calls of the same kind are allowed and resolved by
// generation tokens.
type Widget struct {
	api         API
	view        View
	storage     Storage
	hooks       *hooks.Manager
	log         *logging.Logger
	text        *Catalog
	scrollDelay time.Duration
	now         func() time.Time
	entropy     io.Reader

	gen generations
	ids singleflight.Group

	mu        sync.Mutex
	state     UIState
	messages  []Message
	userID    string
	sessionID string
}

// New creates a Widget.
func New(opts Options) (*Widget, error) {
	if opts.API == nil {
		return nil, errors.New("widget: API is required")
	}
	if opts.View == nil {
		return nil, errors.New("widget: View is required")
	}

	w := &Widget{
		api:         opts.API,
		view:        opts.View,
		storage:     opts.Storage,
		hooks:       opts.Hooks,
		log:         opts.Logger,
		text:        opts.Catalog,
		scrollDelay: opts.ScrollDelay,
		now:         opts.Clock,
		entropy:     opts.Entropy,
		state:       UIState{Status: StatusOffline},
	}
	if w.storage == nil {
		w.storage = store.NewMemoryKV(nil)
	}
	if w.log == nil {
		w.log = logging.New(io.Discard, "silent")
	}
	w.log = w.log.Sub("widget")
	if w.text == nil {
		w.text = CatalogFor("")
	}
	if w.scrollDelay == 0 {
		w.scrollDelay = DefaultScrollDelay
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.entropy == nil {
		w.entropy = rand.Reader
	}
	return w, nil
}

// Init runs the health check and the agent-info fetch concurrently. Each
// updates the view on its own; the first failure is returned.
func (w *Widget) Init(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		_, err := w.CheckHealth(ctx)
		return err
	})
	g.Go(func() error {
		_, err := w.LoadAgentInfo(ctx)
		return err
	})
	return g.Wait()
}

// State returns a snapshot of the UI state.
func (w *Widget) State() UIState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.Agents = append([]AgentStatus(nil), w.state.Agents...)
	return s
}

// Messages returns a copy of the session's messages in append order.
func (w *Widget) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.messages...)
}

// Catalog returns the strings in use.
func (w *Widget) Catalog() *Catalog { return w.text }

// UserID returns the persisted user identifier, creating it on first use.
// Concurrent first uses share one resolution, so only one id is stored.
func (w *Widget) UserID(ctx context.Context) (string, error) {
	w.mu.Lock()
	if w.userID != "" {
		id := w.userID
		w.mu.Unlock()
		return id, nil
	}
	w.mu.Unlock()

	v, err, _ := w.ids.Do(UserIDKey, func() (any, error) {
		w.mu.Lock()
		cached := w.userID
		w.mu.Unlock()
		if cached != "" {
			return cached, nil
		}

		id, err := ResolveUserID(ctx, w.storage, w.entropy)
		if id == "" {
			return "", err
		}
		if err != nil {
			w.log.Warn().Err(err).Msg("user id not persisted")
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		w.userID = id
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ToggleKnowledgePanel flips the knowledge panel and returns the new state.
func (w *Widget) ToggleKnowledgePanel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setKnowledgePanelLocked(!w.state.KnowledgeOpen)
	return w.state.KnowledgeOpen
}

// SetKnowledgePanel opens or closes the knowledge panel.
func (w *Widget) SetKnowledgePanel(open bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setKnowledgePanelLocked(open)
}

func (w *Widget) setKnowledgePanelLocked(open bool) {
	w.state.KnowledgeOpen = open
	w.view.SetKnowledgePanel(open)
}

func (w *Widget) newMessage(text string, sender Sender, isError bool) Message {
	return Message{
		ID:        ulid.Make(),
		Text:      text,
		Sender:    sender,
		IsError:   isError,
		Timestamp: w.now(),
	}
}

// appendLocked records m, renders it and schedules a scroll.
func (w *Widget) appendLocked(ctx context.Context, m Message) {
	w.messages = append(w.messages, m)
	w.view.AppendMessage(m)
	w.scrollToBottom()
	w.emit(ctx, hooks.EventMessageAppended, map[string]any{
		"id":         m.ID.String(),
		"sender":     string(m.Sender),
		"text":       m.Text,
		"is_error":   m.IsError,
		"agent_name": m.AgentName,
	})
}

func (w *Widget) addSystemMessageLocked(ctx context.Context, text string, isError bool) {
	w.appendLocked(ctx, w.newMessage(text, SenderSystem, isError))
}

func (w *Widget) setLoadingLocked(loading bool) {
	w.state.Loading = loading
	w.view.SetLoading(loading)
	w.scrollToBottom()
}

func (w *Widget) setStatusLocked(ctx context.Context, status ConnectionStatus, text string) {
	w.state.Status = status
	w.state.StatusText = text
	w.view.SetStatus(status, text)
	w.emit(ctx, hooks.EventStatusChanged, map[string]any{
		"status": string(status),
		"text":   text,
	})
}

// scrollToBottom defers the scroll until layout has settled. Views that
// implement LayoutNotifier say when that is; otherwise a fixed delay is
// used as a heuristic.
func (w *Widget) scrollToBottom() {
	if ln, ok := w.view.(LayoutNotifier); ok {
		ln.AfterLayout(w.view.ScrollToBottom)
		return
	}
	if w.scrollDelay < 0 {
		w.view.ScrollToBottom()
		return
	}
	time.AfterFunc(w.scrollDelay, w.view.ScrollToBottom)
}

func (w *Widget) emit(ctx context.Context, event string, data map[string]any) {
	if w.hooks == nil {
		return
	}
	w.hooks.EmitAsync(ctx, event, data)
}

// staleLocked reports whether token is outdated for o, counting it if so.
func (w *Widget) staleLocked(o op, token uint64) bool {
	if w.gen.current(o, token) {
		return false
	}
	metricStale.WithLabelValues(o.String()).Inc()
	w.log.Debug().Str("op", o.String()).Uint64("token", token).Msg("stale response")
	return true
}
