package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/soyeahso/agentchat/internal/widget"
)

// Options configures a View.
type Options struct {
	Catalog *widget.Catalog
	// NoColor forces plain output.
	NoColor bool
	// Spinner enables the loading animation. Defaults to on for TTYs.
	Spinner *bool
}

// View prints widget updates to a terminal. It implements widget.View and
// widget.LayoutNotifier: output is written synchronously, so layout has
// settled as soon as the write returns.
type View struct {
	out    io.Writer
	styles *Styles
	markup widget.Markup
	text   *widget.Catalog
	width  int

	mu       sync.Mutex
	spinner  *Spinner
	selected string
	panel    bool
	busy     bool
	loading  bool
}

var (
	_ widget.View           = (*View)(nil)
	_ widget.LayoutNotifier = (*View)(nil)
)

// NewView creates a terminal view writing to out.
func NewView(out io.Writer, opts Options) *View {
	tty := isTerminal(out)
	styles := NewStyles(out, opts.NoColor || !tty)
	text := opts.Catalog
	if text == nil {
		text = widget.CatalogFor("")
	}
	v := &View{
		out:    out,
		styles: styles,
		markup: styles.Markup(),
		text:   text,
		width:  terminalWidth(out),
	}
	spin := tty
	if opts.Spinner != nil {
		spin = *opts.Spinner
	}
	if spin {
		v.spinner = NewSpinner(out, &v.mu, "...", styles.Spinner)
	}
	return v
}

// Styles returns the view's styles.
func (v *View) Styles() *Styles { return v.styles }

// Prompt returns the input prompt for the current state.
func (v *View) Prompt() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.promptLocked()
}

func (v *View) promptLocked() string {
	switch {
	case v.panel:
		return "[+]> "
	case v.selected != "":
		return "[" + v.selected + "]> "
	default:
		return "> "
	}
}

// KnowledgePanelOpen reports whether plain input should go to the
// knowledge base.
func (v *View) KnowledgePanelOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.panel
}

// printLocked writes a full line, clearing a spinner frame first.
func (v *View) printLocked(line string) {
	if v.spinner != nil && v.loading {
		fmt.Fprint(v.out, "\r\033[K")
	}
	fmt.Fprintln(v.out, line)
}

func (v *View) println(line string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.printLocked(line)
}

// Println writes a plain line.
func (v *View) Println(format string, args ...any) {
	v.println(fmt.Sprintf(format, args...))
}

// Dim writes a dimmed line.
func (v *View) Dim(format string, args ...any) {
	v.println(v.styles.Dim.Render(fmt.Sprintf(format, args...)))
}

// Header writes a section header.
func (v *View) Header(title string) {
	v.println(v.styles.Header.Render(title))
}

// FormatMessage renders m as it appears in the terminal.
func (v *View) FormatMessage(m widget.Message) string {
	label := v.styles.Dim.Render("[" + m.TimeLabel() + "]")

	var who string
	switch m.Sender {
	case widget.SenderUser:
		who = v.styles.User.Render("you")
	case widget.SenderBot:
		who = v.styles.Bot.Render("bot")
	default:
		who = v.styles.System.Render("*")
	}

	body := v.markup.Format(m.Text)
	if m.IsError {
		body = v.styles.Error.Render(body)
	}
	return label + " " + who + " " + body
}

func (v *View) AppendMessage(m widget.Message) {
	v.println(v.FormatMessage(m))
}

// ScrollToBottom is a no-op: the terminal follows output on its own.
func (v *View) ScrollToBottom() {}

// AfterLayout runs fn once prior writes have been flushed, which for a
// synchronous writer is immediately.
func (v *View) AfterLayout(fn func()) { fn() }

func (v *View) SetStatus(status widget.ConnectionStatus, text string) {
	style := v.styles.Offline
	if status == widget.StatusOnline {
		style = v.styles.Online
	}
	v.println(style.Render("● " + text))
}

func (v *View) SetLoading(loading bool) {
	v.mu.Lock()
	was := v.loading
	v.loading = loading
	v.mu.Unlock()

	if v.spinner == nil || was == loading {
		return
	}
	if loading {
		v.spinner.Start()
	} else {
		v.spinner.Stop()
	}
}

func (v *View) SetSwitchBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = busy
}

// SwitchBusy reports whether an agent switch is in flight.
func (v *View) SwitchBusy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

func (v *View) SetSelectedAgent(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = id
}

func (v *View) ShowCurrentAgent(a widget.AgentStatus) {
	line := v.styles.Bold.Render(v.text.CurrentAgent+": "+a.Name) + " " + v.styles.Dim.Render(a.Description)
	v.println(line)
}

func (v *View) RenderAgents(agents []widget.AgentStatus, current string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.printLocked(v.styles.Dim.Render(strings.Repeat("─", min(v.width, 60))))
	for _, a := range agents {
		marker := "  "
		name := a.Name
		if a.ID == current {
			marker = "▸ "
			name = v.styles.Bold.Render(name)
		}
		badge := v.styles.Offline.Render(v.text.Badge(a.Available))
		if a.Available {
			badge = v.styles.Online.Render(v.text.Badge(a.Available))
		}
		line := fmt.Sprintf("%s%s (%s) [%s]", marker, name, a.ID, badge)
		if a.ID == current {
			line += " " + v.styles.Online.Render(v.text.ActiveAgent)
		}
		v.printLocked(line)
		if a.Description != "" {
			v.printLocked("    " + v.styles.Dim.Render(a.Description))
		}
	}
}

func (v *View) ShowAgentsNotice(text string) {
	v.println(v.styles.System.Render(text))
}

func (v *View) SetKnowledgePanel(open bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panel = open
}

// ClearKnowledgeInput is a no-op: submitted lines are already consumed.
func (v *View) ClearKnowledgeInput() {}

// ClearInput is a no-op for the same reason.
func (v *View) ClearInput() {}

// FocusInput is a no-op: the REPL prompts after every line.
func (v *View) FocusInput() {}
