package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/widget"
)

// REPL reads lines from the user and maps them onto widget operations.
// Plain lines are chat messages, or knowledge while the knowledge panel is
// open. Lines starting with "/" are commands.
type REPL struct {
	w      *widget.Widget
	view   *View
	in     io.Reader
	out    io.Writer
	log    *logging.Logger
	source string

	wg sync.WaitGroup
}

// NewREPL creates a REPL. source is the knowledge source label; empty uses
// the catalog default.
func NewREPL(w *widget.Widget, view *View, in io.Reader, out io.Writer, log *logging.Logger, source string) *REPL {
	return &REPL{
		w:      w,
		view:   view,
		in:     in,
		out:    out,
		log:    log.Sub("repl"),
		source: source,
	}
}

// Run loops until input ends, the user quits or ctx is cancelled. It waits
// for in-flight requests before returning.
func (r *REPL) Run(ctx context.Context) error {
	defer r.wg.Wait()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		r.prompt()

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-errc:
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
			default:
			}
			return nil
		}

		if r.handle(ctx, line) {
			return nil
		}
	}
}

func (r *REPL) prompt() {
	r.view.mu.Lock()
	defer r.view.mu.Unlock()
	if r.view.loading && r.view.spinner != nil {
		return
	}
	fmt.Fprint(r.out, r.view.promptLocked())
}

// handle runs one line and reports whether the REPL should exit.
func (r *REPL) handle(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if !strings.HasPrefix(input, "/") {
		if r.view.KnowledgePanelOpen() {
			r.async(func() error {
				_, err := r.w.AddKnowledge(ctx, input, r.source)
				return err
			})
		} else {
			r.async(func() error {
				_, err := r.w.SendChat(ctx, input)
				return err
			})
		}
		return false
	}

	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "/quit", "/exit", "/q":
		return true
	case "/help":
		r.printHelp()
	case "/agents":
		r.sync(func() error {
			_, err := r.w.LoadAgentInfo(ctx)
			return err
		})
	case "/status":
		r.sync(func() error {
			_, err := r.w.CheckHealth(ctx)
			return err
		})
	case "/use":
		if args == "" {
			r.view.Dim("usage: /use <agent>")
			return false
		}
		if r.view.SwitchBusy() {
			r.view.Dim("agent switch in progress")
			return false
		}
		r.sync(func() error {
			_, err := r.w.SwitchAgent(ctx, args)
			return err
		})
	case "/knowledge":
		if args == "" {
			r.w.ToggleKnowledgePanel()
			return false
		}
		r.async(func() error {
			_, err := r.w.AddKnowledge(ctx, args, r.source)
			return err
		})
	case "/panel":
		r.w.ToggleKnowledgePanel()
	default:
		r.view.Dim("unknown command %s, try /help", cmd)
	}
	return false
}

// async runs fn in the background. Its outcome is already rendered by the
// widget, so errors are only logged.
func (r *REPL) async(fn func() error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := fn(); err != nil {
			r.log.Debug().Err(err).Msg("operation failed")
		}
	}()
}

func (r *REPL) sync(fn func() error) {
	if err := fn(); err != nil {
		r.log.Debug().Err(err).Msg("operation failed")
	}
}

func (r *REPL) printHelp() {
	r.view.Header("Commands")
	for _, l := range []string{
		"/agents          refresh and list agents",
		"/use <agent>     switch the active agent",
		"/status          check backend health",
		"/knowledge <t>   add text to the knowledge base",
		"/knowledge       toggle knowledge mode (lines go to the knowledge base)",
		"/panel           same as /knowledge with no text",
		"/quit            exit",
	} {
		r.view.Dim("  %s", l)
	}
}
