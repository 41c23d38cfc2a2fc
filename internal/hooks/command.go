package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/soyeahso/agentchat/internal/config"
)

// DefaultCommandTimeout bounds a hook command with no configured timeout.
const DefaultCommandTimeout = 5 * time.Second

// CommandHandler returns a Handler that runs entry.Command through the
// shell with the JSON payload on stdin and AGENTCHAT_EVENT set.
func CommandHandler(entry config.HookEntry) Handler {
	timeout := DefaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}

		// hooks outlive the request that fired them
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		cmd := shellCommand(ctx, entry.Command)
		cmd.Stdin = bytes.NewReader(payload)
		cmd.Env = append(os.Environ(), "AGENTCHAT_EVENT="+p.Event)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		cmd.WaitDelay = time.Second

		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("hook %q: %w: %s", entry.Command, err, msg)
			}
			return fmt.Errorf("hook %q: %w", entry.Command, err)
		}
		return nil
	}
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// RegisterConfig registers a CommandHandler for every configured hook.
// Returns the number of handlers registered.
func RegisterConfig(m *Manager, cfg config.HooksConfig) int {
	lists := []struct {
		event   string
		entries []config.HookEntry
	}{
		{EventMessageAppended, cfg.MessageAppended},
		{EventStatusChanged, cfg.StatusChanged},
		{EventAgentSwitched, cfg.AgentSwitched},
		{EventKnowledgeAdded, cfg.KnowledgeAdded},
		{EventBridgeStart, cfg.BridgeStart},
		{EventBridgeStop, cfg.BridgeStop},
	}

	n := 0
	for _, l := range lists {
		for i, entry := range l.entries {
			m.On(l.event, fmt.Sprintf("config:%s[%d]", l.event, i), CommandHandler(entry))
			n++
		}
	}
	return n
}
