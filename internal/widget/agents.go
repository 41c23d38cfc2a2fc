package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/soyeahso/agentchat/internal/backend"
	"github.com/soyeahso/agentchat/internal/hooks"
)

// ErrNoAgent is returned by SwitchAgent for an empty identifier.
var ErrNoAgent = errors.New("widget: no agent selected")

// CheckHealth refreshes the connection status indicator.
func (w *Widget) CheckHealth(ctx context.Context) (HealthReport, error) {
	token := w.gen.next(opHealth)

	resp, err := w.api.Health(ctx)
	var report HealthReport
	if err != nil {
		w.log.Error().Err(err).Msg("health check failed")
		report = EvaluateHealth(nil, w.text)
		err = fmt.Errorf("check health: %w", err)
	} else {
		report = EvaluateHealth(resp, w.text)
		if resp.APIKeys == nil {
			err = fmt.Errorf("check health: %w: missing api_keys_status", backend.ErrDecode)
			w.log.Error().Err(err).Msg("health check failed")
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.staleLocked(opHealth, token) {
		return report, err
	}
	w.setStatusLocked(ctx, report.Status, report.Text)
	return report, err
}

// LoadAgentInfo refreshes the agent selector, the current-agent bar and
// the comparison list.
func (w *Widget) LoadAgentInfo(ctx context.Context) (*backend.AgentsInfo, error) {
	token := w.gen.next(opAgents)

	info, err := w.api.AgentsInfo(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	stale := w.staleLocked(opAgents, token)

	if err != nil {
		w.log.Error().Err(err).Msg("agent info request failed")
		if !stale {
			w.view.ShowAgentsNotice(w.text.AgentsLoadFailed)
		}
		return nil, fmt.Errorf("load agent info: %w", err)
	}
	if stale {
		return info, nil
	}

	if !info.Available {
		w.state.Agents = nil
		w.view.ShowAgentsNotice(w.text.AgentsUnavailable)
		return info, nil
	}
	w.applyAgentsInfoLocked(info)
	return info, nil
}

// applyAgentsInfoLocked points the selector at the backend's current agent
// and re-renders the agent displays.
func (w *Widget) applyAgentsInfoLocked(info *backend.AgentsInfo) {
	w.state.SelectedAgent = info.CurrentAgent
	w.state.CurrentAgent = info.CurrentAgent
	w.state.Agents = append([]AgentStatus(nil), info.Agents...)

	w.view.SetSelectedAgent(info.CurrentAgent)
	if current, ok := info.Agent(info.CurrentAgent); ok {
		w.view.ShowCurrentAgent(current)
	}
	w.view.RenderAgents(w.state.Agents, info.CurrentAgent)
}

// SwitchAgent asks the backend to make id the active agent. The switch
// control is busy for the duration. The selector keeps id on failure.
func (w *Widget) SwitchAgent(ctx context.Context, id string) (SwitchResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return SwitchResult{}, ErrNoAgent
	}

	token := w.gen.next(opSwitch)

	w.mu.Lock()
	w.state.SelectedAgent = id
	w.view.SetSelectedAgent(id)
	w.state.SwitchBusy = true
	w.view.SetSwitchBusy(true)
	w.mu.Unlock()

	resp, err := w.api.SwitchAgent(ctx, id)

	w.mu.Lock()
	defer w.mu.Unlock()

	stale := w.staleLocked(opSwitch, token)
	result := SwitchResult{Agent: id, Stale: stale}

	if err != nil {
		w.log.Error().Err(err).Str("agent", id).Bool("stale", stale).Msg("agent switch failed")
		err = fmt.Errorf("switch agent: %w", err)
	}
	switch {
	case err != nil:
		result.Error = w.text.SwitchFailed
	case !resp.Success:
		result.Error = resp.Error
	default:
		result.Success = true
	}

	// a newer switch owns the control, the selector and the transcript
	if stale {
		return result, err
	}

	w.state.SwitchBusy = false
	w.view.SetSwitchBusy(false)

	if err != nil {
		w.addSystemMessageLocked(ctx, w.text.SwitchFailed, true)
		w.emitSwitched(ctx, id, false)
		return result, err
	}

	if !resp.Success {
		w.log.Warn().Str("agent", id).Str("error", resp.Error).Msg("agent switch rejected")
		w.addSystemMessageLocked(ctx, w.text.format(w.text.SwitchErrorFmt, resp.Error), true)
		w.emitSwitched(ctx, id, false)
		return result, nil
	}

	if resp.AgentInfo != nil {
		// supersede any agent-info fetch issued before the switch landed
		w.gen.next(opAgents)
		w.applyAgentsInfoLocked(resp.AgentInfo)
	}
	w.log.Info().Str("agent", id).Str("current", resp.CurrentAgent).Msg("agent switched")
	w.addSystemMessageLocked(ctx, w.text.format(w.text.AgentSwitchedFmt, strings.ToUpper(id)), false)
	w.emitSwitched(ctx, id, true)
	return result, nil
}

func (w *Widget) emitSwitched(ctx context.Context, id string, ok bool) {
	w.emit(ctx, hooks.EventAgentSwitched, map[string]any{
		"agent":   id,
		"success": ok,
	})
}
