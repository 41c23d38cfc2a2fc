package widget

import (
	"context"
	"fmt"
	"strings"

	"github.com/soyeahso/agentchat/internal/backend"
)

// SendChat sends text to the active agent. Whitespace-only input is
// ignored. The user message is appended before the request; exactly one
// bot message follows once it resolves. A stale reply is still appended
// but leaves the loading state to the newer request.
func (w *Widget) SendChat(ctx context.Context, text string) (ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatResult{}, nil
	}

	token := w.gen.next(opChat)

	w.mu.Lock()
	w.appendLocked(ctx, w.newMessage(text, SenderUser, false))
	w.view.ClearInput()
	w.setLoadingLocked(true)
	sessionID := w.sessionID
	w.mu.Unlock()

	userID, err := w.UserID(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("sending chat without user id")
	}

	resp, err := w.api.Chat(ctx, backend.ChatRequest{
		Query:     text,
		UserID:    userID,
		SessionID: sessionID,
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	stale := w.staleLocked(opChat, token)
	defer func() {
		if !stale {
			w.setLoadingLocked(false)
			w.view.FocusInput()
		}
	}()

	result := ChatResult{Sent: true, Stale: stale}

	if err != nil {
		w.log.Error().Err(err).Msg("chat request failed")
		result.Error = w.text.ChatFailed
		w.appendLocked(ctx, w.newMessage(w.text.ChatFailed, SenderBot, true))
		return result, fmt.Errorf("send chat: %w", err)
	}

	if !resp.Success {
		w.log.Warn().Str("error", resp.Error).Msg("chat rejected by backend")
		result.Error = resp.Error
		w.appendLocked(ctx, w.newMessage(w.text.format(w.text.ChatErrorFmt, resp.Error), SenderBot, true))
		return result, nil
	}

	if resp.SessionID != "" {
		w.sessionID = resp.SessionID
	}
	result.Success = true
	result.Response = resp.Response
	result.AgentName = resp.AgentName
	result.AgentType = resp.Agent

	m := w.newMessage(resp.Response, SenderBot, false)
	m.AgentName = resp.AgentName
	m.AgentType = resp.Agent
	w.appendLocked(ctx, m)
	return result, nil
}
