package widget

import (
	"context"
	"fmt"
	"strings"

	"github.com/soyeahso/agentchat/internal/backend"
	"github.com/soyeahso/agentchat/internal/hooks"
)

// AddKnowledge submits content to the active agent's knowledge base.
// Empty content is ignored and leaves the panel as it is. An empty source
// defaults to the catalog's DefaultSource.
func (w *Widget) AddKnowledge(ctx context.Context, content, source string) (KnowledgeResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return KnowledgeResult{}, nil
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = w.text.DefaultSource
	}

	token := w.gen.next(opKnowledge)

	userID, err := w.UserID(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("adding knowledge without user id")
	}

	resp, err := w.api.AddKnowledge(ctx, backend.KnowledgeRequest{
		Content: content,
		Source:  source,
		UserID:  userID,
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	stale := w.staleLocked(opKnowledge, token)
	result := KnowledgeResult{Sent: true, Stale: stale}

	if err != nil {
		w.log.Error().Err(err).Bool("stale", stale).Msg("add knowledge failed")
		result.Error = w.text.KnowledgeFailed
		err = fmt.Errorf("add knowledge: %w", err)
	} else if !resp.Success {
		result.Error = resp.Error
	} else {
		result.Success = true
		result.Preview = resp.ContentPreview
		result.DocID = resp.DocID
	}

	// only the newest submission reports back
	if stale {
		return result, err
	}

	if err != nil {
		w.addSystemMessageLocked(ctx, w.text.KnowledgeFailed, true)
		return result, err
	}

	if !resp.Success {
		w.log.Warn().Str("error", resp.Error).Msg("knowledge rejected by backend")
		w.addSystemMessageLocked(ctx, w.text.format(w.text.KnowledgeErrorFmt, resp.Error), true)
		return result, nil
	}

	w.addSystemMessageLocked(ctx, w.text.format(w.text.KnowledgeAddedFmt, resp.ContentPreview), false)
	w.view.ClearKnowledgeInput()
	w.setKnowledgePanelLocked(false)
	w.emit(ctx, hooks.EventKnowledgeAdded, map[string]any{
		"preview": resp.ContentPreview,
		"doc_id":  resp.DocID,
		"source":  source,
	})
	return result, nil
}
