package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentchat/internal/backend"
)

func TestAddKnowledge_Success(t *testing.T) {
	api := newFakeAPI()
	api.knowledge = func(_ context.Context, req backend.KnowledgeRequest) (*backend.KnowledgeResponse, error) {
		return &backend.KnowledgeResponse{Success: true, DocID: "doc-7", ContentPreview: "Go is a language..."}, nil
	}
	view := &recordingView{}
	w, kv := newTestWidget(t, api, view)
	w.SetKnowledgePanel(true)

	res, err := w.AddKnowledge(context.Background(), "Go is a language", "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "doc-7", res.DocID)

	require.Len(t, api.knowledgeReqs, 1)
	req := api.knowledgeReqs[0]
	assert.Equal(t, "Go is a language", req.Content)
	assert.Equal(t, "usuário", req.Source)
	stored, ok, _ := kv.Get(context.Background(), UserIDKey)
	require.True(t, ok)
	assert.Equal(t, stored, req.UserID)

	msgs := w.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, SenderSystem, msgs[0].Sender)
	assert.Equal(t, "✅ Conhecimento adicionado: Go is a language...", msgs[0].Text)

	got := view.snapshot()
	assert.Contains(t, got.events, "knowledge-cleared")
	assert.False(t, got.panel)
	assert.False(t, w.State().KnowledgeOpen)
}

func TestAddKnowledge_ClosesPanelInsteadOfToggling(t *testing.T) {
	api := newFakeAPI()
	api.knowledge = func(context.Context, backend.KnowledgeRequest) (*backend.KnowledgeResponse, error) {
		return &backend.KnowledgeResponse{Success: true, ContentPreview: "x"}, nil
	}
	w, _ := newTestWidget(t, api, &recordingView{})

	// panel already closed, e.g. the user dismissed it while the request ran
	_, err := w.AddKnowledge(context.Background(), "x", "notes")
	require.NoError(t, err)
	assert.False(t, w.State().KnowledgeOpen)
	assert.Equal(t, "notes", api.knowledgeReqs[0].Source)
}

func TestAddKnowledge_EmptyContentIgnored(t *testing.T) {
	api := newFakeAPI()
	view := &recordingView{}
	w, _ := newTestWidget(t, api, view)
	w.SetKnowledgePanel(true)

	res, err := w.AddKnowledge(context.Background(), "   ", "src")
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Zero(t, api.count("knowledge"))
	assert.True(t, w.State().KnowledgeOpen)
	assert.Empty(t, w.Messages())
}

func TestAddKnowledge_Failures(t *testing.T) {
	tests := []struct {
		name    string
		resp    *backend.KnowledgeResponse
		err     error
		want    string
		wantErr bool
	}{
		{
			name: "rejected",
			resp: &backend.KnowledgeResponse{Success: false, Error: "Agente atual não suporta"},
			want: "❌ Erro: Agente atual não suporta",
		},
		{
			name:    "transport",
			err:     errors.New("reset by peer"),
			want:    "❌ Erro ao adicionar conhecimento. Tente novamente.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.knowledge = func(context.Context, backend.KnowledgeRequest) (*backend.KnowledgeResponse, error) {
				return tt.resp, tt.err
			}
			view := &recordingView{}
			w, _ := newTestWidget(t, api, view)
			w.SetKnowledgePanel(true)

			_, err := w.AddKnowledge(context.Background(), "content", "")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			msgs := w.Messages()
			require.Len(t, msgs, 1)
			assert.True(t, msgs[0].IsError)
			assert.Equal(t, tt.want, msgs[0].Text)
			assert.True(t, w.State().KnowledgeOpen, "panel stays open so the user can retry")
			assert.NotContains(t, view.snapshot().events, "knowledge-cleared")
		})
	}
}

func TestToggleKnowledgePanel(t *testing.T) {
	view := &recordingView{}
	w, _ := newTestWidget(t, newFakeAPI(), view)

	assert.True(t, w.ToggleKnowledgePanel())
	assert.False(t, w.ToggleKnowledgePanel())
	assert.Equal(t, []string{"panel:true", "panel:false"}, view.snapshot().events)
}

func TestAddKnowledge_StaleDiscarded(t *testing.T) {
	releaseOld := make(chan struct{})
	api := newFakeAPI()
	api.knowledge = func(_ context.Context, req backend.KnowledgeRequest) (*backend.KnowledgeResponse, error) {
		if req.Content == "old" {
			<-releaseOld
			return &backend.KnowledgeResponse{Success: false, Error: "boom old"}, nil
		}
		return &backend.KnowledgeResponse{Success: false, Error: "boom new"}, nil
	}
	view := &recordingView{}
	w, _ := newTestWidget(t, api, view)

	done := make(chan KnowledgeResult)
	go func() { r, _ := w.AddKnowledge(context.Background(), "old", ""); done <- r }()
	require.Eventually(t, func() bool { return api.count("knowledge") == 1 }, time.Second, 5*time.Millisecond)

	_, err := w.AddKnowledge(context.Background(), "new", "")
	require.NoError(t, err)

	close(releaseOld)
	old := <-done
	assert.True(t, old.Stale)
	assert.Equal(t, "boom old", old.Error)

	msgs := w.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "❌ Erro: boom new", msgs[0].Text)
}

func TestAddKnowledge_StaleSuccessKeepsPanel(t *testing.T) {
	releaseOld := make(chan struct{})
	api := newFakeAPI()
	api.knowledge = func(_ context.Context, req backend.KnowledgeRequest) (*backend.KnowledgeResponse, error) {
		if req.Content == "old" {
			<-releaseOld
			return &backend.KnowledgeResponse{Success: true, ContentPreview: "old"}, nil
		}
		return nil, errors.New("connection reset")
	}
	view := &recordingView{}
	w, _ := newTestWidget(t, api, view)
	w.SetKnowledgePanel(true)

	done := make(chan struct{})
	go func() { w.AddKnowledge(context.Background(), "old", ""); close(done) }()
	require.Eventually(t, func() bool { return api.count("knowledge") == 1 }, time.Second, 5*time.Millisecond)

	_, err := w.AddKnowledge(context.Background(), "new", "")
	require.Error(t, err)

	close(releaseOld)
	<-done

	msgs := w.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsError)
	assert.True(t, w.State().KnowledgeOpen)
	assert.NotContains(t, view.snapshot().events, "knowledge-cleared")
}
