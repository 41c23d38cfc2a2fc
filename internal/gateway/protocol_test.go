package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameWireShape(t *testing.T) {
	req, err := NewRequest("r1", MethodChatSend, ChatSendParams{Text: "oi"})
	require.NoError(t, err)
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"req","id":"r1","method":"chat.send","params":{"text":"oi"}}`, string(raw))

	res, err := NewResponse("r1", map[string]bool{"open": true})
	require.NoError(t, err)
	raw, err = json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"res","id":"r1","ok":true,"payload":{"open":true}}`, string(raw))

	ev, err := NewEvent(EventScroll, struct{}{}, 7)
	require.NoError(t, err)
	raw, err = json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","event":"scroll","seq":7,"payload":{}}`, string(raw))
}

func TestErrorResponseWireShape(t *testing.T) {
	f := NewErrorResponse("r2", ErrorShape{Code: CodeRateLimited, Message: "slow down", Retryable: true, RetryAfter: 1000})
	raw, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type":"res","id":"r2","ok":false,
		"error":{"code":"rate_limited","message":"slow down","retryable":true,"retryAfterMs":1000}
	}`, string(raw))

	raw, err = json.Marshal(ErrorShape{Code: "x", Message: "y"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"x","message":"y"}`, string(raw))
}

func TestConnectParamsDecode(t *testing.T) {
	var p ConnectParams
	require.NoError(t, json.Unmarshal([]byte(`{
		"minProtocol":1,"maxProtocol":1,
		"client":{"id":"page","version":"1"},
		"auth":{"token":"t"},
		"locale":"en",
		"userId":"web_user_abc123xyz"
	}`), &p))
	assert.Equal(t, "page", p.Client.ID)
	require.NotNil(t, p.Auth)
	assert.Equal(t, "t", p.Auth.Token)
	assert.Equal(t, "en", p.Locale)
	assert.Equal(t, "web_user_abc123xyz", p.UserID)

	var bare ConnectParams
	require.NoError(t, json.Unmarshal([]byte(`{"client":{"id":"x"}}`), &bare))
	assert.Nil(t, bare.Auth)
}

func TestKnowledgeToggleParams(t *testing.T) {
	var flip KnowledgeToggleParams
	require.NoError(t, json.Unmarshal([]byte(`{}`), &flip))
	assert.Nil(t, flip.Open)

	var set KnowledgeToggleParams
	require.NoError(t, json.Unmarshal([]byte(`{"open":false}`), &set))
	require.NotNil(t, set.Open)
	assert.False(t, *set.Open)
}
