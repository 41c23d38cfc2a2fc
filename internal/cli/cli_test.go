package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the multi-agent backend endpoints.
type fakeBackend struct {
	mu        sync.Mutex
	openAIKey bool
	chatUsers []string
	switched  []string
	knowledge []string
	sources   []string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/health":
		body := `{"status":"healthy","agent_manager_available":true,` +
			`"api_keys_status":{"google_api_key":true,"openai_api_key":` + boolJSON(b.openAIKey) + `,"tavily_api_key":true}}`
		io.WriteString(w, body)
	case "/api/agents-info":
		io.WriteString(w, `{"available":true,"current_agent":"adk","available_agents":["adk","crew"],
			"agents_status":{
				"adk":{"name":"ADK Agent","description":"Google ADK","available":true},
				"crew":{"name":"CrewAI Agent","description":"Crew","available":false}}}`)
	case "/switch-agent":
		agent := r.FormValue("agent_type")
		b.switched = append(b.switched, agent)
		if agent != "crew" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"detail":"Agente '`+agent+`' não disponível"}`)
			return
		}
		io.WriteString(w, `{"success":true,"current_agent":"crew"}`)
	case "/chat":
		b.chatUsers = append(b.chatUsers, r.FormValue("user_id"))
		io.WriteString(w, `{"success":true,"response":"eco `+r.FormValue("query")+`","agent_name":"ADK Agent","agent":"adk"}`)
	case "/add-knowledge":
		b.knowledge = append(b.knowledge, r.FormValue("content"))
		b.sources = append(b.sources, r.FormValue("source"))
		io.WriteString(w, `{"success":true,"doc_id":"d1","content_preview":"`+r.FormValue("content")+`"}`)
	default:
		http.NotFound(w, r)
	}
}

func boolJSON(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func setup(t *testing.T) *fakeBackend {
	t.Helper()
	t.Setenv("AGENTCHAT_HOME", t.TempDir())
	for _, k := range []string{"AGENTCHAT_BACKEND_URL", "AGENTCHAT_LOG_LEVEL", "AGENTCHAT_LOCALE"} {
		t.Setenv(k, "")
	}
	fb := &fakeBackend{openAIKey: true}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	t.Setenv("AGENTCHAT_BACKEND_URL", srv.URL)
	return fb
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--log-level", "silent"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSend(t *testing.T) {
	fb := setup(t)

	out, err := run(t, "send", "olá", "mundo")
	require.NoError(t, err)
	assert.Contains(t, out, "you olá mundo")
	assert.Contains(t, out, "- ADK Agent] bot eco olá mundo")

	_, err = run(t, "send", "de novo")
	require.NoError(t, err)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.Len(t, fb.chatUsers, 2)
	assert.Regexp(t, `^web_user_[0-9a-z]{9}$`, fb.chatUsers[0])
	assert.Equal(t, fb.chatUsers[0], fb.chatUsers[1], "user id persists across runs")
}

func TestSend_MemoryStoreForgetsUser(t *testing.T) {
	fb := setup(t)
	_, err := run(t, "config", "set", "storage.store", "memory")
	require.NoError(t, err)

	_, err = run(t, "send", "a")
	require.NoError(t, err)
	_, err = run(t, "send", "b")
	require.NoError(t, err)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.Len(t, fb.chatUsers, 2)
	assert.NotEqual(t, fb.chatUsers[0], fb.chatUsers[1])
}

func TestSend_BackendDown(t *testing.T) {
	setup(t)
	out, err := run(t, "--backend", "http://127.0.0.1:1", "send", "oi")
	require.Error(t, err)
	assert.Contains(t, out, "Desculpe, ocorreu um erro ao processar sua mensagem.")
}

func TestHealth(t *testing.T) {
	fb := setup(t)

	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "● Agentes Online")

	fb.mu.Lock()
	fb.openAIKey = false
	fb.mu.Unlock()

	out, err = run(t, "health", "-v")
	require.Error(t, err)
	assert.Contains(t, out, "● Agentes Offline: OpenAI API Key")
	assert.Contains(t, out, "Storage: sqlite")
}

func TestAgentsList(t *testing.T) {
	setup(t)

	out, err := run(t, "agents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "▸ ADK Agent (adk) [Online] 🟢 Agente Ativo")
	assert.Contains(t, out, "  CrewAI Agent (crew) [Offline]")
	assert.Contains(t, out, "Agente atual: ADK Agent")
}

func TestAgentsSwitch(t *testing.T) {
	fb := setup(t)

	out, err := run(t, "agents", "switch", "crew")
	require.NoError(t, err)
	assert.Contains(t, out, "Agente alterado para CREW")

	out, err = run(t, "agents", "switch", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Agente 'ghost' não disponível")
	assert.Contains(t, out, "Erro ao trocar agente: Agente 'ghost' não disponível")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, []string{"crew", "ghost"}, fb.switched)
}

func TestKnowledgeAdd(t *testing.T) {
	fb := setup(t)

	out, err := run(t, "knowledge", "add", "--source", "manual", "o", "céu", "é", "azul")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Conhecimento adicionado: o céu é azul")

	_, err = run(t, "knowledge", "add", "sem fonte")
	require.NoError(t, err)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, []string{"o céu é azul", "sem fonte"}, fb.knowledge)
	assert.Equal(t, []string{"manual", "usuário"}, fb.sources)
}

func TestChat_RunsUntilInputEnds(t *testing.T) {
	setup(t)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("oi\n/quit\n"))
	cmd.SetArgs([]string{"--log-level", "silent", "chat", "--no-color"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "● Agentes Online")
	assert.Contains(t, out.String(), "bot eco oi")

	logFile := filepath.Join(os.Getenv("AGENTCHAT_HOME"), "logs", "agentchat.log")
	_, err := os.Stat(logFile)
	assert.NoError(t, err, "interactive chat logs to a file")
}

func TestInvalidConfig(t *testing.T) {
	setup(t)
	_, err := run(t, "config", "set", "ui.locale", "fr")
	require.NoError(t, err)

	_, err = run(t, "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestConfigCommands(t *testing.T) {
	setup(t)

	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("AGENTCHAT_HOME"), "config.yaml")+"\n", out)

	out, err = run(t, "config", "set", "gateway.port", "9000")
	require.NoError(t, err)
	assert.Equal(t, "Set gateway.port = 9000\n", out)

	out, err = run(t, "config", "get", "gateway.port")
	require.NoError(t, err)
	assert.Equal(t, "9000\n", out)

	out, err = run(t, "config", "get", "gateway")
	require.NoError(t, err)
	assert.Equal(t, "port: 9000\n", out)

	out, err = run(t, "config", "set", "gateway.bind", "everywhere")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: gateway.bind")

	_, err = run(t, "config", "unset", "gateway.port")
	require.NoError(t, err)
	_, err = run(t, "config", "get", "gateway.port")
	assert.EqualError(t, err, `key "gateway.port" not found`)

	_, err = run(t, "config", "unset", "gateway.port")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "agentchat "), out)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"FALSE", false},
		{"42", 42},
		{"-3", -3},
		{"0.5", 0.5},
		{"1.5abc", "1.5abc"},
		{"1", 1},
		{"http://localhost:8000", "http://localhost:8000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}
