package gateway

import (
	"embed"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soyeahso/agentchat/internal/widget"
)

//go:embed static
var staticFiles embed.FS

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", http.FileServerFS(staticFiles))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up the widget RPC methods.
func (s *Server) registerRPCHandlers() {
	s.Handle("bridge.status", s.rpcBridgeStatus)
	s.Handle(MethodChatSend, rpcChatSend)
	s.Handle(MethodAgentSwitch, rpcAgentSwitch)
	s.Handle(MethodAgentsRefresh, rpcAgentsRefresh)
	s.Handle(MethodHealthCheck, rpcHealthCheck)
	s.Handle(MethodKnowledgeAdd, rpcKnowledgeAdd)
	s.Handle(MethodKnowledgeToggle, rpcKnowledgeToggle)
}

func (s *Server) rpcBridgeStatus(rc *RequestContext) {
	rc.Respond(HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Clients:  s.clients.Count(),
		UptimeMs: s.Uptime().Milliseconds(),
		Backend:  s.cfg.Backend.BaseURL,
	})
}

// The widget renders every outcome itself, including failures, so the
// handlers below answer ok once the operation has finished and only use
// error responses for malformed requests.

func rpcChatSend(rc *RequestContext) {
	var p ChatSendParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	res, err := rc.Client.Widget.SendChat(rc.Ctx, p.Text)
	rc.Respond(map[string]any{
		"sent":      res.Sent,
		"success":   res.Success,
		"agentName": res.AgentName,
		"agentType": res.AgentType,
		"stale":     res.Stale,
		"error":     errText(res.Error, err),
	})
}

func rpcAgentSwitch(rc *RequestContext) {
	var p AgentSwitchParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	res, err := rc.Client.Widget.SwitchAgent(rc.Ctx, p.Agent)
	if errors.Is(err, widget.ErrNoAgent) {
		rc.RespondError(CodeInvalidParams, "agent is required")
		return
	}
	rc.Respond(map[string]any{
		"agent":   res.Agent,
		"success": res.Success,
		"stale":   res.Stale,
		"error":   errText(res.Error, err),
	})
}

func rpcAgentsRefresh(rc *RequestContext) {
	info, err := rc.Client.Widget.LoadAgentInfo(rc.Ctx)
	payload := map[string]any{"available": false, "error": errText("", err)}
	if info != nil {
		payload["available"] = info.Available
		payload["current"] = info.CurrentAgent
		payload["agents"] = info.AvailableAgents
	}
	rc.Respond(payload)
}

func rpcHealthCheck(rc *RequestContext) {
	report, err := rc.Client.Widget.CheckHealth(rc.Ctx)
	rc.Respond(map[string]any{
		"status":  string(report.Status),
		"text":    report.Text,
		"missing": report.Missing,
		"error":   errText("", err),
	})
}

func rpcKnowledgeAdd(rc *RequestContext) {
	var p KnowledgeAddParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	res, err := rc.Client.Widget.AddKnowledge(rc.Ctx, p.Content, p.Source)
	rc.Respond(map[string]any{
		"sent":    res.Sent,
		"success": res.Success,
		"docId":   res.DocID,
		"preview": res.Preview,
		"error":   errText(res.Error, err),
	})
}

func rpcKnowledgeToggle(rc *RequestContext) {
	var p KnowledgeToggleParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	var open bool
	if p.Open != nil {
		open = *p.Open
		rc.Client.Widget.SetKnowledgePanel(open)
	} else {
		open = rc.Client.Widget.ToggleKnowledgePanel()
	}
	rc.Respond(map[string]any{"open": open})
}

func errText(backendErr string, err error) string {
	if backendErr != "" {
		return backendErr
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
