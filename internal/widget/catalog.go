package widget

import "fmt"

// Catalog holds every user-facing string the widget produces.
type Catalog struct {
	StatusOnline      string
	StatusOffline     string
	StatusConnError   string
	LabelManager      string
	LabelGoogleKey    string
	LabelOpenAIKey    string
	LabelTavilyKey    string
	ChatFailed        string
	ChatErrorFmt      string
	AgentsUnavailable string
	AgentsLoadFailed  string
	AgentSwitchedFmt  string
	SwitchErrorFmt    string
	SwitchFailed      string
	KnowledgeAddedFmt string
	KnowledgeErrorFmt string
	KnowledgeFailed   string
	DefaultSource     string
	BadgeOnline       string
	BadgeOffline      string
	ActiveAgent       string
	CurrentAgent      string
}

// PortugueseBR is the default catalog.
var PortugueseBR = Catalog{
	StatusOnline:      "Agentes Online",
	StatusOffline:     "Agentes Offline",
	StatusConnError:   "Erro de Conexão",
	LabelManager:      "Gerenciador",
	LabelGoogleKey:    "Google API Key",
	LabelOpenAIKey:    "OpenAI API Key",
	LabelTavilyKey:    "Tavily API Key",
	ChatFailed:        "Desculpe, ocorreu um erro ao processar sua mensagem. Tente novamente.",
	ChatErrorFmt:      "Erro: %s",
	AgentsUnavailable: "Informações dos agentes não disponíveis",
	AgentsLoadFailed:  "Erro ao carregar informações",
	AgentSwitchedFmt:  "Agente alterado para %s",
	SwitchErrorFmt:    "Erro ao trocar agente: %s",
	SwitchFailed:      "Erro ao trocar agente. Tente novamente.",
	KnowledgeAddedFmt: "✅ Conhecimento adicionado: %s",
	KnowledgeErrorFmt: "❌ Erro: %s",
	KnowledgeFailed:   "❌ Erro ao adicionar conhecimento. Tente novamente.",
	DefaultSource:     "usuário",
	BadgeOnline:       "Online",
	BadgeOffline:      "Offline",
	ActiveAgent:       "🟢 Agente Ativo",
	CurrentAgent:      "Agente atual",
}

// English mirrors PortugueseBR for English-speaking users.
var English = Catalog{
	StatusOnline:      "Agents Online",
	StatusOffline:     "Agents Offline",
	StatusConnError:   "Connection Error",
	LabelManager:      "Manager",
	LabelGoogleKey:    "Google API Key",
	LabelOpenAIKey:    "OpenAI API Key",
	LabelTavilyKey:    "Tavily API Key",
	ChatFailed:        "Sorry, something went wrong while processing your message. Please try again.",
	ChatErrorFmt:      "Error: %s",
	AgentsUnavailable: "Agent information unavailable",
	AgentsLoadFailed:  "Failed to load information",
	AgentSwitchedFmt:  "Agent switched to %s",
	SwitchErrorFmt:    "Failed to switch agent: %s",
	SwitchFailed:      "Failed to switch agent. Please try again.",
	KnowledgeAddedFmt: "✅ Knowledge added: %s",
	KnowledgeErrorFmt: "❌ Error: %s",
	KnowledgeFailed:   "❌ Failed to add knowledge. Please try again.",
	DefaultSource:     "user",
	BadgeOnline:       "Online",
	BadgeOffline:      "Offline",
	ActiveAgent:       "🟢 Active Agent",
	CurrentAgent:      "Current agent",
}

// CatalogFor returns the catalog for a locale tag, falling back to PortugueseBR.
func CatalogFor(locale string) *Catalog {
	switch locale {
	case "en", "en-US", "en-GB":
		c := English
		return &c
	default:
		c := PortugueseBR
		return &c
	}
}

// Badge returns the availability badge text.
func (c *Catalog) Badge(available bool) string {
	if available {
		return c.BadgeOnline
	}
	return c.BadgeOffline
}

func (c *Catalog) format(pattern string, arg string) string {
	return fmt.Sprintf(pattern, arg)
}
