package config

// Config is the root configuration for agentchat.
type Config struct {
	Backend BackendConfig `yaml:"backend,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Hooks   HooksConfig   `yaml:"hooks,omitempty"`
}

// BackendConfig points the widget at the multi-agent backend.
type BackendConfig struct {
	BaseURL        string            `yaml:"baseUrl,omitempty"`
	TimeoutSeconds int               `yaml:"timeoutSeconds,omitempty"` // 0 disables the client timeout
	Headers        map[string]string `yaml:"headers,omitempty"`
}

// UIConfig controls how the widget renders.
type UIConfig struct {
	Locale        string `yaml:"locale,omitempty"` // "pt-BR" | "en"
	ScrollDelayMs int    `yaml:"scrollDelayMs,omitempty"`
	Render        string `yaml:"render,omitempty"` // "minimal" | "markdown"
}

// StorageConfig selects where the persisted user id lives.
type StorageConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "memory"
	Path  string `yaml:"path,omitempty"`  // defaults to <base>/data/agentchat.db
}

// GatewayConfig controls the browser bridge HTTP/WebSocket server.
type GatewayConfig struct {
	Port              int         `yaml:"port,omitempty"`
	Bind              string      `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost    string      `yaml:"customBindHost,omitempty"`
	Auth              GatewayAuth `yaml:"auth,omitempty"`
	TLS               GatewayTLS  `yaml:"tls,omitempty"`
	AllowedOrigins    []string    `yaml:"allowedOrigins,omitempty"`
	RequestsPerSecond float64     `yaml:"requestsPerSecond,omitempty"`
	Burst             int         `yaml:"burst,omitempty"`
}

// GatewayAuth configures bridge authentication.
type GatewayAuth struct {
	Mode     string `yaml:"mode,omitempty"` // "none" | "token" | "password"
	Token    string `yaml:"token,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// GatewayTLS configures TLS for the bridge.
type GatewayTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// HooksConfig defines shell hooks fired on widget events.
type HooksConfig struct {
	MessageAppended []HookEntry `yaml:"messageAppended,omitempty"`
	StatusChanged   []HookEntry `yaml:"statusChanged,omitempty"`
	AgentSwitched   []HookEntry `yaml:"agentSwitched,omitempty"`
	KnowledgeAdded  []HookEntry `yaml:"knowledgeAdded,omitempty"`
	BridgeStart     []HookEntry `yaml:"bridgeStart,omitempty"`
	BridgeStop      []HookEntry `yaml:"bridgeStop,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}
