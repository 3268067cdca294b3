package config

// RoostConfig is the top-level configuration structure for roost.
type RoostConfig struct {
	Agent       AgentConfig       `yaml:"agent"`
	Credentials CredentialsConfig `yaml:"credentials"`
	LogLevel    string            `yaml:"logLevel,omitempty"` // debug, info, warn, error (default: info)
}

// AgentConfig defines how to reach the agent runtime.
type AgentConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"` // SSE endpoint of the agent runtime (default: http://localhost:8090/sse)
	Provider string `yaml:"provider,omitempty"` // Default provider id for login and chat (default: anthropic)
}

// CredentialsConfig defines where credentials are persisted.
type CredentialsConfig struct {
	Dir string `yaml:"dir,omitempty"` // Credential directory (default: ~/.config/roost/credentials)
}
