package config

const (
	// DefaultAgentEndpoint is the SSE endpoint of a locally running agent
	// runtime.
	DefaultAgentEndpoint = "http://localhost:8090/sse"

	// DefaultProvider is the provider used when none is configured or
	// given on the command line.
	DefaultProvider = "anthropic"
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() RoostConfig {
	return RoostConfig{
		Agent: AgentConfig{
			Endpoint: DefaultAgentEndpoint,
			Provider: DefaultProvider,
		},
		LogLevel: "info",
	}
}
