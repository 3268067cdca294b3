package providers

import "roost/internal/login"

// All returns every supported login routine, in display order.
func All() []login.Provider {
	return []login.Provider{
		NewAnthropic(),
		NewGitHubCopilot(),
		NewGoogleGeminiCli(),
		NewGoogleAntigravity(),
		NewOpenAICodex(),
	}
}
