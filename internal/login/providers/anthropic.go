package providers

import "net/url"

// Anthropic endpoints. The redirect lands on a console page that shows
// the code for the user to copy back.
const (
	anthropicAuthURL     = "https://claude.ai/oauth/authorize"
	anthropicTokenURL    = "https://console.anthropic.com/v1/oauth/token"
	anthropicClientID    = "9d1c250a-e61b-44d9-88ed-5944d1962f5e"
	anthropicRedirectURI = "https://console.anthropic.com/oauth/code/callback"
)

// NewAnthropic returns the Anthropic login routine.
func NewAnthropic() *codeFlow {
	return &codeFlow{
		id:          "anthropic",
		authURL:     anthropicAuthURL,
		tokenURL:    anthropicTokenURL,
		clientID:    anthropicClientID,
		redirectURI: anthropicRedirectURI,
		scopes:      []string{"org:create_api_key", "user:profile", "user:inference"},
		extraParams: url.Values{
			"code": {"true"},
		},
		instructions: "Sign in to your Anthropic account, then paste the code shown after approval.",
	}
}
