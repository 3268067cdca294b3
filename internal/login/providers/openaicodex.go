package providers

// OpenAI endpoints for the Codex client registration.
const (
	openAIAuthURL     = "https://auth.openai.com/oauth/authorize"
	openAITokenURL    = "https://auth.openai.com/oauth/token"
	openAIClientID    = "app_EMoamEEZ73f0CkXaXp7hrann"
	openAIRedirectURI = "https://platform.openai.com/oauth/callback"
)

// NewOpenAICodex returns the OpenAI Codex login routine.
func NewOpenAICodex() *codeFlow {
	return &codeFlow{
		id:           "openAICodex",
		authURL:      openAIAuthURL,
		tokenURL:     openAITokenURL,
		clientID:     openAIClientID,
		redirectURI:  openAIRedirectURI,
		scopes:       []string{"openid", "profile", "email", "offline_access"},
		instructions: "Sign in to your OpenAI account, then paste the code shown after approval.",
	}
}
