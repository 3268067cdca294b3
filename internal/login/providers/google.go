package providers

import "net/url"

// Google OAuth endpoints, shared by the Gemini CLI and Antigravity
// client registrations.
const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleRedirectURI = "https://codeassist.google.com/authcode"

	googleGeminiCliClientID   = "681255809395-oo8ft2oprdrnp9e3aqf6av3hmdib135j.apps.googleusercontent.com"
	googleAntigravityClientID = "1071006060591-tmhssin9qjp9ac9b3u7eleg6bpeb5fl9.apps.googleusercontent.com"
)

func newGoogleFlow(id, clientID string) *codeFlow {
	return &codeFlow{
		id:          id,
		authURL:     googleAuthURL,
		tokenURL:    googleTokenURL,
		clientID:    clientID,
		redirectURI: googleRedirectURI,
		scopes: []string{
			"https://www.googleapis.com/auth/cloud-platform",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		extraParams: url.Values{
			"access_type": {"offline"},
			"prompt":      {"consent"},
		},
		instructions: "Sign in with your Google account, then paste the code shown after approval.",
	}
}

// NewGoogleGeminiCli returns the Gemini CLI login routine.
func NewGoogleGeminiCli() *codeFlow {
	return newGoogleFlow("googleGeminiCli", googleGeminiCliClientID)
}

// NewGoogleAntigravity returns the Antigravity login routine. Same
// endpoints as the Gemini CLI, different client registration.
func NewGoogleAntigravity() *codeFlow {
	return newGoogleFlow("googleAntigravity", googleAntigravityClientID)
}
