package providers

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"roost/internal/credstore"
	"roost/internal/login"
)

// GitHub endpoints for the device-authorization flow. Copilot uses the
// device flow because the registration has no web redirect.
const (
	githubDeviceAuthURL = "https://github.com/login/device/code"
	githubTokenURL      = "https://github.com/login/oauth/access_token"
	githubClientID      = "Iv1.b507a08c87ecfe98"
)

// GitHubCopilot authenticates via the OAuth 2.0 device-authorization
// grant: the user enters a short code on github.com while the routine
// polls the token endpoint.
type GitHubCopilot struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewGitHubCopilot returns the GitHub Copilot login routine.
func NewGitHubCopilot() *GitHubCopilot {
	return &GitHubCopilot{
		config: &oauth2.Config{
			ClientID: githubClientID,
			Scopes:   []string{"read:user"},
			Endpoint: oauth2.Endpoint{
				DeviceAuthURL: githubDeviceAuthURL,
				TokenURL:      githubTokenURL,
			},
		},
	}
}

// ID returns the provider identifier.
func (p *GitHubCopilot) ID() string {
	return "githubCopilot"
}

// Login runs the device-authorization exchange.
func (p *GitHubCopilot) Login(ctx context.Context, cb login.Callbacks) (*credstore.Credential, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	auth, err := p.config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device authorization request failed: %w", err)
	}

	verificationURI := auth.VerificationURI
	if auth.VerificationURIComplete != "" {
		verificationURI = auth.VerificationURIComplete
	}
	cb.AuthorizationReady(verificationURI,
		fmt.Sprintf("Enter code %s on github.com to authorize this device.", auth.UserCode))

	cb.Progress("Waiting for device authorization...")
	token, err := p.config.DeviceAccessToken(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("device authorization failed: %w", err)
	}

	return &credstore.Credential{ProviderID: p.ID(), Secret: token.AccessToken}, nil
}
