package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roost/internal/credstore"
	"roost/internal/login"
	"roost/pkg/oauth"
)

// defaultHTTPTimeout bounds every token-endpoint request.
const defaultHTTPTimeout = 30 * time.Second

// codeFlow is the authorization-code flow with PKCE for providers whose
// registered redirect lands the code on a page the user copies it from.
// The routine surfaces the authorization URL, suspends until the user
// pastes the code, then exchanges it at the token endpoint.
type codeFlow struct {
	id           string
	authURL      string
	tokenURL     string
	clientID     string
	redirectURI  string
	scopes       []string
	extraParams  url.Values
	instructions string
	httpClient   *http.Client
}

func (f *codeFlow) ID() string {
	return f.id
}

func (f *codeFlow) Login(ctx context.Context, cb login.Callbacks) (*credstore.Credential, error) {
	pkce, err := oauth.GeneratePKCE()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE challenge: %w", err)
	}
	state, err := oauth.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	authorizeURL, err := f.authorizationURL(pkce, state)
	if err != nil {
		return nil, err
	}
	cb.AuthorizationReady(authorizeURL, f.instructions)

	raw, err := cb.PromptNeeded(ctx, login.PromptSpec{
		Message:     "Paste the authorization code:",
		Placeholder: "code",
	})
	if err != nil {
		return nil, err
	}

	code, err := parsePastedCode(raw, state)
	if err != nil {
		return nil, err
	}

	cb.Progress("Exchanging authorization code...")
	token, err := f.exchangeCode(ctx, code, state, pkce.CodeVerifier)
	if err != nil {
		return nil, err
	}

	return &credstore.Credential{ProviderID: f.id, Secret: token.AccessToken}, nil
}

func (f *codeFlow) authorizationURL(pkce *oauth.PKCEChallenge, state string) (string, error) {
	u, err := url.Parse(f.authURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}

	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {f.clientID},
		"redirect_uri":          {f.redirectURI},
		"state":                 {state},
		"code_challenge":        {pkce.CodeChallenge},
		"code_challenge_method": {pkce.CodeChallengeMethod},
		"scope":                 {strings.Join(f.scopes, " ")},
	}
	for key, values := range f.extraParams {
		for _, v := range values {
			params.Add(key, v)
		}
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// exchangeCode exchanges an authorization code for tokens at the token
// endpoint.
func (f *codeFlow) exchangeCode(ctx context.Context, code, state, verifier string) (*tokenResponse, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"state":         {state},
		"redirect_uri":  {f.redirectURI},
		"code_verifier": {verifier},
		"client_id":     {f.clientID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access token")
	}

	return &token, nil
}

func (f *codeFlow) client() *http.Client {
	if f.httpClient != nil {
		return f.httpClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// parsePastedCode splits a pasted "code#state" value. Some providers
// append the state after a '#' so the user copies both in one go; when
// present it must match the state we issued.
func parsePastedCode(raw, state string) (string, error) {
	code, pastedState, found := strings.Cut(strings.TrimSpace(raw), "#")
	if found && pastedState != state {
		return "", fmt.Errorf("authorization state mismatch, restart the login")
	}
	if code == "" {
		return "", fmt.Errorf("authorization code is empty")
	}
	return code, nil
}
