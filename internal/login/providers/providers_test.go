package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roost/internal/login"
)

type capturedCallbacks struct {
	authURL      string
	instructions string
	progress     []string
	promptReply  string
	promptErr    error
	prompts      []login.PromptSpec
}

func (c *capturedCallbacks) callbacks() login.Callbacks {
	return login.Callbacks{
		AuthorizationReady: func(url, instructions string) {
			c.authURL = url
			c.instructions = instructions
		},
		PromptNeeded: func(ctx context.Context, spec login.PromptSpec) (string, error) {
			c.prompts = append(c.prompts, spec)
			return c.promptReply, c.promptErr
		},
		Progress: func(message string) {
			c.progress = append(c.progress, message)
		},
	}
}

func TestCodeFlowLogin(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`)
	}))
	defer server.Close()

	flow := &codeFlow{
		id:           "anthropic",
		authURL:      "https://example.com/authorize",
		tokenURL:     server.URL,
		clientID:     "client-1",
		redirectURI:  "https://example.com/callback",
		scopes:       []string{"user:inference", "user:profile"},
		instructions: "paste the code",
		httpClient:   server.Client(),
	}

	captured := &capturedCallbacks{promptReply: "CODE123"}
	cred, err := flow.Login(context.Background(), captured.callbacks())
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cred.ProviderID)
	assert.Equal(t, "tok-123", cred.Secret)

	// Authorization URL carries the PKCE challenge and state.
	authURL, err := url.Parse(captured.authURL)
	require.NoError(t, err)
	query := authURL.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "client-1", query.Get("client_id"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))
	assert.NotEmpty(t, query.Get("code_challenge"))
	assert.NotEmpty(t, query.Get("state"))
	assert.Equal(t, "user:inference user:profile", query.Get("scope"))
	assert.Equal(t, "paste the code", captured.instructions)

	// Exchange sends the code with the matching verifier.
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "CODE123", gotForm.Get("code"))
	assert.Equal(t, "client-1", gotForm.Get("client_id"))
	assert.NotEmpty(t, gotForm.Get("code_verifier"))
	assert.Equal(t, query.Get("state"), gotForm.Get("state"))

	require.Len(t, captured.prompts, 1)
	assert.Equal(t, "Paste the authorization code:", captured.prompts[0].Message)
	assert.False(t, captured.prompts[0].AllowEmpty)
}

func TestCodeFlowTokenEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	flow := &codeFlow{
		id:         "anthropic",
		authURL:    "https://example.com/authorize",
		tokenURL:   server.URL,
		clientID:   "client-1",
		httpClient: server.Client(),
	}

	captured := &capturedCallbacks{promptReply: "BADCODE"}
	_, err := flow.Login(context.Background(), captured.callbacks())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestCodeFlowPromptCancelled(t *testing.T) {
	flow := &codeFlow{
		id:      "anthropic",
		authURL: "https://example.com/authorize",
	}

	captured := &capturedCallbacks{promptErr: login.ErrLoginCancelled}
	_, err := flow.Login(context.Background(), captured.callbacks())
	assert.ErrorIs(t, err, login.ErrLoginCancelled)
}

func TestCodeFlowMissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"token_type":"Bearer"}`)
	}))
	defer server.Close()

	flow := &codeFlow{
		id:         "anthropic",
		authURL:    "https://example.com/authorize",
		tokenURL:   server.URL,
		httpClient: server.Client(),
	}

	captured := &capturedCallbacks{promptReply: "CODE123"}
	_, err := flow.Login(context.Background(), captured.callbacks())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no access token")
}

func TestParsePastedCode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		state   string
		want    string
		wantErr bool
	}{
		{name: "plain code", raw: "CODE123", state: "st", want: "CODE123"},
		{name: "trimmed", raw: "  CODE123  ", state: "st", want: "CODE123"},
		{name: "code with matching state", raw: "CODE123#st", state: "st", want: "CODE123"},
		{name: "state mismatch", raw: "CODE123#other", state: "st", wantErr: true},
		{name: "empty", raw: "", state: "st", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parsePastedCode(tc.raw, tc.state)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGitHubCopilotDeviceFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/device/code", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"device_code":"dev-1","user_code":"ABCD-1234","verification_uri":"https://github.com/login/device","expires_in":900,"interval":1}`)
	})
	mux.HandleFunc("/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"gh-tok","token_type":"bearer","scope":"read:user"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := NewGitHubCopilot()
	provider.config.Endpoint.DeviceAuthURL = server.URL + "/device/code"
	provider.config.Endpoint.TokenURL = server.URL + "/access_token"
	provider.httpClient = server.Client()

	captured := &capturedCallbacks{}
	cred, err := provider.Login(context.Background(), captured.callbacks())
	require.NoError(t, err)
	assert.Equal(t, "githubCopilot", cred.ProviderID)
	assert.Equal(t, "gh-tok", cred.Secret)
	assert.Equal(t, "https://github.com/login/device", captured.authURL)
	assert.Contains(t, captured.instructions, "ABCD-1234")
	// The device flow never asks for pasted input.
	assert.Empty(t, captured.prompts)
}

func TestAllProviders(t *testing.T) {
	ids := make([]string, 0)
	for _, p := range All() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{
		"anthropic",
		"githubCopilot",
		"googleGeminiCli",
		"googleAntigravity",
		"openAICodex",
	}, ids)
}
