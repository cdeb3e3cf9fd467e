package test

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"octodon/dto"
)

func TestAppRegistration(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	body := `{"client_name": "Elk", "redirect_uris": "https://elk.zone/cb", "scopes": "read write"}`
	req := httptest.NewRequest("POST", "/api/v1/apps", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := h.serve(req)

	require.Equal(t, 200, w.Code)
	var app dto.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))
	assert.Equal(t, "Elk", app.Name)
	assert.Equal(t, "https://elk.zone/cb", app.RedirectUri)
	assert.Equal(t, h.cfg.OAuth.ClientId, app.ClientId)
	assert.Equal(t, h.cfg.OAuth.ClientSecret, app.ClientSecret)
}

func TestAuthorizeRedirectsToProvider(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	req := httptest.NewRequest("GET", "/oauth/authorize?redirect_uri="+url.QueryEscape(clientRedirectUri), nil)
	w := h.serve(req)

	require.Equal(t, 302, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", loc.Host)
	assert.Equal(t, "/login/oauth/authorize", loc.Path)
	query := loc.Query()
	assert.Equal(t, h.cfg.Secrets.GithubClientId, query.Get("client_id"))
	assert.Equal(t, "https://octodon.test/oauth/github/callback", query.Get("redirect_uri"))
	assert.Equal(t, "read:user", query.Get("scope"))
	assert.NotEmpty(t, query.Get("state"))
}

func TestAuthorizeMissingRedirectUri(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	req := httptest.NewRequest("GET", "/oauth/authorize", nil)
	w := h.serve(req)

	assert.Equal(t, 400, w.Code)
}

// Runs the authorize step and extracts the signed state from the provider
// redirect, the way a browser would carry it.
func grabState(t *testing.T, h *harness) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/oauth/authorize?redirect_uri="+url.QueryEscape(clientRedirectUri), nil)
	w := h.serve(req)
	require.Equal(t, 302, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestCallbackHappyPath(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	state := grabState(t, h)
	h.mockGithub.EXPECT().ExchangeCode(gomock.Any(), "provider-code").Return(ownerToken, nil)
	h.mockGithub.EXPECT().GetLogin(gomock.Any(), ownerToken).Return(ownerLogin, nil)

	target := "/oauth/github/callback?code=provider-code&state=" + url.QueryEscape(state)
	w := h.serve(httptest.NewRequest("GET", target, nil))

	require.Equal(t, 302, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "elk.zone", loc.Host)
	assert.Equal(t, "/cb", loc.Path)
	assert.Equal(t, ownerToken, loc.Query().Get("code"))
}

func TestCallbackRejectsTamperedState(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	state := grabState(t, h)
	tampered := "A" + state[1:]
	if tampered == state {
		tampered = "B" + state[1:]
	}

	target := "/oauth/github/callback?code=provider-code&state=" + url.QueryEscape(tampered)
	w := h.serve(httptest.NewRequest("GET", target, nil))
	assert.Equal(t, 400, w.Code)

	w = h.serve(httptest.NewRequest("GET", "/oauth/github/callback?code=provider-code&state=bogus", nil))
	assert.Equal(t, 400, w.Code)
}

func TestCallbackMissingParams(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	state := grabState(t, h)

	w := h.serve(httptest.NewRequest("GET", "/oauth/github/callback?state="+url.QueryEscape(state), nil))
	assert.Equal(t, 400, w.Code)

	w = h.serve(httptest.NewRequest("GET", "/oauth/github/callback?code=provider-code", nil))
	assert.Equal(t, 400, w.Code)
}

func TestCallbackRejectsNonOwner(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	state := grabState(t, h)
	h.mockGithub.EXPECT().ExchangeCode(gomock.Any(), "provider-code").Return("gho_someone_elses", nil)
	h.mockGithub.EXPECT().GetLogin(gomock.Any(), "gho_someone_elses").Return("mallory", nil)

	target := "/oauth/github/callback?code=provider-code&state=" + url.QueryEscape(state)
	w := h.serve(httptest.NewRequest("GET", target, nil))

	assert.Equal(t, 403, w.Code)
}

func TestCallbackProviderFailure(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	state := grabState(t, h)
	h.mockGithub.EXPECT().ExchangeCode(gomock.Any(), "provider-code").
		Return("", assert.AnError)

	target := "/oauth/github/callback?code=provider-code&state=" + url.QueryEscape(state)
	w := h.serve(httptest.NewRequest("GET", target, nil))

	assert.Equal(t, 500, w.Code)
}

func TestTokenExchangeForm(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", ownerToken)
	req := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := h.serve(req)

	require.Equal(t, 200, w.Code)
	var token dto.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.Equal(t, ownerToken, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, "read write", token.Scope)
	assert.NotZero(t, token.CreatedAt)
}

func TestTokenExchangeJson(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	body := `{"grant_type": "authorization_code", "code": "` + ownerToken + `"}`
	req := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := h.serve(req)

	require.Equal(t, 200, w.Code)
	var token dto.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.Equal(t, ownerToken, token.AccessToken)
}

func TestTokenExchangeBadGrant(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("code", ownerToken)
	req := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := h.serve(req)

	require.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_grant")
}

func TestWrappedCodeRoundTrip(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.cfg.OAuth.WrapCode = true

	state := grabState(t, h)
	h.mockGithub.EXPECT().ExchangeCode(gomock.Any(), "provider-code").Return(ownerToken, nil)
	h.mockGithub.EXPECT().GetLogin(gomock.Any(), ownerToken).Return(ownerLogin, nil)

	target := "/oauth/github/callback?code=provider-code&state=" + url.QueryEscape(state)
	w := h.serve(httptest.NewRequest("GET", target, nil))
	require.Equal(t, 302, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	wrapped := loc.Query().Get("code")
	require.NotEmpty(t, wrapped)
	assert.NotEqual(t, ownerToken, wrapped)

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", wrapped)
	req := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = h.serve(req)

	require.Equal(t, 200, w.Code)
	var token dto.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.Equal(t, ownerToken, token.AccessToken)

	// A mangled wrapped code must not exchange
	mangled := "A" + wrapped[1:]
	if mangled == wrapped {
		mangled = "B" + wrapped[1:]
	}
	form.Set("code", mangled)
	req = httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = h.serve(req)
	assert.Equal(t, 400, w.Code)
}
