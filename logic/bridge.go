package logic

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"octodon/dto"
	"octodon/shared"
)

// IOauthBridge is the identity-bridging state machine. Each method is one
// step of the dance; no state survives between calls on the server side.
type IOauthBridge interface {
	RegisterApp(req *dto.AppRequest) *dto.Application
	AuthorizeUrl(clientRedirectUri string) (string, error)
	HandleCallback(ctx context.Context, code, state string) (redirect string, err error)
	ExchangeToken(grantType, code string) (*dto.Token, error)
	Authenticate(ctx context.Context, token string) (login string, err error)
}

const tokenScope = "read write"

type oauthBridge struct {
	cfg    *shared.Config
	logger shared.ILogger
	signer IStateSigner
	github IGithubClient
	idb    shared.IdBuilder
}

func NewOauthBridge(
	cfg *shared.Config,
	logger shared.ILogger,
	signer IStateSigner,
	github IGithubClient,
) IOauthBridge {
	return &oauthBridge{cfg, logger, signer, github, shared.IdBuilder{Host: cfg.Host}}
}

// RegisterApp accepts any client and answers with the fixed public
// credential pair. The bridge performs no client authentication; only the
// owner's identity, checked later against the provider, matters.
func (ob *oauthBridge) RegisterApp(req *dto.AppRequest) *dto.Application {
	return &dto.Application{
		Id:           "1",
		Name:         req.ClientName,
		RedirectUri:  req.RedirectUris,
		ClientId:     ob.cfg.OAuth.ClientId,
		ClientSecret: ob.cfg.OAuth.ClientSecret,
	}
}

func (ob *oauthBridge) AuthorizeUrl(clientRedirectUri string) (string, error) {

	if clientRedirectUri == "" {
		return "", fmt.Errorf("%w: missing redirect_uri", ErrBadRequest)
	}

	state, err := ob.signer.Sign(&BridgeState{RedirectUri: clientRedirectUri})
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("client_id", ob.cfg.Secrets.GithubClientId)
	query.Set("redirect_uri", ob.idb.OauthCallback())
	query.Set("scope", ob.cfg.OAuth.Github.Scope)
	query.Set("state", state)
	return ob.cfg.OAuth.Github.AuthorizeUrl + "?" + query.Encode(), nil
}

// HandleCallback closes the loop with the provider: verifies the carried
// state, swaps the provider code for a token, and gates on the owner login.
// The provider token doubles as the protocol's authorization code, so the
// token endpoint can stay stateless.
func (ob *oauthBridge) HandleCallback(ctx context.Context, code, state string) (string, error) {

	if code == "" || state == "" {
		return "", fmt.Errorf("%w: missing code or state", ErrBadRequest)
	}

	bridgeState, err := ob.signer.Verify(state)
	if err != nil {
		return "", err
	}

	token, err := ob.github.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}

	login, err := ob.github.GetLogin(ctx, token)
	if err != nil {
		return "", err
	}
	if login != ob.cfg.OwnerLogin {
		ob.logger.Warnf("Authorize attempt by '%s'; instance owner is '%s'", login, ob.cfg.OwnerLogin)
		return "", ErrForbidden
	}

	codeParam := token
	if ob.cfg.OAuth.WrapCode {
		if codeParam, err = ob.signer.Encrypt(token); err != nil {
			return "", err
		}
	}

	query := url.Values{}
	query.Set("code", codeParam)
	return bridgeState.RedirectUri + "?" + query.Encode(), nil
}

// ExchangeToken exists for protocol-shape compatibility. The code already
// is the provider token; validation happened at callback time.
func (ob *oauthBridge) ExchangeToken(grantType, code string) (*dto.Token, error) {

	if grantType != "authorization_code" || code == "" {
		return nil, fmt.Errorf("%w: grant_type must be authorization_code and code must be present", ErrBadRequest)
	}

	token := code
	if ob.cfg.OAuth.WrapCode {
		var err error
		if token, err = ob.signer.Decrypt(code); err != nil {
			return nil, fmt.Errorf("%w: undecipherable code", ErrBadRequest)
		}
	}

	return &dto.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		Scope:       tokenScope,
		CreatedAt:   time.Now().Unix(),
	}, nil
}

// Authenticate re-validates a bearer token against the provider and
// re-checks the owner gate. Used by the write path on every request.
func (ob *oauthBridge) Authenticate(ctx context.Context, token string) (string, error) {

	login, err := ob.github.GetLogin(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: provider rejected token", ErrUnauthorized)
	}
	if login != ob.cfg.OwnerLogin {
		ob.logger.Warnf("Write attempt by '%s'; instance owner is '%s'", login, ob.cfg.OwnerLogin)
		return "", ErrForbidden
	}
	return login, nil
}
