package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"octodon/dto"
	"octodon/logic"
	"octodon/shared"
)

// Groups together the endpoints of the identity-bridging OAuth dance.
type oauthHandlerGroup struct {
	cfg     *shared.Config
	logger  shared.ILogger
	metrics logic.IMetrics
	bridge  logic.IOauthBridge
}

func NewOauthHandlerGroup(
	cfg *shared.Config,
	logger shared.ILogger,
	metrics logic.IMetrics,
	bridge logic.IOauthBridge,
) IHandlerGroup {
	res := oauthHandlerGroup{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		bridge:  bridge,
	}
	return &res
}

func (hg *oauthHandlerGroup) Prefix() string {
	return "/oauth"
}

func (hg *oauthHandlerGroup) GroupDefs() []handlerDef {
	return []handlerDef{
		{"GET", "/authorize", func(w http.ResponseWriter, r *http.Request) { hg.getAuthorize(w, r) }},
		{"GET", "/github/callback", func(w http.ResponseWriter, r *http.Request) { hg.getCallback(w, r) }},
		{"POST", "/token", func(w http.ResponseWriter, r *http.Request) { hg.postToken(w, r) }},
	}
}

func (hg *oauthHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return emptyMW
}

func (hg *oauthHandlerGroup) getAuthorize(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling authorize GET: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("oauth/authorize")
	defer obs.Finish()

	redirect, err := hg.bridge.AuthorizeUrl(r.URL.Query().Get("redirect_uri"))
	if err != nil {
		hg.logger.Infof("Authorize request rejected: %v", err)
		writeLogicError(w, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (hg *oauthHandlerGroup) getCallback(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling provider callback GET: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("oauth/callback")
	defer obs.Finish()

	query := r.URL.Query()
	redirect, err := hg.bridge.HandleCallback(r.Context(), query.Get("code"), query.Get("state"))
	if err != nil {
		hg.logger.Infof("Provider callback rejected: %v", err)
		writeLogicError(w, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (hg *oauthHandlerGroup) postToken(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling token POST: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("oauth/token")
	defer obs.Finish()

	req, ok := hg.readTokenRequest(w, r)
	if !ok {
		return
	}

	token, err := hg.bridge.ExchangeToken(req.GrantType, req.Code)
	if err != nil {
		hg.logger.Infof("Token request rejected: grant_type='%s': %v", req.GrantType, err)
		if errors.Is(err, logic.ErrBadRequest) {
			writeErrorResponse(w, "invalid_grant", http.StatusBadRequest)
		} else {
			writeLogicError(w, err)
		}
		return
	}
	writeJsonResponse(hg.logger, w, token)
}

// Clients send the token request either as JSON or as a classic form body.
func (hg *oauthHandlerGroup) readTokenRequest(w http.ResponseWriter, r *http.Request) (*dto.TokenRequest, bool) {

	var req dto.TokenRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		bodyBytes := readBody(hg.logger, w, r)
		if bodyBytes == nil {
			return nil, false
		}
		if err := json.Unmarshal(bodyBytes, &req); err != nil {
			hg.logger.Infof("Invalid JSON in token request body: %v", err)
			writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
			return nil, false
		}
		return &req, true
	}

	if err := r.ParseForm(); err != nil {
		hg.logger.Infof("Invalid form in token request body: %v", err)
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return nil, false
	}
	req.GrantType = r.PostForm.Get("grant_type")
	req.Code = r.PostForm.Get("code")
	req.ClientId = r.PostForm.Get("client_id")
	req.RedirectUri = r.PostForm.Get("redirect_uri")
	return &req, true
}
