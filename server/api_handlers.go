package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"octodon/dto"
	"octodon/logic"
	"octodon/shared"
)

// Groups together the Mastodon-compatible API endpoints.
type apiHandlerGroup struct {
	cfg     *shared.Config
	logger  shared.ILogger
	metrics logic.IMetrics
	dir     logic.IStatusDirectory
	bridge  logic.IOauthBridge
}

func NewApiHandlerGroup(
	cfg *shared.Config,
	logger shared.ILogger,
	metrics logic.IMetrics,
	dir logic.IStatusDirectory,
	bridge logic.IOauthBridge,
) IHandlerGroup {
	res := apiHandlerGroup{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		dir:     dir,
		bridge:  bridge,
	}
	return &res
}

func (hg *apiHandlerGroup) Prefix() string {
	return "/api/v1"
}

func (hg *apiHandlerGroup) GroupDefs() []handlerDef {
	// verify_credentials must precede the {id} routes
	return []handlerDef{
		{"POST", "/apps", func(w http.ResponseWriter, r *http.Request) { hg.postApps(w, r) }},
		{"GET", "/instance", func(w http.ResponseWriter, r *http.Request) { hg.getInstance(w, r) }},
		{"GET", "/timelines/public", func(w http.ResponseWriter, r *http.Request) { hg.getPublicTimeline(w, r) }},
		{"GET", "/accounts/verify_credentials", func(w http.ResponseWriter, r *http.Request) { hg.getVerifyCredentials(w, r) }},
		{"GET", "/accounts/{id}", func(w http.ResponseWriter, r *http.Request) { hg.getAccount(w, r) }},
		{"GET", "/accounts/{id}/statuses", func(w http.ResponseWriter, r *http.Request) { hg.getAccountStatuses(w, r) }},
		{"POST", "/statuses", func(w http.ResponseWriter, r *http.Request) { hg.postStatuses(w, r) }},
		{"GET", "/statuses/{id}", func(w http.ResponseWriter, r *http.Request) { hg.getStatus(w, r) }},
	}
}

func (hg *apiHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return emptyMW
}

func (hg *apiHandlerGroup) postApps(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling apps POST: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("apps")
	defer obs.Finish()

	bodyBytes := readBody(hg.logger, w, r)
	if bodyBytes == nil {
		return
	}
	var req dto.AppRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		hg.logger.Infof("Invalid JSON in apps request body: %v", err)
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}

	writeJsonResponse(hg.logger, w, hg.bridge.RegisterApp(&req))
}

func (hg *apiHandlerGroup) getInstance(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling instance GET: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("instance")
	defer obs.Finish()

	instance, err := hg.dir.GetInstance(r.Context())
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeJsonResponse(hg.logger, w, instance)
}

func (hg *apiHandlerGroup) getPublicTimeline(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling public timeline GET: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("timelines/public")
	defer obs.Finish()

	statuses, err := hg.dir.GetTimeline(r.Context(), logic.PageQueryFromValues(r.URL.Query()))
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeJsonResponse(hg.logger, w, statuses)
}

func (hg *apiHandlerGroup) getAccount(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling account GET: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("accounts")
	defer obs.Finish()

	account, err := hg.dir.GetAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeJsonResponse(hg.logger, w, account)
}

func (hg *apiHandlerGroup) getAccountStatuses(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling account statuses GET: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("accounts/statuses")
	defer obs.Finish()

	statuses, err := hg.dir.GetAccountStatuses(r.Context(), mux.Vars(r)["id"],
		logic.PageQueryFromValues(r.URL.Query()))
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeJsonResponse(hg.logger, w, statuses)
}

func (hg *apiHandlerGroup) getStatus(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling status GET: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("statuses")
	defer obs.Finish()

	status, err := hg.dir.GetStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeJsonResponse(hg.logger, w, status)
}

func (hg *apiHandlerGroup) getVerifyCredentials(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling verify_credentials GET: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("accounts/verify_credentials")
	defer obs.Finish()

	token := bearerToken(r)
	if token == "" {
		writeErrorResponse(w, unauthorizedStr, http.StatusUnauthorized)
		return
	}
	if _, err := hg.bridge.Authenticate(r.Context(), token); err != nil {
		writeLogicError(w, err)
		return
	}

	instance, err := hg.dir.GetInstance(r.Context())
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeJsonResponse(hg.logger, w, instance.ContactAccount)
}

func (hg *apiHandlerGroup) postStatuses(w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling statuses POST: %s", r.URL.Path)
	obs := hg.metrics.StartApiRequestIn("statuses")
	defer obs.Finish()

	if !hg.cfg.EnableWrites {
		hg.logger.Infof("Statuses POST received, but writes are disabled")
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
		return
	}

	token := bearerToken(r)
	if token == "" {
		writeErrorResponse(w, unauthorizedStr, http.StatusUnauthorized)
		return
	}
	if _, err := hg.bridge.Authenticate(r.Context(), token); err != nil {
		writeLogicError(w, err)
		return
	}

	bodyBytes := readBody(hg.logger, w, r)
	if bodyBytes == nil {
		return
	}
	var req dto.StatusRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		hg.logger.Infof("Invalid JSON in statuses request body: %v", err)
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}

	status, err := hg.dir.CreateStatus(r.Context(), &req)
	if err != nil {
		writeLogicError(w, err)
		return
	}
	writeJsonResponseStatus(hg.logger, w, http.StatusCreated, status)
}
