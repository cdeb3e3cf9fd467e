package test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/mock/gomock"

	"octodon/dal"
	"octodon/dto"
	"octodon/logic"
	"octodon/server"
	"octodon/shared"
	"octodon/test/mocks"
	"octodon/texts"
)

const testHost = "octodon.test"
const ownerLogin = "stepan"
const ownerToken = "gho_owners_provider_token"
const clientRedirectUri = "https://elk.zone/cb"

type harness struct {
	cfg         *shared.Config
	mockLogger  *mocks.MockILogger
	mockStore   *mocks.MockIStore
	mockGithub  *mocks.MockIGithubClient
	mockMetrics *mocks.MockIMetrics
	bridge      logic.IOauthBridge
	dir         logic.IStatusDirectory
	router      *mux.Router
}

func setupApiTest(t *testing.T) (*gomock.Controller, *harness) {

	ctrl := gomock.NewController(t)

	cfg := &shared.Config{
		Host:         testHost,
		OwnerLogin:   ownerLogin,
		EnableWrites: true,
		Instance: shared.InstanceInfo{
			Title:   "Octodon Test",
			Version: "0.0.1",
		},
	}
	cfg.OAuth.ClientId = "octodon-public"
	cfg.OAuth.ClientSecret = "octodon-public-secret"
	cfg.OAuth.StateExpirySec = 600
	cfg.OAuth.Github.AuthorizeUrl = "https://github.com/login/oauth/authorize"
	cfg.OAuth.Github.Scope = "read:user"
	cfg.Secrets.StateSecret = "test-state-secret"
	cfg.Secrets.GithubClientId = "gh-client-id"

	h := &harness{
		cfg:         cfg,
		mockLogger:  mocks.NewMockILogger(ctrl),
		mockStore:   mocks.NewMockIStore(ctrl),
		mockGithub:  mocks.NewMockIGithubClient(ctrl),
		mockMetrics: mocks.NewMockIMetrics(ctrl),
	}
	setupDummyLogger(h.mockLogger)
	setupDummyMetrics(ctrl, h.mockMetrics)

	signer := logic.NewStateSigner(cfg)
	h.bridge = logic.NewOauthBridge(cfg, h.mockLogger, signer, h.mockGithub)
	h.dir = logic.NewStatusDirectory(cfg, h.mockLogger, h.mockStore, texts.NewTexts(), h.mockMetrics)

	groups := []server.IHandlerGroup{
		server.NewApiHandlerGroup(cfg, h.mockLogger, h.mockMetrics, h.dir, h.bridge),
		server.NewOauthHandlerGroup(cfg, h.mockLogger, h.mockMetrics, h.bridge),
	}
	h.router = server.NewMux(groups, h.mockLogger)

	return ctrl, h
}

func (h *harness) serve(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, r)
	return w
}

// makeSnapshot builds a snapshot with `count` posts, newest first. Post ids
// run from `count` down to 1; timestamps descend with them.
func makeSnapshot(count int) *dal.Snapshot {
	base := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	snapshot := &dal.Snapshot{
		Account: dal.Account{
			Id:            "1",
			Handle:        ownerLogin,
			DisplayName:   "Stepan",
			CreatedAt:     base.AddDate(-2, 0, 0),
			StatusesCount: count,
		},
	}
	for ix := 0; ix < count; ix++ {
		id := count - ix
		snapshot.Posts = append(snapshot.Posts, dal.Post{
			Id:          fmt.Sprintf("%d", id),
			CreatedAt:   base.Add(-time.Duration(ix) * time.Hour),
			Visibility:  dal.VisibilityPublic,
			ContentHtml: fmt.Sprintf("<p>Post %d</p>", id),
		})
	}
	return snapshot
}

func statusIds(statuses []dto.Status) []string {
	res := make([]string, 0, len(statuses))
	for _, status := range statuses {
		res = append(res, status.Id)
	}
	return res
}
