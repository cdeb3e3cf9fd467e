package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"octodon/dto"
)

func getTimeline(t *testing.T, h *harness, target string) (int, []dto.Status) {
	t.Helper()
	w := h.serve(httptest.NewRequest("GET", target, nil))
	if w.Code != 200 {
		return w.Code, nil
	}
	var statuses []dto.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	return w.Code, statuses
}

func TestTimelineNoCursor(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(5), nil)

	code, statuses := getTimeline(t, h, "/api/v1/timelines/public")
	require.Equal(t, 200, code)
	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, statusIds(statuses))
	assert.Equal(t, "<p>Post 5</p>", statuses[0].Content)
	assert.Equal(t, ownerLogin, statuses[0].Account.Username)
	assert.Equal(t, "https://octodon.test/@stepan/3", statuses[2].Url)
}

func TestTimelineMaxIdPaging(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(5), nil)

	code, statuses := getTimeline(t, h, "/api/v1/timelines/public?max_id=3&limit=2")
	require.Equal(t, 200, code)
	assert.Equal(t, []string{"2", "1"}, statusIds(statuses))
}

func TestTimelineMinIdPaging(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(5), nil)

	code, statuses := getTimeline(t, h, "/api/v1/timelines/public?min_id=2&limit=2")
	require.Equal(t, 200, code)
	assert.Equal(t, []string{"3", "4"}, statusIds(statuses))
}

func TestTimelineStaleCursor(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(3), nil)

	code, statuses := getTimeline(t, h, "/api/v1/timelines/public?max_id=99")
	require.Equal(t, 200, code)
	assert.Equal(t, []string{"3", "2", "1"}, statusIds(statuses))
}

func TestTimelineStorageFailure(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(nil, assert.AnError)

	code, _ := getTimeline(t, h, "/api/v1/timelines/public")
	assert.Equal(t, 500, code)
}

func TestGetStatus(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(5), nil).Times(2)

	w := h.serve(httptest.NewRequest("GET", "/api/v1/statuses/3", nil))
	require.Equal(t, 200, w.Code)
	var status dto.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "3", status.Id)
	assert.Equal(t, "https://octodon.test/api/v1/statuses/3", status.Uri)
	require.NotNil(t, status.Account)
	assert.Equal(t, "1", status.Account.Id)

	w = h.serve(httptest.NewRequest("GET", "/api/v1/statuses/99", nil))
	assert.Equal(t, 404, w.Code)
}

func TestGetAccount(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(2), nil).Times(2)

	w := h.serve(httptest.NewRequest("GET", "/api/v1/accounts/1", nil))
	require.Equal(t, 200, w.Code)
	var account dto.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	assert.Equal(t, ownerLogin, account.Username)
	assert.Equal(t, "https://octodon.test/@stepan", account.Url)
	assert.Equal(t, 2, account.StatusesCount)

	w = h.serve(httptest.NewRequest("GET", "/api/v1/accounts/42", nil))
	assert.Equal(t, 404, w.Code)
}

func TestGetAccountStatuses(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(5), nil).Times(2)

	code, statuses := getTimeline(t, h, "/api/v1/accounts/1/statuses?since_id=3")
	require.Equal(t, 200, code)
	assert.Equal(t, []string{"5", "4"}, statusIds(statuses))

	w := h.serve(httptest.NewRequest("GET", "/api/v1/accounts/42/statuses", nil))
	assert.Equal(t, 404, w.Code)
}

func TestGetInstance(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(5), nil)

	w := h.serve(httptest.NewRequest("GET", "/api/v1/instance", nil))
	require.Equal(t, 200, w.Code)
	var instance dto.Instance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &instance))
	assert.Equal(t, testHost, instance.Uri)
	assert.Equal(t, "Octodon Test", instance.Title)
	assert.Equal(t, 5, instance.Stats.StatusCount)
	assert.Equal(t, 1, instance.Stats.UserCount)
	require.NotNil(t, instance.ContactAccount)
	assert.Equal(t, ownerLogin, instance.ContactAccount.Username)
}

func TestVerifyCredentials(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	// No bearer token
	w := h.serve(httptest.NewRequest("GET", "/api/v1/accounts/verify_credentials", nil))
	assert.Equal(t, 401, w.Code)

	// Provider rejects the token
	h.mockGithub.EXPECT().GetLogin(gomock.Any(), "gho_stale").Return("", assert.AnError)
	req := httptest.NewRequest("GET", "/api/v1/accounts/verify_credentials", nil)
	req.Header.Set("Authorization", "Bearer gho_stale")
	w = h.serve(req)
	assert.Equal(t, 401, w.Code)

	// Valid token, but not the owner
	h.mockGithub.EXPECT().GetLogin(gomock.Any(), "gho_mallory").Return("mallory", nil)
	req = httptest.NewRequest("GET", "/api/v1/accounts/verify_credentials", nil)
	req.Header.Set("Authorization", "Bearer gho_mallory")
	w = h.serve(req)
	assert.Equal(t, 403, w.Code)

	// The owner
	h.mockGithub.EXPECT().GetLogin(gomock.Any(), ownerToken).Return(ownerLogin, nil)
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(2), nil)
	req = httptest.NewRequest("GET", "/api/v1/accounts/verify_credentials", nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	w = h.serve(req)
	require.Equal(t, 200, w.Code)
	var account dto.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	assert.Equal(t, ownerLogin, account.Username)
}

func postStatus(h *harness, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/statuses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.serve(req)
}

func TestCreateStatus(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	h.mockGithub.EXPECT().GetLogin(gomock.Any(), ownerToken).Return(ownerLogin, nil)
	h.mockStore.EXPECT().CommitPost(gomock.Any(),
		gomock.Cond(checkStartsWith("posts/")),
		gomock.Cond(checkBytesContain("Hello <b>world</b>"))).
		Return(nil)
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(makeSnapshot(5), nil)

	body := `{"status": "Hello <script>alert(1)</script><b>world</b>", "visibility": "unlisted"}`
	w := postStatus(h, ownerToken, body)

	require.Equal(t, 201, w.Code)
	var status dto.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.NotEmpty(t, status.Id)
	assert.Equal(t, "unlisted", status.Visibility)
	assert.Equal(t, "Hello <b>world</b>", status.Content)
	assert.NotContains(t, status.Content, "script")
	require.NotNil(t, status.Account)
	assert.Equal(t, ownerLogin, status.Account.Username)
}

func TestCreateStatusAuth(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	w := postStatus(h, "", `{"status": "Hi"}`)
	assert.Equal(t, 401, w.Code)

	h.mockGithub.EXPECT().GetLogin(gomock.Any(), "gho_stale").Return("", assert.AnError)
	w = postStatus(h, "gho_stale", `{"status": "Hi"}`)
	assert.Equal(t, 401, w.Code)

	h.mockGithub.EXPECT().GetLogin(gomock.Any(), "gho_mallory").Return("mallory", nil)
	w = postStatus(h, "gho_mallory", `{"status": "Hi"}`)
	assert.Equal(t, 403, w.Code)
}

func TestCreateStatusValidation(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.mockGithub.EXPECT().GetLogin(gomock.Any(), ownerToken).Return(ownerLogin, nil).Times(3)

	w := postStatus(h, ownerToken, `{"status": "  "}`)
	assert.Equal(t, 400, w.Code)

	w = postStatus(h, ownerToken, `{"status": "Hi", "visibility": "everyone"}`)
	assert.Equal(t, 400, w.Code)

	w = postStatus(h, ownerToken, `not json`)
	assert.Equal(t, 400, w.Code)
}

func TestCreateStatusCommitFailure(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	h.mockGithub.EXPECT().GetLogin(gomock.Any(), ownerToken).Return(ownerLogin, nil)
	h.mockStore.EXPECT().CommitPost(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(assert.AnError)

	w := postStatus(h, ownerToken, `{"status": "Hi"}`)
	assert.Equal(t, 500, w.Code)
}

func TestCreateStatusWritesDisabled(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()
	h.cfg.EnableWrites = false

	w := postStatus(h, ownerToken, `{"status": "Hi"}`)
	assert.Equal(t, 404, w.Code)
}

func TestErrorResponsesAreJson(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	checkErrorBody := func(w *httptest.ResponseRecorder, wantStatus int) {
		t.Helper()
		assert.Equal(t, wantStatus, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var body struct {
			Error  string `json:"error"`
			Status int    `json:"status"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Error)
		assert.Equal(t, wantStatus, body.Status)
	}

	// 404 from the fallback route
	w := h.serve(httptest.NewRequest("GET", "/no/such/road", nil))
	checkErrorBody(w, 404)

	// 401 without a bearer token
	w = h.serve(httptest.NewRequest("GET", "/api/v1/accounts/verify_credentials", nil))
	checkErrorBody(w, 401)

	// 400 from a rejected authorize request
	w = h.serve(httptest.NewRequest("GET", "/oauth/authorize", nil))
	checkErrorBody(w, 400)

	// 500 when storage is down
	h.mockStore.EXPECT().LoadSnapshot(gomock.Any()).Return(nil, assert.AnError)
	w = h.serve(httptest.NewRequest("GET", "/api/v1/timelines/public", nil))
	checkErrorBody(w, 500)
}

func TestUnknownRouteFallback(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	w := h.serve(httptest.NewRequest("GET", "/api/v1/nonexistent/road", nil))
	assert.Equal(t, 404, w.Code)
}

func TestCorsPreflight(t *testing.T) {

	ctrl, h := setupApiTest(t)
	defer ctrl.Finish()

	w := h.serve(httptest.NewRequest("OPTIONS", "/api/v1/timelines/public", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
