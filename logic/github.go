package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"octodon/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_github.go -package mocks octodon/logic IGithubClient

// IGithubClient talks to the external identity provider. Both calls are
// single-shot and blocking; a failure is terminal for the request.
type IGithubClient interface {
	ExchangeCode(ctx context.Context, code string) (token string, err error)
	GetLogin(ctx context.Context, token string) (login string, err error)
}

const githubTimeoutSec = 10

type githubClient struct {
	cfg       *shared.Config
	logger    shared.ILogger
	userAgent shared.IUserAgent
	metrics   IMetrics
}

func NewGithubClient(
	cfg *shared.Config,
	logger shared.ILogger,
	userAgent shared.IUserAgent,
	metrics IMetrics,
) IGithubClient {
	return &githubClient{cfg, logger, userAgent, metrics}
}

func (gc *githubClient) ExchangeCode(ctx context.Context, code string) (string, error) {

	obs := gc.metrics.StartProviderRequestOut("token")
	defer obs.Finish()

	form := url.Values{}
	form.Set("client_id", gc.cfg.Secrets.GithubClientId)
	form.Set("client_secret", gc.cfg.Secrets.GithubClientSecret)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, "POST", gc.cfg.OAuth.Github.TokenUrl,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	gc.userAgent.AddUserAgent(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var obj struct {
		AccessToken string `json:"access_token"`
	}
	if err = gc.doJson(req, &obj); err != nil {
		gc.logger.Warnf("Code exchange with provider failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrProviderAuth, err)
	}
	if obj.AccessToken == "" {
		gc.logger.Warnf("Provider returned no access token for code")
		return "", ErrProviderAuth
	}
	return obj.AccessToken, nil
}

func (gc *githubClient) GetLogin(ctx context.Context, token string) (string, error) {

	obs := gc.metrics.StartProviderRequestOut("user")
	defer obs.Finish()

	req, err := http.NewRequestWithContext(ctx, "GET", gc.cfg.OAuth.Github.ApiBase+"/user", nil)
	if err != nil {
		return "", err
	}
	gc.userAgent.AddUserAgent(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var obj struct {
		Login string `json:"login"`
	}
	if err = gc.doJson(req, &obj); err != nil {
		gc.logger.Infof("Identity lookup with provider failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrProviderAuth, err)
	}
	if obj.Login == "" {
		return "", ErrProviderAuth
	}
	return obj.Login, nil
}

func (gc *githubClient) doJson(req *http.Request, obj interface{}) error {

	client := http.Client{}
	client.Timeout = time.Second * githubTimeoutSec
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("got status %s: response: %s", resp.Status, bodyBytes)
	}
	return json.Unmarshal(bodyBytes, obj)
}
