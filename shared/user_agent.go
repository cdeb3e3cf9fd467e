package shared

import (
	"fmt"
	"net/http"
)

const userAgentTemplate = "Octodon/%s (+https://%s)"

type IUserAgent interface {
	AddUserAgent(req *http.Request)
}

type userAgent struct {
	userAgentValue string
}

func NewUserAgent(cfg *Config) IUserAgent {
	version := cfg.Instance.Version
	if version == "" {
		version = "dev"
	}
	return &userAgent{
		userAgentValue: fmt.Sprintf(userAgentTemplate, version, cfg.Host),
	}
}

func (ua *userAgent) AddUserAgent(req *http.Request) {
	req.Header.Add("User-Agent", ua.userAgentValue)
}
