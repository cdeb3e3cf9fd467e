package dto

import "time"

// Wire shapes of the Mastodon-compatible API. Field names follow the
// protocol's documented JSON, not our internal records.

type Account struct {
	Id             string    `json:"id"`
	Username       string    `json:"username"`
	Acct           string    `json:"acct"`
	DisplayName    string    `json:"display_name"`
	Note           string    `json:"note"`
	Url            string    `json:"url"`
	Avatar         string    `json:"avatar"`
	Header         string    `json:"header"`
	Locked         bool      `json:"locked"`
	Bot            bool      `json:"bot"`
	CreatedAt      time.Time `json:"created_at"`
	StatusesCount  int       `json:"statuses_count"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
}

type Status struct {
	Id              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Content         string    `json:"content"`
	Visibility      string    `json:"visibility"`
	Sensitive       bool      `json:"sensitive"`
	SpoilerText     string    `json:"spoiler_text"`
	Uri             string    `json:"uri"`
	Url             string    `json:"url"`
	RepliesCount    int       `json:"replies_count"`
	ReblogsCount    int       `json:"reblogs_count"`
	FavouritesCount int       `json:"favourites_count"`
	Account         *Account  `json:"account"`
}

type AppRequest struct {
	ClientName   string `json:"client_name"`
	RedirectUris string `json:"redirect_uris"`
	Scopes       string `json:"scopes"`
	Website      string `json:"website"`
}

type Application struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	RedirectUri  string `json:"redirect_uri"`
	ClientId     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type TokenRequest struct {
	GrantType   string `json:"grant_type"`
	Code        string `json:"code"`
	ClientId    string `json:"client_id"`
	RedirectUri string `json:"redirect_uri"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	CreatedAt   int64  `json:"created_at"`
}

type StatusRequest struct {
	Status     string `json:"status"`
	Visibility string `json:"visibility"`
	Sensitive  bool   `json:"sensitive"`
}

type Instance struct {
	Uri            string        `json:"uri"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Version        string        `json:"version"`
	Stats          InstanceStats `json:"stats"`
	ContactAccount *Account      `json:"contact_account"`
}

type InstanceStats struct {
	UserCount   int `json:"user_count"`
	StatusCount int `json:"status_count"`
	DomainCount int `json:"domain_count"`
}
