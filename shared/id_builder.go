package shared

import (
	"fmt"
)

// IdBuilder constructs the instance's public URLs.
type IdBuilder struct {
	Host string
}

func (idb *IdBuilder) SiteUrl() string {
	return fmt.Sprintf("https://%s", idb.Host)
}

func (idb *IdBuilder) AccountUrl(handle string) string {
	return fmt.Sprintf("https://%s/@%s", idb.Host, handle)
}

func (idb *IdBuilder) StatusUrl(handle, id string) string {
	return fmt.Sprintf("https://%s/@%s/%s", idb.Host, handle, id)
}

func (idb *IdBuilder) StatusUri(id string) string {
	return fmt.Sprintf("https://%s/api/v1/statuses/%s", idb.Host, id)
}

func (idb *IdBuilder) OauthCallback() string {
	return fmt.Sprintf("https://%s/oauth/github/callback", idb.Host)
}
