package logic

import "errors"

// Terminal per-request error kinds. Handlers map these onto HTTP statuses;
// nothing is retried internally.
var (
	ErrBadRequest   = errors.New("invalid request parameters")
	ErrStateInvalid = errors.New("state signature mismatch")
	ErrStateExpired = errors.New("state expired")
	ErrProviderAuth = errors.New("identity provider rejected the exchange")
	ErrForbidden    = errors.New("authenticated identity is not the instance owner")
	ErrUnauthorized = errors.New("missing or invalid bearer token")
	ErrStorage      = errors.New("storage unavailable")
	ErrNotFound     = errors.New("no such resource")
)
