package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"octodon/logic"
	"octodon/shared"
)

const (
	internalErrorStr = "500 Internal Server Error"
	badRequestStr    = "400 Invalid Request"
	notFoundStr      = "404 Not Found"
	unauthorizedStr  = "401 Missing or Invalid Bearer Token"
	forbiddenStr     = "403 Not the Instance Owner"
	storageErrorStr  = "500 Storage Unavailable"
)

// Defines a single HTTP handler (endpoint)
type handlerDef struct {
	method  string
	pattern string
	handler func(http.ResponseWriter, *http.Request)
}

// IHandlerGroup groups together multiple HTTP handler definitions.
type IHandlerGroup interface {
	Prefix() string
	GroupDefs() []handlerDef
	AuthMW() func(next http.Handler) http.Handler
}

func emptyMW(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	})
}

// Returns the JSON serialized object as the response body; handles errors.
func writeJsonResponse(logger shared.ILogger, w http.ResponseWriter, resp interface{}) {
	writeJsonResponseStatus(logger, w, http.StatusOK, resp)
}

func writeJsonResponseStatus(logger shared.ILogger, w http.ResponseWriter, code int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	var err error
	var respJson []byte
	if respJson, err = json.Marshal(resp); err != nil {
		logger.Warnf("Failed to serialize response: %v\n", err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(code)
	if _, err = fmt.Fprintln(w, string(respJson)); err != nil {
		logger.Warnf("Failed to write response: %v\n", err)
	}
}

type errorResp struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeErrorResponse(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	resp := errorResp{msg, code}
	respJson, _ := json.Marshal(resp)
	w.WriteHeader(code)
	fmt.Fprintln(w, string(respJson))
}

// Maps the logic package's error kinds onto HTTP statuses.
func writeLogicError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, logic.ErrBadRequest),
		errors.Is(err, logic.ErrStateInvalid),
		errors.Is(err, logic.ErrStateExpired):
		writeErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, logic.ErrUnauthorized):
		writeErrorResponse(w, unauthorizedStr, http.StatusUnauthorized)
	case errors.Is(err, logic.ErrForbidden):
		writeErrorResponse(w, forbiddenStr, http.StatusForbidden)
	case errors.Is(err, logic.ErrNotFound):
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
	case errors.Is(err, logic.ErrStorage):
		writeErrorResponse(w, storageErrorStr, http.StatusInternalServerError)
	default:
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
	}
}

func readBody(logger shared.ILogger, w http.ResponseWriter, r *http.Request) []byte {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warnf("Failed to read request body: %v", err)
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return nil
	}
	return body
}

// Pulls the bearer credential from the Authorization header; empty string
// when the header is missing or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return ""
	}
	return header[len(prefix):]
}
