// Package handlers holds the HTTP handlers for the /v1 surface. Every
// handler derives the caller from the verified token context; client
// bodies never name the acting user.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"burrow/pkg/apperr"
	"burrow/pkg/auth"
	"burrow/pkg/utils"
)

// decode parses a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid json body")
	}
	return nil
}

// caller returns the authenticated user id or fails the request.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}

// limitParam parses ?limit=<n>; absent or invalid means no limit.
func limitParam(r *http.Request) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
