package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"blog-counters/internal/service"
)

const (
	cacheViews   = "public, s-maxage=60, stale-while-revalidate=30"
	cacheLikes   = "public, s-maxage=30, stale-while-revalidate=60"
	cacheNone    = "no-cache"
	cacheNoStore = "no-cache, no-store, must-revalidate"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, cacheControl string, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {error, message}. Domain validation errors are the
// caller's fault; everything else is ours.
func writeError(w http.ResponseWriter, err error) {
	status, e := classify(err)
	writeJSON(w, status, cacheNone, errorResponse{Error: e.Code, Message: e.Message})
}

func classify(err error) (int, service.Error) {
	var e service.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, service.NewError("internal", "internal error")
	}
	switch e.Code {
	case service.ErrMissingSlug.Code, service.ErrMissingUser.Code, service.ErrMissingName.Code:
		return http.StatusBadRequest, e
	default:
		return http.StatusInternalServerError, e
	}
}

func methodNotAllowed(w http.ResponseWriter, method, allow string) {
	w.Header().Set("Allow", allow)
	writeJSON(w, http.StatusMethodNotAllowed, cacheNone, errorResponse{
		Error:   "method_not_allowed",
		Message: "Method " + method + " not allowed",
	})
}
