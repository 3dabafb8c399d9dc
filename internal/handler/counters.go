package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"blog-counters/internal/service"
)

// CountersHandler manages named counters (counter:<name>) at runtime.
type CountersHandler struct {
	counters *service.NamedCounters
}

func NewCountersHandler(c *service.NamedCounters) *CountersHandler {
	return &CountersHandler{counters: c}
}

type counterResponse struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// ServeHTTP dispatches on method: GET reads, POST increments (?op=decr
// decrements), PUT overwrites with an optional expiry.
func (a *CountersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, service.ErrMissingName)
		return
	}
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		n, err := a.counters.Get(ctx, name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cacheNone, counterResponse{Name: name, Value: n})
	case http.MethodPost:
		var decrement bool
		switch op := r.URL.Query().Get("op"); op {
		case "", "incr":
		case "decr":
			decrement = true
		default:
			writeJSON(w, http.StatusBadRequest, cacheNone, errorResponse{Error: "invalid_op", Message: "op must be incr or decr"})
			return
		}
		n, err := a.counters.Add(ctx, name, decrement)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cacheNone, counterResponse{Name: name, Value: n})
	case http.MethodPut:
		var payload struct {
			Value      *int64 `json:"value"`
			TTLSeconds int64  `json:"ttlSeconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Value == nil || payload.TTLSeconds < 0 {
			writeJSON(w, http.StatusBadRequest, cacheNone, errorResponse{Error: "invalid_payload", Message: "expected {\"value\": int, \"ttlSeconds\": int >= 0}"})
			return
		}
		if err := a.counters.Set(ctx, name, *payload.Value, time.Duration(payload.TTLSeconds)*time.Second); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cacheNone, counterResponse{Name: name, Value: *payload.Value})
	default:
		methodNotAllowed(w, r.Method, "GET, POST, PUT")
	}
}
