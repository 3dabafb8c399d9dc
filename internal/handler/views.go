package handler

import (
	"errors"
	"fmt"
	"net/http"

	"blog-counters/internal/service"
)

type viewsResponse struct {
	Error   string `json:"error,omitempty"`
	Slug    string `json:"slug"`
	Views   int64  `json:"views"`
	Message string `json:"message"`
}

// ViewsHandler serves /views/{slug}: GET reads the count, POST records a view.
type ViewsHandler struct {
	views    *service.ViewCounter
	recorder *service.Recorder
}

func NewViewsHandler(v *service.ViewCounter, rec *service.Recorder) *ViewsHandler {
	return &ViewsHandler{views: v, recorder: rec}
}

func (h *ViewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		writeError(w, service.ErrMissingSlug)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, slug)
	case http.MethodPost:
		h.record(w, r, slug)
	default:
		methodNotAllowed(w, r.Method, "GET, POST")
	}
}

func (h *ViewsHandler) get(w http.ResponseWriter, r *http.Request, slug string) {
	msg := messagesFor(r)
	w.Header().Set("Vary", "Accept-Language")
	n, err := h.views.Views(r.Context(), slug)
	if errors.Is(err, service.ErrStoreUnavailable) {
		// page rendering must not break on a store outage: degrade, uncached
		writeJSON(w, http.StatusOK, cacheNone, viewsResponse{
			Error:   service.ErrStoreUnavailable.Code,
			Slug:    slug,
			Message: msg.viewsUnavailable,
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cacheViews, viewsResponse{Slug: slug, Views: n, Message: msg.views(n)})
}

func (h *ViewsHandler) record(w http.ResponseWriter, r *http.Request, slug string) {
	msg := messagesFor(r)
	n, err := h.views.Record(r.Context(), slug)
	if errors.Is(err, service.ErrStoreUnavailable) {
		writeJSON(w, http.StatusInternalServerError, cacheNone, viewsResponse{
			Error:   service.ErrStoreUnavailable.Code,
			Slug:    slug,
			Message: msg.viewsUnavailable,
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cacheNone, viewsResponse{Slug: slug, Views: n, Message: fmt.Sprintf(msg.viewsRecorded, n)})
}

type beaconResponse struct {
	Slug    string `json:"slug"`
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
}

// Beacon serves POST /views/{slug}/beacon: the view is recorded in the
// background and the caller gets 202 without waiting for the store.
func (h *ViewsHandler) Beacon(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		writeError(w, service.ErrMissingSlug)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r.Method, "POST")
		return
	}
	msg := messagesFor(r)
	if !h.recorder.Enqueue(slug) {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, cacheNone, beaconResponse{Slug: slug, Message: msg.beaconDropped})
		return
	}
	writeJSON(w, http.StatusAccepted, cacheNone, beaconResponse{Slug: slug, Queued: true, Message: msg.beaconQueued})
}
