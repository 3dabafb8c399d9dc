package handler

import (
	"errors"
	"fmt"
	"net/http"

	"blog-counters/internal/middleware"
	"blog-counters/internal/service"
)

type likesResponse struct {
	Error     string `json:"error,omitempty"`
	Slug      string `json:"slug"`
	Likes     int64  `json:"likes"`
	UserLiked bool   `json:"userLiked"`
	Message   string `json:"message"`
}

// LikesHandler serves /likes/{slug}: GET reads the total and the caller's
// like, POST toggles the caller's like.
type LikesHandler struct {
	likes *service.LikeCounter
}

func NewLikesHandler(l *service.LikeCounter) *LikesHandler {
	return &LikesHandler{likes: l}
}

func (h *LikesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		writeError(w, service.ErrMissingSlug)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, slug)
	case http.MethodPost:
		h.toggle(w, r, slug)
	default:
		methodNotAllowed(w, r.Method, "GET, POST")
	}
}

// userID prefers the authenticated subject over the userId query parameter.
func userID(r *http.Request) string {
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		return id.UserID
	}
	return r.URL.Query().Get("userId")
}

func (h *LikesHandler) get(w http.ResponseWriter, r *http.Request, slug string) {
	msg := messagesFor(r)
	st, err := h.likes.State(r.Context(), slug, userID(r))
	if err != nil {
		h.fail(w, slug, msg, err)
		return
	}
	text := fmt.Sprintf(msg.likesTotal, st.Likes)
	if st.UserLiked {
		text = fmt.Sprintf(msg.likesTotalLiked, st.Likes)
	}
	w.Header().Set("Vary", "Accept-Language")
	writeJSON(w, http.StatusOK, cacheLikes, likesResponse{Slug: slug, Likes: st.Likes, UserLiked: st.UserLiked, Message: text})
}

func (h *LikesHandler) toggle(w http.ResponseWriter, r *http.Request, slug string) {
	msg := messagesFor(r)
	st, err := h.likes.Toggle(r.Context(), slug, userID(r))
	if err != nil {
		h.fail(w, slug, msg, err)
		return
	}
	text := fmt.Sprintf(msg.likesUnliked, st.Likes)
	if st.UserLiked {
		text = fmt.Sprintf(msg.likesLiked, st.Likes)
	}
	writeJSON(w, http.StatusOK, cacheNone, likesResponse{Slug: slug, Likes: st.Likes, UserLiked: st.UserLiked, Message: text})
}

func (h *LikesHandler) fail(w http.ResponseWriter, slug string, msg messages, err error) {
	if errors.Is(err, service.ErrStoreUnavailable) {
		writeJSON(w, http.StatusInternalServerError, cacheNone, likesResponse{
			Error:   service.ErrStoreUnavailable.Code,
			Slug:    slug,
			Message: msg.likesUnavailable,
		})
		return
	}
	writeError(w, err)
}
