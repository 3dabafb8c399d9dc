package service

import (
	"context"

	"blog-counters/internal/metrics"
	"blog-counters/internal/repository"
)

// LikeState is what a reader sees for one article.
type LikeState struct {
	Likes     int64
	UserLiked bool
}

// LikeCounter keeps the set of users liking an article (likes_users:<slug>)
// and its running total (likes:<slug>).
type LikeCounter struct {
	store   *SafeStore
	metrics *metrics.Registry
}

func NewLikeCounter(s *SafeStore, m *metrics.Registry) *LikeCounter {
	return &LikeCounter{store: s, metrics: m}
}

// State returns the like total of slug and, when userID is not empty, whether
// that user likes it.
func (l *LikeCounter) State(ctx context.Context, slug, userID string) (LikeState, error) {
	if slug == "" {
		return LikeState{}, ErrMissingSlug
	}
	count, liked, ok := l.store.LikeStatus(ctx, repository.LikesKey(slug), repository.LikesUsersKey(slug), userID)
	if !ok {
		return LikeState{}, ErrStoreUnavailable
	}
	return LikeState{Likes: displayLikes(count, liked), UserLiked: liked}, nil
}

// Toggle likes slug on behalf of userID, or takes the like back when the user
// already likes it.
func (l *LikeCounter) Toggle(ctx context.Context, slug, userID string) (LikeState, error) {
	if slug == "" {
		return LikeState{}, ErrMissingSlug
	}
	if userID == "" {
		return LikeState{}, ErrMissingUser
	}
	liked, count, ok := l.store.ToggleMember(ctx, repository.LikesUsersKey(slug), repository.LikesKey(slug), userID)
	if !ok {
		return LikeState{}, ErrStoreUnavailable
	}
	action := "unlike"
	if liked {
		action = "like"
	}
	l.metrics.LikeToggles.WithLabelValues(action).Inc()
	return LikeState{Likes: displayLikes(count, liked), UserLiked: liked}, nil
}

// displayLikes floors a total that drifted away from the set cardinality: never
// negative, and at least 1 while the caller is one of the likers.
func displayLikes(count int64, liked bool) int64 {
	floor := int64(0)
	if liked {
		floor = 1
	}
	if count < floor {
		return floor
	}
	return count
}
