package repository

import "strings"

// Kind tags the counter a key belongs to. Kinds never contain ':' so the first
// ':' in a key always separates the kind from the identifier.
type Kind string

const (
	KindViews      Kind = "views"
	KindLikes      Kind = "likes"
	KindLikesUsers Kind = "likes_users"
	KindCounter    Kind = "counter"
)

// Key returns "<kind>:<id>". The identifier is used verbatim; callers pass a
// canonical slug. It panics on a kind containing ':' since such a key could
// collide with another (kind, id) pair.
func Key(kind Kind, id string) string {
	if strings.Contains(string(kind), ":") {
		panic("repository: key kind must not contain ':': " + string(kind))
	}
	return string(kind) + ":" + id
}

// ViewsKey holds the visit count of an article.
func ViewsKey(slug string) string { return Key(KindViews, slug) }

// LikesKey holds the running like total of an article.
func LikesKey(slug string) string { return Key(KindLikes, slug) }

// LikesUsersKey holds the set of users currently liking an article.
func LikesUsersKey(slug string) string { return Key(KindLikesUsers, slug) }

// CounterKey holds an arbitrary named counter.
func CounterKey(name string) string { return Key(KindCounter, name) }

// SplitKey reverses Key.
func SplitKey(key string) (Kind, string, bool) {
	kind, id, ok := strings.Cut(key, ":")
	if !ok {
		return "", "", false
	}
	return Kind(kind), id, true
}
