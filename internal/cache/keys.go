package cache

import (
	"strconv"
	"strings"
)

// Resource family names. Each family owns one registry cache instance, and
// every key built here starts with its family so invalidation can filter by
// prefix without touching other families.
const (
	FamilyForum      = "forum"
	FamilyPost       = "post"
	FamilyTutorial   = "tutorial"
	FamilySession    = "session"
	FamilyResponse   = "response"
	FamilyUser       = "user"
	FamilyAssessment = "assessment"
	FamilyUserView   = "userview"
)

// keySep separates key components. Free-form components (search text, ids,
// cursors) are escaped so a value containing the separator can never collide
// with a component boundary.
const keySep = "|"

// escapeComponent makes a free-form string safe to embed between separators.
func escapeComponent(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, keySep, `\`+keySep)
}

// NormalizeSearch canonicalizes user-entered search text so that queries
// differing only in case or whitespace hit the same cache slot.
func NormalizeSearch(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ListingKey builds the cache key for an offset-paginated listing query.
// The page size is a key component: the same page number with a different
// size is a different result set. Listings that are not user-scoped pass an
// empty userID.
func ListingKey(family, sortField, direction string, page, pageSize int, search, userID string) string {
	return strings.Join([]string{
		family,
		"list",
		sortField,
		direction,
		"p" + strconv.Itoa(page),
		"n" + strconv.Itoa(pageSize),
		escapeComponent(NormalizeSearch(search)),
		escapeComponent(userID),
	}, keySep)
}

// CursorListingKey builds the cache key for a cursor-paginated listing query.
// Cursor- and offset-based pagination are mutually exclusive per resource;
// the "c"/"p" discriminator keeps the two keyspaces disjoint regardless.
// The limit is a key component for the same reason the page size is.
func CursorListingKey(family, sortField, direction, cursor string, limit int, search, userID string) string {
	return strings.Join([]string{
		family,
		"list",
		sortField,
		direction,
		"c" + escapeComponent(cursor),
		"n" + strconv.Itoa(limit),
		escapeComponent(NormalizeSearch(search)),
		escapeComponent(userID),
	}, keySep)
}

// DetailKey builds the cache key for a single item.
func DetailKey(family, id string) string {
	return strings.Join([]string{family, "detail", escapeComponent(id)}, keySep)
}

// UserViewKey builds the cache key for a per-user derived view, e.g.
// "sessions", "feedback-history" or "recommendations". The view discriminator
// keeps different derived views of the same user from colliding.
func UserViewKey(userID, view string) string {
	return strings.Join([]string{FamilyUserView, escapeComponent(userID), escapeComponent(view)}, keySep)
}

// ListingPrefix returns the shared prefix of every listing key for a family,
// for use with DeletePrefix.
func ListingPrefix(family string) string {
	return family + keySep + "list" + keySep
}

// UserViewPrefix returns the shared prefix of every derived-view key for one
// user, for use with DeletePrefix.
func UserViewPrefix(userID string) string {
	return FamilyUserView + keySep + escapeComponent(userID) + keySep
}
