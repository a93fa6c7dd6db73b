package wanderlust

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/zeebo/xxh3"
)

// Slugify lowercases a title and collapses whitespace runs into single
// dashes.
func Slugify(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace)
	return strings.Join(fields, "-")
}

// NewItemID derives an id from a title and a creation time. Ids derived
// from identical titles within the same millisecond collide; callers
// are expected to check and bump.
func NewItemID(title string, at time.Time) string {
	return Slugify(title) + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}

// SortedByDate returns the items of a collection ordered by their date
// string descending. The sort is lexical, not calendar-aware; ties
// break on id to keep the order stable.
func SortedByDate(c Collection) []ContentItem {
	items := make([]ContentItem, 0, len(c))
	for _, item := range c {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date > items[j].Date
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// Sum is a content hash of a snapshot, used to skip redundant remote
// pushes and to key the rendered-page cache. json.Marshal emits map
// keys sorted, so the sum is deterministic.
func Sum(data AppData) uint64 {
	b, err := json.Marshal(data)
	if err != nil {
		return 0
	}
	return xxh3.Hash(b)
}

type View int

const (
	ViewLanding View = iota
	ViewTrip
	ViewRecipe
	ViewRecipeList
	ViewAdmin
)

// ParseViewToken maps a navigation token to a view and an optional item
// id. Unrecognized tokens fall back to the landing view.
func ParseViewToken(token string) (View, string) {
	token = strings.Trim(token, "/")

	switch token {
	case "", "home":
		return ViewLanding, ""
	case "recipes":
		return ViewRecipeList, ""
	case "admin":
		return ViewAdmin, ""
	}

	if id, ok := strings.CutPrefix(token, "trip/"); ok && id != "" {
		return ViewTrip, id
	}
	if id, ok := strings.CutPrefix(token, "recipe/"); ok && id != "" {
		return ViewRecipe, id
	}

	return ViewLanding, ""
}

// ComposeViewToken is the inverse of ParseViewToken for views that
// reference an item.
func ComposeViewToken(view View, id string) string {
	switch view {
	case ViewTrip:
		return "trip/" + id
	case ViewRecipe:
		return "recipe/" + id
	case ViewRecipeList:
		return "recipes"
	case ViewAdmin:
		return "admin"
	default:
		return ""
	}
}
