package storage

import (
	"errors"
	"fmt"
)

// Category is one of the fixed event categories. The set is static and
// not derived from the store.
type Category string

const (
	CategoryMusic     Category = "music"
	CategoryTech      Category = "tech"
	CategorySports    Category = "sports"
	CategoryArts      Category = "arts"
	CategoryBusiness  Category = "business"
	CategoryCommunity Category = "community"
)

// Categories returns all supported categories in declaration order.
func Categories() []Category {
	return []Category{
		CategoryMusic,
		CategoryTech,
		CategorySports,
		CategoryArts,
		CategoryBusiness,
		CategoryCommunity,
	}
}

// Valid reports whether c is a member of the category enumeration.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Sort selects the ordering of search results. Every sort breaks ties by
// id so pagination is stable across calls.
type Sort string

const (
	SortDateAsc     Sort = "date_asc"
	SortDateDesc    Sort = "date_desc"
	SortCreatedDesc Sort = "created_desc"
)

// Valid reports whether s is a supported sort order.
func (s Sort) Valid() bool {
	switch s {
	case SortDateAsc, SortDateDesc, SortCreatedDesc:
		return true
	}
	return false
}

// Event is a persisted event row. Date is a calendar date (YYYY-MM-DD),
// CreatedAt an RFC 3339 UTC timestamp; both are assigned authoritative
// values by the store and returned verbatim.
type Event struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location"`
	Category    Category `json:"category"`
	Date        string   `json:"date"`
	CreatedAt   string   `json:"created_at"`
}

// EventDraft is the payload for creating an event. ID and CreatedAt are
// assigned by the store.
type EventDraft struct {
	Title       string
	Description string
	Location    string
	Category    Category
	Date        string
}

// EventPatch is a partial update; nil fields are left untouched.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	Category    *Category
	Date        *string
}

// SearchFilter describes one search call. Zero-valued fields impose no
// constraint. Limit 0 means "use the default"; explicit out-of-range
// values are rejected, not clamped.
type SearchFilter struct {
	Keyword    string
	StartsWith string
	Location   string
	Category   Category
	Date       string
	StartDate  string
	EndDate    string
	Limit      int
	Offset     int
	Sort       Sort
}

// DefaultLimit and MaxLimit bound the search window.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ResultPage is one window of search results plus the count of all rows
// matching the filter with the window removed.
type ResultPage struct {
	Events     []Event
	TotalCount int
}

// ErrNotFound is returned when an operation targets an id absent from
// the store.
var ErrNotFound = errors.New("event not found")

// InvalidInputError reports a filter or payload the store refuses to
// execute (out-of-range window, malformed date, unknown enum value).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}
