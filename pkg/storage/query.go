package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

var dialect = goqu.Dialect("sqlite3")

var wordPattern = regexp.MustCompile(`\w+`)

// searchQuery is a compiled filter: the windowed page statement and the
// count statement, both derived from the same predicate so they can
// never diverge.
type searchQuery struct {
	pageSQL   string
	pageArgs  []interface{}
	countSQL  string
	countArgs []interface{}

	// usedFullText records which keyword strategy was chosen. Diagnostic
	// only; callers get the same contract either way.
	usedFullText bool
}

// normalizeFilter validates f and fills in defaults. Out-of-range limit
// and offset are rejected rather than clamped so callers can correct
// them.
func normalizeFilter(f SearchFilter) (SearchFilter, error) {
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		return f, invalidInput("limit must be between 1 and %d, got %d", MaxLimit, f.Limit)
	}
	if f.Offset < 0 {
		return f, invalidInput("offset must not be negative, got %d", f.Offset)
	}

	if f.Sort == "" {
		f.Sort = SortDateAsc
	}
	if !f.Sort.Valid() {
		return f, invalidInput("unknown sort order %q", f.Sort)
	}

	if f.Category != "" && !f.Category.Valid() {
		return f, invalidInput("unknown category %q", f.Category)
	}

	for _, d := range []struct {
		name  string
		value string
	}{
		{"date", f.Date},
		{"start_date", f.StartDate},
		{"end_date", f.EndDate},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d.value); err != nil {
			return f, invalidInput("%s must be a YYYY-MM-DD date, got %q", d.name, d.value)
		}
	}

	if f.StartsWith != "" {
		r := []rune(f.StartsWith)
		if len(r) != 1 || !((r[0] >= 'a' && r[0] <= 'z') || (r[0] >= 'A' && r[0] <= 'Z')) {
			return f, invalidInput("starts_with must be a single letter, got %q", f.StartsWith)
		}
	}

	return f, nil
}

// buildSearchQuery compiles a normalized filter into SQL. All supplied
// predicates are ANDed; absent fields impose no constraint.
//
// Keyword matching picks the most capable available strategy: a
// tokenized match against the FTS5 index joined back to the base table
// by rowid, or a case-insensitive substring scan over title and
// description when FTS5 is unavailable. Location always uses substring
// matching; short proper nouns are served poorly by text-search
// tokenizers.
func (s *Storage) buildSearchQuery(f SearchFilter) (*searchQuery, error) {
	base := dialect.From("events")
	var conds []goqu.Expression
	usedFullText := false

	// Whitespace-only keyword imposes no constraint.
	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		ftsQuery := toFTSQuery(keyword)
		if s.fullText && ftsQuery != "" {
			base = base.InnerJoin(
				goqu.T("events_fts"),
				goqu.On(goqu.L("events_fts.rowid = events.id")),
			)
			conds = append(conds, goqu.L("events_fts MATCH ?", ftsQuery))
			usedFullText = true
		} else {
			pattern := "%" + strings.ToLower(keyword) + "%"
			conds = append(conds, goqu.Or(
				goqu.L("LOWER(events.title) LIKE ?", pattern),
				goqu.L("LOWER(events.description) LIKE ?", pattern),
			))
		}
	}

	if f.StartsWith != "" {
		conds = append(conds, goqu.L("LOWER(events.title) LIKE ?", strings.ToLower(f.StartsWith)+"%"))
	}

	if f.Location != "" {
		conds = append(conds, goqu.L("LOWER(events.location) LIKE ?", "%"+strings.ToLower(f.Location)+"%"))
	}

	if f.Category != "" {
		conds = append(conds, goqu.L("LOWER(events.category) = ?", string(f.Category)))
	}

	// Exact date wins over a range when both are supplied; the bounds of
	// a range are independently optional.
	if f.Date != "" {
		conds = append(conds, goqu.I("events.date").Eq(f.Date))
	} else {
		if f.StartDate != "" {
			conds = append(conds, goqu.I("events.date").Gte(f.StartDate))
		}
		if f.EndDate != "" {
			conds = append(conds, goqu.I("events.date").Lte(f.EndDate))
		}
	}

	if len(conds) > 0 {
		base = base.Where(conds...)
	}

	page := base.Select(
		goqu.I("events.id"),
		goqu.I("events.title"),
		goqu.I("events.description"),
		goqu.I("events.location"),
		goqu.I("events.category"),
		goqu.I("events.date"),
		goqu.I("events.created_at"),
	)

	switch f.Sort {
	case SortDateDesc:
		page = page.Order(goqu.I("events.date").Desc(), goqu.I("events.id").Desc())
	case SortCreatedDesc:
		page = page.Order(goqu.I("events.created_at").Desc(), goqu.I("events.id").Desc())
	default:
		page = page.Order(goqu.I("events.date").Asc(), goqu.I("events.id").Asc())
	}

	page = page.Limit(uint(f.Limit)).Offset(uint(f.Offset))

	pageSQL, pageArgs, err := page.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building page query: %w", err)
	}

	// Same predicate, window stripped: the count reflects the filter,
	// not the page.
	countSQL, countArgs, err := base.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building count query: %w", err)
	}

	return &searchQuery{
		pageSQL:      pageSQL,
		pageArgs:     pageArgs,
		countSQL:     countSQL,
		countArgs:    countArgs,
		usedFullText: usedFullText,
	}, nil
}

// toFTSQuery converts free text into a simple FTS5 query: lowercased
// word tokens with prefix matching, ANDed together. "lagos tech"
// becomes "lagos* AND tech*".
func toFTSQuery(text string) string {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return ""
	}
	for i, token := range tokens {
		tokens[i] = token + "*"
	}
	return strings.Join(tokens, " AND ")
}
