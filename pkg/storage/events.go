package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent maps one fixed-column row (id, title, description, location,
// category, date, created_at) into an Event. A missing or mistyped
// column surfaces as a mapping error instead of being coerced.
func scanEvent(row rowScanner) (Event, error) {
	var ev Event
	var description sql.NullString

	err := row.Scan(&ev.ID, &ev.Title, &description, &ev.Location, &ev.Category, &ev.Date, &ev.CreatedAt)
	if err != nil {
		return Event{}, err
	}

	if description.Valid {
		ev.Description = description.String
	}
	return ev, nil
}

const eventColumns = "id, title, description, location, category, date, created_at"

// Create inserts a new event and returns the persisted row with the
// store-assigned id and created_at. The draft is expected to be
// validated upstream; the checks here are the storage-level last line
// of defense.
func (s *Storage) Create(ctx context.Context, draft EventDraft) (*Event, error) {
	if draft.Title == "" || draft.Location == "" || draft.Date == "" {
		return nil, invalidInput("title, location and date are required")
	}
	if !draft.Category.Valid() {
		return nil, invalidInput("unknown category %q", draft.Category)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (title, description, location, category, date)
		VALUES (?, ?, ?, ?, ?)
	`, draft.Title, nullable(draft.Description), draft.Location, string(draft.Category), draft.Date)
	if err != nil {
		return nil, fmt.Errorf("inserting event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns the event with the given id, or ErrNotFound.
func (s *Storage) GetByID(ctx context.Context, id int64) (*Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event %d: %w", id, err)
	}
	return &ev, nil
}

// Update applies the non-nil fields of patch to the event with the given
// id and returns the updated row. Returns ErrNotFound when the id does
// not exist; a patch with no fields set is a plain read.
func (s *Storage) Update(ctx context.Context, id int64, patch EventPatch) (*Event, error) {
	record := goqu.Record{}
	if patch.Title != nil {
		record["title"] = *patch.Title
	}
	if patch.Description != nil {
		record["description"] = nullable(*patch.Description)
	}
	if patch.Location != nil {
		record["location"] = *patch.Location
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return nil, invalidInput("unknown category %q", *patch.Category)
		}
		record["category"] = string(*patch.Category)
	}
	if patch.Date != nil {
		record["date"] = *patch.Date
	}

	if len(record) == 0 {
		return s.GetByID(ctx, id)
	}

	query, args, err := dialect.Update("events").
		Set(record).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating event %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// Delete removes the event with the given id. Returns ErrNotFound when
// the id does not exist; deleting the same id twice fails the same way.
func (s *Storage) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns the window of events selected by filter together with
// the total number of matching rows ignoring the window. Ordering is
// deterministic: every sort key is tie-broken by id, so consecutive
// pages never duplicate or drop rows while the data is unchanged.
func (s *Storage) Search(ctx context.Context, filter SearchFilter) (*ResultPage, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	q, err := s.buildSearchQuery(filter)
	if err != nil {
		return nil, err
	}

	logger.Debugf("search full-text=%v page=%s", q.usedFullText, q.pageSQL)

	var total int
	if err := s.db.QueryRowContext(ctx, q.countSQL, q.countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, q.pageSQL, q.pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	events := []Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}

	return &ResultPage{Events: events, TotalCount: total}, nil
}

// nullable stores empty strings as NULL so the optional description
// column stays distinguishable from an empty one.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
