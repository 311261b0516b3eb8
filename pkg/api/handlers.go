package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rubiojr/eventfinder/pkg/storage"
	"github.com/rubiojr/eventfinder/pkg/version"
)

func (s *Server) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))

	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}

	event, err := s.store.Create(r.Context(), storage.EventDraft{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    storage.Category(req.Category),
		Date:        req.Date,
	})
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, event)
}

func (s *Server) HandleSearchEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}

	page, err := s.store.Search(r.Context(), filter)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(page.TotalCount))
	s.writeJSON(w, http.StatusOK, page.Events)
}

func (s *Server) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid id", err.Error())
		return
	}

	event, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid id", err.Error())
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}

	trimField(req.Title)
	trimField(req.Description)
	trimField(req.Location)
	if req.Category != nil {
		*req.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}

	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}

	patch := storage.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
	}
	if req.Category != nil {
		category := storage.Category(*req.Category)
		patch.Category = &category
	}

	event, err := s.store.Update(r.Context(), id, patch)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid id", err.Error())
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeStorageError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := storage.Categories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	})
}

// HandleReady verifies the service can talk to SQLite. Suitable for
// container orchestrator readiness probes.
func (s *Server) HandleReady(w http.ResponseWriter, r *http.Request) {
	var one int
	if err := s.store.DB().QueryRowContext(r.Context(), "SELECT 1").Scan(&one); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Unready", "database unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ok", DB: "ok"})
}

// writeStorageError maps repository errors onto HTTP statuses:
// not-found to 404, invalid input to 400, everything else to 500.
func (s *Server) writeStorageError(w http.ResponseWriter, err error) {
	var invalid *storage.InvalidInputError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Event not found", err.Error())
	case errors.As(err, &invalid):
		s.writeError(w, http.StatusBadRequest, "Invalid input", invalid.Reason)
	default:
		logger.Errorf("storage error: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Storage error", err.Error())
	}
}

// parseSearchFilter builds a storage.SearchFilter from query parameters.
// Bounds, date formats and enum membership are checked by the store;
// only integer syntax is rejected here.
func parseSearchFilter(values map[string][]string) (storage.SearchFilter, error) {
	get := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	filter := storage.SearchFilter{
		Keyword:    get("q"),
		StartsWith: get("starts_with"),
		Location:   get("location"),
		Category:   storage.Category(strings.ToLower(get("category"))),
		Date:       get("date"),
		StartDate:  get("start_date"),
		EndDate:    get("end_date"),
		Sort:       storage.Sort(get("sort")),
	}

	if v := get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("limit must be an integer")
		}
		filter.Limit = limit
	}

	if v := get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("offset must be an integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

func parseEventID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func trimField(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
