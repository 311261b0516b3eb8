package api

import "time"

// CreateEventRequest is the POST /api/events payload. Validation here is
// the request edge; the storage layer re-checks only what its
// constraints cover.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Location    string `json:"location" validate:"required,max=200"`
	Category    string `json:"category" validate:"required,oneof=music tech sports arts business community"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// UpdateEventRequest is the PATCH /api/events/{id} payload. Absent
// fields leave the stored value untouched.
type UpdateEventRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Location    *string `json:"location" validate:"omitempty,min=1,max=200"`
	Category    *string `json:"category" validate:"omitempty,oneof=music tech sports arts business community"`
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ErrorResponse is the JSON body for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ReadyResponse is returned by GET /ready once a trivial query against
// the store succeeds.
type ReadyResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}
