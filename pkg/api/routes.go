package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/events", s.HandleCreateEvent)
	mux.HandleFunc("GET /api/events", s.HandleSearchEvents)
	mux.HandleFunc("GET /api/events/{id}", s.HandleGetEvent)
	mux.HandleFunc("PATCH /api/events/{id}", s.HandleUpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", s.HandleDeleteEvent)
	mux.HandleFunc("GET /api/categories", s.HandleListCategories)
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.HandleFunc("GET /ready", s.HandleReady)
}
