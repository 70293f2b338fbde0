package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"annah-server/middleware"
	"annah-server/models"
	"annah-server/store"
)

type EventHandler struct {
	store *store.Store
}

func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	events, err := h.store.GetEventsForUser(userID)
	if err != nil {
		http.Error(w, "Failed to fetch events", http.StatusInternalServerError)
		return
	}

	// Optional calendar day lookup, e.g. /api/events?date=2026-08-29 keeps
	// events overlapping that day.
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		dayEnd := day.Add(24 * time.Hour)

		filtered := make([]models.Event, 0, len(events))
		for _, e := range events {
			if e.StartDate.Before(dayEnd) && e.EndDate.After(day) {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if events == nil {
		events = []models.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		http.Error(w, "Invalid start_date format: "+err.Error(), http.StatusBadRequest)
		return
	}

	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		http.Error(w, "Invalid end_date format: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.store.CreateEvent(userID, req.Title, req.Description, startDate, endDate, req.Recurrence)
	if err != nil {
		http.Error(w, "Failed to create event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}
