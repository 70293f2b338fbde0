package models

import "time"

type Event struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Recurrence  string    `json:"recurrence,omitempty"` // free text, not interpreted
	CreatedAt   time.Time `json:"created_at"`
}

type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date"` // RFC3339
	EndDate     string `json:"end_date"`   // RFC3339
	Recurrence  string `json:"recurrence,omitempty"`
}
