package web

import (
	"net/http"
	"time"

	"github.com/campushq/unievents/internal/xtime"
	"github.com/campushq/unievents/server/ledger"
)

// ListEvents returns all events, optionally narrowed to one semester with
// ?term=spring-2025.
func (h *handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Ledger.ListEvents(r.Context())
	if err != nil {
		h.error(w, r, err)
		return
	}

	if term := r.URL.Query().Get("term"); term != "" {
		start, end := xtime.GetRangeFromTerm(term)
		filtered := events[:0]
		for _, event := range events {
			date, err := time.Parse("2006-01-02", event.Date)
			if err != nil {
				continue
			}
			if !date.Before(start) && !date.After(end) {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	now := time.Now()
	resp := make([]Event, 0, len(events))
	for _, event := range events {
		resp = append(resp, newEvent(event, now))
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListTerms returns the semesters available as event filters.
func (h *handler) ListTerms(w http.ResponseWriter, r *http.Request) {
	terms := xtime.GetTerms()
	resp := make([]Term, 0, len(terms))
	for _, term := range terms {
		resp = append(resp, Term{Name: term.Name, Value: term.Value})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Ledger.GetEvent(r.Context(), r.PathValue("event_id"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newEvent(event, time.Now()))
}

type createEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Venue       string `json:"venue"`
	Capacity    int    `json:"capacity"`
	Tokens      int    `json:"tokens"`
	ClubID      string `json:"club_id"`
}

func (h *handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createEventRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	event, err := h.Ledger.CreateEvent(r.Context(), identity.UserID, ledger.CreateEvent{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Venue:       req.Venue,
		Capacity:    req.Capacity,
		Tokens:      req.Tokens,
		ClubID:      req.ClubID,
	})
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newEvent(event, time.Now()))
}

func (h *handler) Register(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.RegisterForEvent(r.Context(), r.PathValue("event_id"), identity.UserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) Unregister(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.UnregisterFromEvent(r.Context(), r.PathValue("event_id"), identity.UserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) AddStar(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.AddStar(r.Context(), r.PathValue("event_id"), identity.UserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) RemoveStar(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.RemoveStar(r.Context(), r.PathValue("event_id"), identity.UserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.MarkEventCompleted(r.Context(), r.PathValue("event_id"), identity.UserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// GetParticipants resolves the event's participant ids to users.
func (h *handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	event, err := h.Ledger.GetEvent(r.Context(), r.PathValue("event_id"))
	if err != nil {
		h.error(w, r, err)
		return
	}

	users, err := h.Ledger.GetUsersByIDs(r.Context(), event.Participants)
	if err != nil {
		h.error(w, r, err)
		return
	}

	resp := make([]User, 0, len(users))
	for _, user := range users {
		resp = append(resp, newUser(user))
	}
	respondJSON(w, http.StatusOK, resp)
}
