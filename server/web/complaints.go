package web

import (
	"net/http"
)

func (h *handler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r); !ok {
		return
	}

	complaints, err := h.Ledger.ListComplaints(r.Context())
	if err != nil {
		h.error(w, r, err)
		return
	}

	resp := make([]Complaint, 0, len(complaints))
	for _, complaint := range complaints {
		resp = append(resp, newComplaint(complaint))
	}
	respondJSON(w, http.StatusOK, resp)
}

type fileComplaintRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *handler) FileComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req fileComplaintRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	complaint, err := h.Ledger.FileComplaint(r.Context(), identity.UserID, req.Title, req.Body)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newComplaint(complaint))
}

func (h *handler) MarkComplaintSeen(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.MarkComplaintSeen(r.Context(), r.PathValue("complaint_id"), identity.UserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) CloseComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.CloseComplaint(r.Context(), r.PathValue("complaint_id"), identity.UserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
