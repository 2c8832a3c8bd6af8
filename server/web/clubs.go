package web

import (
	"net/http"
	"strconv"
)

func (h *handler) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.Ledger.ListClubs(r.Context())
	if err != nil {
		h.error(w, r, err)
		return
	}

	resp := make([]Club, 0, len(clubs))
	for _, club := range clubs {
		resp = append(resp, newClub(club))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *handler) GetClub(w http.ResponseWriter, r *http.Request) {
	club, err := h.Ledger.GetClub(r.Context(), r.PathValue("club_id"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newClub(club))
}

type createClubRequest struct {
	Name string `json:"name"`
}

func (h *handler) CreateClub(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createClubRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	club, err := h.Ledger.CreateClub(r.Context(), identity.UserID, req.Name)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newClub(club))
}

func (h *handler) DeleteClub(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.DeleteClub(r.Context(), identity.UserID, r.PathValue("club_id")); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) ClubLedger(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.Ledger.ClubLedger(r.Context(), r.PathValue("club_id"), limit)
	if err != nil {
		h.error(w, r, err)
		return
	}

	resp := make([]LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, newLedgerEntry(entry))
	}
	respondJSON(w, http.StatusOK, resp)
}

type amountRequest struct {
	Amount int `json:"amount"`
}

func (h *handler) Allocate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	if err := h.Ledger.Allocate(r.Context(), identity.UserID, r.PathValue("club_id"), req.Amount); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) SetAllowance(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	if err := h.Ledger.SetAllowance(r.Context(), identity.UserID, r.PathValue("club_id"), req.Amount); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type requiredApprovalsRequest struct {
	RequiredApprovals int `json:"required_approvals"`
}

func (h *handler) SetRequiredApprovals(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req requiredApprovalsRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	if err := h.Ledger.SetRequiredApprovals(r.Context(), identity.UserID, r.PathValue("club_id"), req.RequiredApprovals); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type adminRequest struct {
	UserID string `json:"user_id"`
}

func (h *handler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req adminRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	if err := h.Ledger.AddAdmin(r.Context(), identity.UserID, r.PathValue("club_id"), req.UserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.RemoveAdmin(r.Context(), identity.UserID, r.PathValue("club_id"), r.PathValue("user_id")); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type transferHeadRequest struct {
	ToUserID string `json:"to_user_id"`
}

func (h *handler) TransferHeadRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req transferHeadRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	if err := h.Ledger.TransferHeadRole(r.Context(), identity.UserID, req.ToUserID); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
