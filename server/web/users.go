package web

import (
	"net/http"
)

func (h *handler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	user, err := h.Ledger.GetUser(r.Context(), identity.UserID)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUser(user))
}

type setWalletRequest struct {
	WalletAddress string `json:"wallet_address"`
}

func (h *handler) SetWallet(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req setWalletRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	if err := h.Ledger.SetWalletAddress(r.Context(), identity.UserID, req.WalletAddress); err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Ledger.GetUser(r.Context(), r.PathValue("user_id"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUser(user))
}
