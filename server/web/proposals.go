package web

import (
	"net/http"

	"github.com/campushq/unievents/server/ledger"
)

func (h *handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.Ledger.ListProposals(r.Context(), r.URL.Query().Get("club_id"))
	if err != nil {
		h.error(w, r, err)
		return
	}

	resp := make([]Proposal, 0, len(proposals))
	for _, proposal := range proposals {
		resp = append(resp, newProposal(proposal))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *handler) GetProposal(w http.ResponseWriter, r *http.Request) {
	proposal, err := h.Ledger.GetProposal(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProposal(proposal))
}

type createProposalRequest struct {
	EventID       string   `json:"event_id"`
	ClubID        string   `json:"club_id"`
	Users         []string `json:"users"`
	TokensPerUser int      `json:"tokens_per_user"`
	RequiredVotes int      `json:"required_votes"`
}

func (h *handler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createProposalRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	proposal, err := h.Ledger.CreateProposal(r.Context(), identity.UserID, ledger.CreateProposal{
		EventID:       req.EventID,
		ClubID:        req.ClubID,
		Users:         req.Users,
		TokensPerUser: req.TokensPerUser,
		RequiredVotes: req.RequiredVotes,
	})
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newProposal(proposal))
}

type castVoteRequest struct {
	UserID string `json:"user_id"`
}

func (h *handler) CastVote(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req castVoteRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	result, err := h.Ledger.CastVote(r.Context(), r.PathValue("proposal_id"), req.UserID, identity.UserID)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, VoteResult{
		Status:    result.Status,
		Approved:  result.Approved,
		VoteCount: result.VoteCount,
	})
}
