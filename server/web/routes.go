package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campushq/unievents/server"
)

func Routes(srv *server.Server) http.Handler {
	h := &handler{
		Server: srv,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST   /api/sessions", h.CreateSession)
	mux.HandleFunc("DELETE /api/sessions", h.DeleteSession)

	mux.HandleFunc("GET /api/users/me", h.GetMe)
	mux.HandleFunc("PUT /api/users/me/wallet", h.SetWallet)
	mux.HandleFunc("GET /api/users/{user_id}", h.GetUser)

	mux.HandleFunc("GET /api/terms", h.ListTerms)

	mux.HandleFunc("GET  /api/events", h.ListEvents)
	mux.HandleFunc("POST /api/events", h.CreateEvent)
	mux.HandleFunc("GET  /api/events/subscribe", h.SubscribeEvents)
	mux.HandleFunc("GET  /api/events/{event_id}", h.GetEvent)
	mux.HandleFunc("POST   /api/events/{event_id}/register", h.Register)
	mux.HandleFunc("DELETE /api/events/{event_id}/register", h.Unregister)
	mux.HandleFunc("POST   /api/events/{event_id}/star", h.AddStar)
	mux.HandleFunc("DELETE /api/events/{event_id}/star", h.RemoveStar)
	mux.HandleFunc("POST   /api/events/{event_id}/complete", h.MarkCompleted)
	mux.HandleFunc("GET    /api/events/{event_id}/participants", h.GetParticipants)

	mux.HandleFunc("GET  /api/clubs", h.ListClubs)
	mux.HandleFunc("POST /api/clubs", h.CreateClub)
	mux.HandleFunc("GET    /api/clubs/{club_id}", h.GetClub)
	mux.HandleFunc("DELETE /api/clubs/{club_id}", h.DeleteClub)
	mux.HandleFunc("GET  /api/clubs/{club_id}/ledger", h.ClubLedger)
	mux.HandleFunc("POST /api/clubs/{club_id}/allocate", h.Allocate)
	mux.HandleFunc("PUT  /api/clubs/{club_id}/allowance", h.SetAllowance)
	mux.HandleFunc("PUT  /api/clubs/{club_id}/required-approvals", h.SetRequiredApprovals)
	mux.HandleFunc("POST   /api/clubs/{club_id}/admins", h.AddAdmin)
	mux.HandleFunc("DELETE /api/clubs/{club_id}/admins/{user_id}", h.RemoveAdmin)

	mux.HandleFunc("POST /api/head/transfer", h.TransferHeadRole)

	mux.HandleFunc("GET  /api/proposals", h.ListProposals)
	mux.HandleFunc("POST /api/proposals", h.CreateProposal)
	mux.HandleFunc("GET  /api/proposals/subscribe", h.SubscribeProposals)
	mux.HandleFunc("GET  /api/proposals/{proposal_id}", h.GetProposal)
	mux.HandleFunc("POST /api/proposals/{proposal_id}/votes", h.CastVote)

	mux.HandleFunc("GET  /api/complaints", h.ListComplaints)
	mux.HandleFunc("POST /api/complaints", h.FileComplaint)
	mux.HandleFunc("POST /api/complaints/{complaint_id}/seen", h.MarkComplaintSeen)
	mux.HandleFunc("POST /api/complaints/{complaint_id}/close", h.CloseComplaint)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("/", h.NotFound)

	return h.rateLimit(h.auth(mux))
}

func (h *handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
