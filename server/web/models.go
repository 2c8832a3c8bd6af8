package web

import (
	"time"

	"github.com/campushq/unievents/server/ledger"
)

type User struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Role           ledger.Role          `json:"role"`
	WalletAddress  string               `json:"wallet_address,omitempty"`
	ClubID         string               `json:"club_id,omitempty"`
	Tokens         int                  `json:"tokens"`
	RewardedEvents []string             `json:"rewarded_events,omitempty"`
	Achievements   []ledger.Achievement `json:"achievements,omitempty"`

	TotalSupply     int `json:"total_supply,omitempty"`
	AvailableSupply int `json:"available_supply,omitempty"`
}

func newUser(u ledger.User) User {
	return User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		WalletAddress:   u.WalletAddress,
		ClubID:          u.ClubID,
		Tokens:          u.Tokens,
		RewardedEvents:  u.RewardedEvents,
		Achievements:    u.Achievements,
		TotalSupply:     u.TotalSupply,
		AvailableSupply: u.AvailableSupply,
	}
}

type Term struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Event struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	Date         string             `json:"date"`
	StartTime    string             `json:"start_time,omitempty"`
	EndTime      string             `json:"end_time,omitempty"`
	Venue        string             `json:"venue,omitempty"`
	Capacity     int                `json:"capacity"`
	Tokens       int                `json:"tokens"`
	ClubID       string             `json:"club_id"`
	CreatedBy    string             `json:"created_by"`
	Participants []string           `json:"participants"`
	StarredBy    []string           `json:"starred_by,omitempty"`
	Status       ledger.EventStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}

func newEvent(e ledger.Event, now time.Time) Event {
	return Event{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		Date:         e.Date,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Venue:        e.Venue,
		Capacity:     e.Capacity,
		Tokens:       e.Tokens,
		ClubID:       e.ClubID,
		CreatedBy:    e.CreatedBy,
		Participants: e.Participants,
		StarredBy:    e.StarredBy,
		Status:       e.Status(now),
		CreatedAt:    e.CreatedAt,
	}
}

type Club struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Admins            []string  `json:"admins"`
	TokenBalance      int       `json:"token_balance"`
	TokenAllowance    int       `json:"token_allowance"`
	RequiredApprovals int       `json:"required_approvals"`
	CreatedAt         time.Time `json:"created_at"`
}

func newClub(c ledger.Club) Club {
	return Club{
		ID:                c.ID,
		Name:              c.Name,
		Admins:            c.Admins,
		TokenBalance:      c.TokenBalance,
		TokenAllowance:    c.TokenAllowance,
		RequiredApprovals: c.RequiredApprovals,
		CreatedAt:         c.CreatedAt,
	}
}

type LedgerEntry struct {
	ID        string                 `json:"id"`
	ClubID    string                 `json:"club_id"`
	Type      ledger.LedgerEntryType `json:"type"`
	Amount    int                    `json:"amount"`
	Actor     string                 `json:"by"`
	CreatedAt time.Time              `json:"created_at"`
}

func newLedgerEntry(e ledger.LedgerEntry) LedgerEntry {
	return LedgerEntry{
		ID:        e.ID,
		ClubID:    e.ClubID,
		Type:      e.Type,
		Amount:    e.Amount,
		Actor:     e.Actor,
		CreatedAt: e.CreatedAt,
	}
}

type Proposal struct {
	ID      string   `json:"id"`
	EventID string   `json:"event_id"`
	ClubID  string   `json:"club_id"`
	Users   []string `json:"users"`
	Tokens  int      `json:"tokens"`
	// VoteCounts maps candidate id to their current vote count.
	VoteCounts    map[string]int `json:"vote_counts"`
	ApprovedUsers []string       `json:"approved_users,omitempty"`
	RequiredVotes int            `json:"required_votes"`
	CreatedAt     time.Time      `json:"created_at"`
}

func newProposal(p ledger.Proposal) Proposal {
	counts := make(map[string]int, len(p.Votes))
	for candidate, ballots := range p.Votes {
		counts[candidate] = len(ballots)
	}
	return Proposal{
		ID:            p.ID,
		EventID:       p.EventID,
		ClubID:        p.ClubID,
		Users:         p.Users,
		Tokens:        p.Tokens,
		VoteCounts:    counts,
		ApprovedUsers: p.ApprovedUsers,
		RequiredVotes: p.RequiredVotes,
		CreatedAt:     p.CreatedAt,
	}
}

type Complaint struct {
	ID        string                 `json:"id"`
	AuthorID  string                 `json:"author_id"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body,omitempty"`
	Status    ledger.ComplaintStatus `json:"status"`
	SeenBy    []string               `json:"seen_by,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func newComplaint(c ledger.Complaint) Complaint {
	return Complaint{
		ID:        c.ID,
		AuthorID:  c.AuthorID,
		Title:     c.Title,
		Body:      c.Body,
		Status:    c.Status,
		SeenBy:    c.SeenBy,
		CreatedAt: c.CreatedAt,
	}
}

type VoteResult struct {
	Status    ledger.VoteStatus `json:"status"`
	Approved  bool              `json:"approved"`
	VoteCount int               `json:"vote_count"`
}
