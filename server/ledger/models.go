package ledger

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/campushq/unievents/server/store"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleClub    Role = "club"
	RoleHead    Role = "head"
)

// NormalizeRole maps a loosely-typed stored role onto the closed enumeration.
// Anything unknown degrades to student.
func NormalizeRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleClub:
		return RoleClub
	case RoleHead:
		return RoleHead
	default:
		return RoleStudent
	}
}

type Achievement struct {
	EventID string    `json:"eventId"`
	Tokens  int       `json:"tokens"`
	Date    time.Time `json:"date"`
}

type User struct {
	ID             string        `json:"-"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Role           Role          `json:"role"`
	WalletAddress  string        `json:"walletAddress,omitempty"`
	ClubID         string        `json:"clubId,omitempty"`
	Tokens         int           `json:"tokens"`
	RewardedEvents []string      `json:"rewardedEvents,omitempty"`
	Achievements   []Achievement `json:"achievements,omitempty"`

	// Head supply pool, only meaningful on the head user's document.
	TotalSupply     int `json:"totalSupply,omitempty"`
	AvailableSupply int `json:"availableSupply,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

type Event struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Date is the event day in "2006-01-02" form. Start and end times are
	// informational "15:04" strings.
	Date      string `json:"date"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Venue     string `json:"venue,omitempty"`
	// Capacity 0 means unlimited.
	Capacity     int       `json:"capacity"`
	Tokens       int       `json:"tokens"`
	ClubID       string    `json:"clubId"`
	CreatedBy    string    `json:"createdBy"`
	Participants []string  `json:"participants"`
	StarredBy    []string  `json:"starredBy,omitempty"`
	Completed    bool      `json:"completed,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Status derives the lifecycle state from the event date. The stored
// completed flag is the only authoritative piece of state and only ever
// moves forward; everything else is recomputed so it cannot drift.
func (e Event) Status(now time.Time) EventStatus {
	if e.Completed {
		return EventCompleted
	}
	date, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return EventUpcoming
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case date.Before(today):
		return EventCompleted
	case date.After(today):
		return EventUpcoming
	default:
		return EventOngoing
	}
}

func (e Event) Unlimited() bool {
	return e.Capacity <= 0
}

type Proposal struct {
	ID      string   `json:"-"`
	EventID string   `json:"eventId"`
	ClubID  string   `json:"clubId"`
	Users   []string `json:"users"`
	// Tokens is the per-user amount, snapshotted from the event at creation.
	Tokens int `json:"tokens"`
	// Votes maps candidate id -> admin id -> true.
	Votes         map[string]map[string]bool `json:"votes"`
	ApprovedUsers []string                   `json:"approvedUsers,omitempty"`
	RequiredVotes int                        `json:"requiredVotes"`
	CreatedAt     time.Time                  `json:"createdAt"`
}

// MaxClubAdmins caps how many admins a club may have.
const MaxClubAdmins = 3

type Club struct {
	ID                string    `json:"-"`
	Name              string    `json:"name"`
	Admins            []string  `json:"admins"`
	TokenBalance      int       `json:"tokenBalance"`
	TokenAllowance    int       `json:"tokenAllowance"`
	RequiredApprovals int       `json:"requiredApprovals"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (c Club) IsAdmin(userID string) bool {
	return slices.Contains(c.Admins, userID)
}

type LedgerEntryType string

const (
	LedgerAllocation LedgerEntryType = "allocation"
	LedgerSpend      LedgerEntryType = "spend"
)

// LedgerEntry is an immutable record of a club treasury movement.
type LedgerEntry struct {
	ID        string          `json:"-"`
	ClubID    string          `json:"clubId"`
	Type      LedgerEntryType `json:"type"`
	Amount    int             `json:"amount"`
	Actor     string          `json:"by"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ComplaintStatus string

const (
	ComplaintOpen   ComplaintStatus = "open"
	ComplaintClosed ComplaintStatus = "closed"
)

type Complaint struct {
	ID        string          `json:"-"`
	AuthorID  string          `json:"authorId"`
	Title     string          `json:"title"`
	Body      string          `json:"body,omitempty"`
	Status    ComplaintStatus `json:"status"`
	SeenBy    []string        `json:"seenBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// The store enforces no schema, so every document is validated here when it
// crosses the read boundary.

func decodeUser(doc store.Doc) (User, error) {
	var u User
	if err := json.Unmarshal(doc.Data, &u); err != nil {
		return User{}, fmt.Errorf("malformed user document %s: %w", doc.ID, ErrInvalidArgument)
	}
	u.ID = doc.ID
	u.Role = NormalizeRole(string(u.Role))
	if u.Tokens < 0 || u.TotalSupply < 0 || u.AvailableSupply < 0 {
		return User{}, fmt.Errorf("user document %s has negative balance: %w", doc.ID, ErrInvalidArgument)
	}
	return u, nil
}

func decodeEvent(doc store.Doc) (Event, error) {
	var e Event
	if err := json.Unmarshal(doc.Data, &e); err != nil {
		return Event{}, fmt.Errorf("malformed event document %s: %w", doc.ID, ErrInvalidArgument)
	}
	e.ID = doc.ID
	if e.Capacity < 0 {
		e.Capacity = 0
	}
	return e, nil
}

func decodeProposal(doc store.Doc) (Proposal, error) {
	var p Proposal
	if err := json.Unmarshal(doc.Data, &p); err != nil {
		return Proposal{}, fmt.Errorf("malformed proposal document %s: %w", doc.ID, ErrInvalidArgument)
	}
	p.ID = doc.ID
	if p.Votes == nil {
		p.Votes = map[string]map[string]bool{}
	}
	if p.RequiredVotes < 1 {
		p.RequiredVotes = 1
	}
	return p, nil
}

func decodeClub(doc store.Doc) (Club, error) {
	var c Club
	if err := json.Unmarshal(doc.Data, &c); err != nil {
		return Club{}, fmt.Errorf("malformed club document %s: %w", doc.ID, ErrInvalidArgument)
	}
	c.ID = doc.ID
	if c.TokenBalance < 0 {
		return Club{}, fmt.Errorf("club document %s has negative balance: %w", doc.ID, ErrInvalidArgument)
	}
	if c.RequiredApprovals < 1 {
		c.RequiredApprovals = 1
	}
	return c, nil
}

func decodeLedgerEntry(doc store.Doc) (LedgerEntry, error) {
	var e LedgerEntry
	if err := json.Unmarshal(doc.Data, &e); err != nil {
		return LedgerEntry{}, fmt.Errorf("malformed ledger entry %s: %w", doc.ID, ErrInvalidArgument)
	}
	e.ID = doc.ID
	return e, nil
}

func decodeComplaint(doc store.Doc) (Complaint, error) {
	var c Complaint
	if err := json.Unmarshal(doc.Data, &c); err != nil {
		return Complaint{}, fmt.Errorf("malformed complaint document %s: %w", doc.ID, ErrInvalidArgument)
	}
	c.ID = doc.ID
	if c.Status == "" {
		c.Status = ComplaintOpen
	}
	return c, nil
}

// addToSet appends id if absent, preserving order.
func addToSet(set []string, id string) []string {
	if slices.Contains(set, id) {
		return set
	}
	return append(set, id)
}

func removeFromSet(set []string, id string) []string {
	return slices.DeleteFunc(set, func(s string) bool { return s == id })
}
