package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/campushq/unievents/server/store"
)

type VoteStatus string

const (
	// VoteOK means the vote was recorded.
	VoteOK VoteStatus = "ok"
	// VoteAlreadyVoted means this admin had already voted for this
	// candidate. Nothing was written.
	VoteAlreadyVoted VoteStatus = "already-voted"
	// VoteAlreadyApproved means the candidate had already crossed the
	// threshold. Nothing was written.
	VoteAlreadyApproved VoteStatus = "already-approved"
)

type VoteResult struct {
	Status VoteStatus
	// Approved reports whether this vote pushed the candidate over the
	// threshold.
	Approved bool
	// VoteCount is the candidate's vote count after this call.
	VoteCount int
}

// CastVote records one admin's vote for one candidate on a proposal and, on
// threshold crossing, settles the reward in the same transaction: the
// candidate is marked approved, their token balance is incremented by the
// proposal's per-user amount, the event id is appended to rewardedEvents and
// an achievement is recorded, and the club's balance is debited with a spend
// ledger entry. The rewardedEvents membership check makes settlement
// idempotent: a retried transaction or a second proposal for the same event
// can never pay the candidate twice.
//
// All reads happen before any write, so when the store re-executes the
// transaction after a conflicting concurrent vote, the decision is remade
// from scratch against current state.
func (s *Service) CastVote(ctx context.Context, proposalID string, candidateID string, adminID string) (VoteResult, error) {
	var result VoteResult
	err := s.run(ctx, "cast_vote", func(tx store.Tx) error {
		result = VoteResult{}

		proposal, err := s.txProposal(tx, proposalID)
		if err != nil {
			return err
		}
		if !slices.Contains(proposal.Users, candidateID) {
			return fmt.Errorf("user %q is not a candidate on proposal %q: %w", candidateID, proposalID, ErrInvalidArgument)
		}
		candidate, err := s.txUser(tx, candidateID)
		if err != nil {
			return err
		}
		club, err := s.requireClubAdmin(tx, proposal.ClubID, adminID)
		if err != nil {
			return err
		}

		for _, id := range proposal.ApprovedUsers {
			if id == candidateID {
				result.Status = VoteAlreadyApproved
				result.Approved = true
				result.VoteCount = len(proposal.Votes[candidateID])
				return nil
			}
		}

		ballots := proposal.Votes[candidateID]
		if ballots[adminID] {
			result.Status = VoteAlreadyVoted
			result.VoteCount = len(ballots)
			return nil
		}

		if ballots == nil {
			ballots = map[string]bool{}
		}
		ballots[adminID] = true
		proposal.Votes[candidateID] = ballots

		newCount := len(ballots)
		approved := newCount >= proposal.RequiredVotes
		if approved {
			proposal.ApprovedUsers = addToSet(proposal.ApprovedUsers, candidateID)
		}

		if err = put(tx, store.CollectionProposals, proposalID, proposal); err != nil {
			return err
		}

		if approved && !slices.Contains(candidate.RewardedEvents, proposal.EventID) {
			candidate.Tokens += proposal.Tokens
			candidate.RewardedEvents = append(candidate.RewardedEvents, proposal.EventID)
			candidate.Achievements = append(candidate.Achievements, Achievement{
				EventID: proposal.EventID,
				Tokens:  proposal.Tokens,
				Date:    s.now(),
			})
			if err = put(tx, store.CollectionUsers, candidateID, candidate); err != nil {
				return err
			}

			// The entry records what was actually debited, so an underfunded
			// treasury yields a short spend entry rather than a ledger that
			// no longer reconciles against the club balance.
			debit := min(proposal.Tokens, club.TokenBalance)
			club.TokenBalance -= debit
			if err = put(tx, store.CollectionClubs, club.ID, club); err != nil {
				return err
			}
			if debit > 0 {
				entry := LedgerEntry{
					ID:        uuid.NewString(),
					ClubID:    club.ID,
					Type:      LedgerSpend,
					Amount:    debit,
					Actor:     adminID,
					CreatedAt: s.now(),
				}
				if err = create(tx, store.CollectionLedger, entry.ID, entry); err != nil {
					return err
				}
			}
		}

		result.Status = VoteOK
		result.Approved = approved
		result.VoteCount = newCount
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}
	return result, nil
}
