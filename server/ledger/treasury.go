package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campushq/unievents/server/store"
)

// CreateClub creates a club with an empty treasury. Head only.
func (s *Service) CreateClub(ctx context.Context, actorID string, name string) (Club, error) {
	if name == "" {
		err := fmt.Errorf("club name is required: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("create_club", statusLabel(err)).Inc()
		return Club{}, err
	}

	club := Club{
		ID:                uuid.NewString(),
		Name:              name,
		Admins:            []string{},
		RequiredApprovals: 1,
		CreatedAt:         s.now(),
	}
	err := s.run(ctx, "create_club", func(tx store.Tx) error {
		if _, err := s.requireRole(tx, actorID, RoleHead); err != nil {
			return err
		}
		return create(tx, store.CollectionClubs, club.ID, club)
	})
	if err != nil {
		return Club{}, err
	}
	return club, nil
}

// DeleteClub removes the club document. Its users and ledger entries are
// left in place. Head only.
func (s *Service) DeleteClub(ctx context.Context, actorID string, clubID string) error {
	return s.run(ctx, "delete_club", func(tx store.Tx) error {
		if _, err := s.requireRole(tx, actorID, RoleHead); err != nil {
			return err
		}
		if _, err := s.txClub(tx, clubID); err != nil {
			return err
		}
		return tx.Delete(store.CollectionClubs, clubID)
	})
}

// Allocate moves tokens from the head's available supply into a club's
// balance and appends an allocation ledger entry. The supply decrement, the
// balance increment and the ledger entry commit in one transaction; a crash
// can never desynchronize supply and balances.
func (s *Service) Allocate(ctx context.Context, actorID string, clubID string, amount int) error {
	if amount <= 0 {
		err := fmt.Errorf("allocation amount must be positive: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("allocate", statusLabel(err)).Inc()
		return err
	}

	return s.run(ctx, "allocate", func(tx store.Tx) error {
		head, err := s.requireRole(tx, actorID, RoleHead)
		if err != nil {
			return err
		}
		club, err := s.txClub(tx, clubID)
		if err != nil {
			return err
		}

		if amount > head.AvailableSupply {
			return fmt.Errorf("allocation of %d exceeds available supply %d: %w", amount, head.AvailableSupply, ErrInvalidArgument)
		}

		head.AvailableSupply -= amount
		club.TokenBalance += amount

		if err = put(tx, store.CollectionUsers, head.ID, head); err != nil {
			return err
		}
		if err = put(tx, store.CollectionClubs, clubID, club); err != nil {
			return err
		}
		entry := LedgerEntry{
			ID:        uuid.NewString(),
			ClubID:    clubID,
			Type:      LedgerAllocation,
			Amount:    amount,
			Actor:     head.ID,
			CreatedAt: s.now(),
		}
		return create(tx, store.CollectionLedger, entry.ID, entry)
	})
}

// SetAllowance sets the club's advisory per-period spend cap. Head only.
func (s *Service) SetAllowance(ctx context.Context, actorID string, clubID string, amount int) error {
	if amount < 0 {
		err := fmt.Errorf("allowance must not be negative: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("set_allowance", statusLabel(err)).Inc()
		return err
	}

	return s.run(ctx, "set_allowance", func(tx store.Tx) error {
		if _, err := s.requireRole(tx, actorID, RoleHead); err != nil {
			return err
		}
		club, err := s.txClub(tx, clubID)
		if err != nil {
			return err
		}
		club.TokenAllowance = amount
		return put(tx, store.CollectionClubs, clubID, club)
	})
}

// SetRequiredApprovals sets the default vote threshold for new proposals.
// Existing proposals keep their snapshotted threshold. Head only.
func (s *Service) SetRequiredApprovals(ctx context.Context, actorID string, clubID string, n int) error {
	if n < 1 {
		err := fmt.Errorf("required approvals must be at least 1: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("set_required_approvals", statusLabel(err)).Inc()
		return err
	}

	return s.run(ctx, "set_required_approvals", func(tx store.Tx) error {
		if _, err := s.requireRole(tx, actorID, RoleHead); err != nil {
			return err
		}
		club, err := s.txClub(tx, clubID)
		if err != nil {
			return err
		}
		club.RequiredApprovals = n
		return put(tx, store.CollectionClubs, clubID, club)
	})
}

// AddAdmin adds a user to the club's admin set and promotes them to the club
// role in the same transaction. Clubs are capped at MaxClubAdmins. Head only.
func (s *Service) AddAdmin(ctx context.Context, actorID string, clubID string, userID string) error {
	return s.run(ctx, "add_admin", func(tx store.Tx) error {
		if _, err := s.requireRole(tx, actorID, RoleHead); err != nil {
			return err
		}
		club, err := s.txClub(tx, clubID)
		if err != nil {
			return err
		}
		user, err := s.txUser(tx, userID)
		if err != nil {
			return err
		}

		if club.IsAdmin(userID) {
			return nil
		}
		if len(club.Admins) >= MaxClubAdmins {
			return fmt.Errorf("club %q already has %d admins: %w", clubID, MaxClubAdmins, ErrLimitExceeded)
		}

		club.Admins = append(club.Admins, userID)
		user.Role = RoleClub
		user.ClubID = clubID

		if err = put(tx, store.CollectionClubs, clubID, club); err != nil {
			return err
		}
		return put(tx, store.CollectionUsers, userID, user)
	})
}

// RemoveAdmin removes a user from the club's admin set, demotes them to
// student and clears their club association. Head only.
func (s *Service) RemoveAdmin(ctx context.Context, actorID string, clubID string, userID string) error {
	return s.run(ctx, "remove_admin", func(tx store.Tx) error {
		if _, err := s.requireRole(tx, actorID, RoleHead); err != nil {
			return err
		}
		club, err := s.txClub(tx, clubID)
		if err != nil {
			return err
		}
		user, err := s.txUser(tx, userID)
		if err != nil {
			return err
		}

		if !club.IsAdmin(userID) {
			return nil
		}

		club.Admins = removeFromSet(club.Admins, userID)
		user.Role = RoleStudent
		user.ClubID = ""

		if err = put(tx, store.CollectionClubs, clubID, club); err != nil {
			return err
		}
		return put(tx, store.CollectionUsers, userID, user)
	})
}

// TransferHeadRole demotes the current head to student and promotes the
// target user, carrying the supply pool over. Both user documents are
// written in one transaction so there is never a moment with zero or two
// heads on disk.
func (s *Service) TransferHeadRole(ctx context.Context, fromUserID string, toUserID string) error {
	if fromUserID == toUserID {
		err := fmt.Errorf("cannot transfer head role to the current head: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("transfer_head_role", statusLabel(err)).Inc()
		return err
	}

	return s.run(ctx, "transfer_head_role", func(tx store.Tx) error {
		from, err := s.requireRole(tx, fromUserID, RoleHead)
		if err != nil {
			return err
		}
		to, err := s.txUser(tx, toUserID)
		if err != nil {
			return err
		}

		to.Role = RoleHead
		to.TotalSupply = from.TotalSupply
		to.AvailableSupply = from.AvailableSupply

		from.Role = RoleStudent
		from.TotalSupply = 0
		from.AvailableSupply = 0

		if err = put(tx, store.CollectionUsers, fromUserID, from); err != nil {
			return err
		}
		return put(tx, store.CollectionUsers, toUserID, to)
	})
}
