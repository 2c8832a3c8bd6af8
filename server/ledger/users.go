package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushq/unievents/server/store"
)

// EnsureUser creates the user document on first sign-in. The identity itself
// comes from the external auth service; uid is its opaque user id. Existing
// users are returned unchanged.
func (s *Service) EnsureUser(ctx context.Context, uid string, name string, email string) (User, error) {
	if uid == "" {
		err := fmt.Errorf("user id is required: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("ensure_user", statusLabel(err)).Inc()
		return User{}, err
	}

	var user User
	err := s.run(ctx, "ensure_user", func(tx store.Tx) error {
		existing, err := s.txUser(tx, uid)
		if err == nil {
			user = existing
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		user = User{
			ID:        uid,
			Name:      name,
			Email:     email,
			Role:      RoleStudent,
			CreatedAt: s.now(),
		}
		return create(tx, store.CollectionUsers, uid, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			// Lost the race to another first sign-in, fetch the winner.
			return s.GetUser(ctx, uid)
		}
		return User{}, err
	}
	return user, nil
}

// SetWalletAddress links or unlinks the user's wallet.
func (s *Service) SetWalletAddress(ctx context.Context, userID string, address string) error {
	return s.run(ctx, "set_wallet_address", func(tx store.Tx) error {
		user, err := s.txUser(tx, userID)
		if err != nil {
			return err
		}
		if user.WalletAddress == address {
			return nil
		}
		user.WalletAddress = address
		return put(tx, store.CollectionUsers, userID, user)
	})
}
