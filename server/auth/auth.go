// Package auth is the boundary to the external authentication service. The
// service hands us an opaque authenticated identity; all this package does
// is exchange it for a session token and resolve tokens back to identities.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campushq/unievents/internal/xrand"
	"github.com/campushq/unievents/server/store"
)

const sessionTokenLength = 32

var ErrSessionNotFound = errors.New("session not found or expired")

type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func New(cfg Config, st store.Store) *Auth {
	a := &Auth{
		cfg:   cfg,
		store: st,
		done:  make(chan struct{}),
	}
	go a.cleanupSessions()
	return a
}

type Auth struct {
	cfg   Config
	store store.Store
	done  chan struct{}
}

// VerifySecret checks the shared secret presented by the identity provider.
func (a *Auth) VerifySecret(secret string) bool {
	return a.cfg.Secret != "" && secret == a.cfg.Secret
}

// CreateSession mints a session token for an authenticated user id.
func (a *Auth) CreateSession(ctx context.Context, userID string) (Session, error) {
	now := time.Now()
	ttl := time.Duration(a.cfg.SessionTTL)
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	session := Session{
		Token:     xrand.Str(sessionTokenLength),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	data, err := json.Marshal(session)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode session: %w", err)
	}

	err = a.store.RunTransaction(ctx, func(tx store.Tx) error {
		return tx.Create(store.CollectionSessions, session.Token, data)
	})
	if err != nil {
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession resolves a token to a live session.
func (a *Auth) GetSession(ctx context.Context, token string) (Session, error) {
	doc, err := a.store.Get(ctx, store.CollectionSessions, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err = json.Unmarshal(doc.Data, &session); err != nil {
		return Session{}, fmt.Errorf("malformed session document: %w", err)
	}
	session.Token = doc.ID

	if session.Expired(time.Now()) {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// DeleteSession revokes a session token.
func (a *Auth) DeleteSession(ctx context.Context, token string) error {
	return a.store.RunTransaction(ctx, func(tx store.Tx) error {
		return tx.Delete(store.CollectionSessions, token)
	})
}

func (a *Auth) Close() {
	close(a.done)
}

func (a *Auth) cleanupSessions() {
	for {
		select {
		case <-a.done:
			return
		case <-time.After(1 * time.Hour):
			a.doCleanupSessions()
		}
	}
}

func (a *Auth) doCleanupSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	docs, err := a.store.List(ctx, store.CollectionSessions)
	if err != nil {
		slog.Error("failed to list sessions for cleanup", slog.Any("err", err))
		return
	}

	now := time.Now()
	for _, doc := range docs {
		var session Session
		if err = json.Unmarshal(doc.Data, &session); err != nil || !session.Expired(now) {
			continue
		}
		err = a.store.RunTransaction(ctx, func(tx store.Tx) error {
			return tx.Delete(store.CollectionSessions, doc.ID)
		})
		if err != nil {
			slog.Error("failed to cleanup expired session", slog.Any("err", err))
		}
	}
}
