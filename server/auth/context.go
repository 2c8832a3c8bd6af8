package auth

import (
	"context"
	"net/http"
)

type identityKey struct{}

var identityContextKey = &identityKey{}

// Identity is the authenticated caller attached to a request context. A zero
// UserID means the request is anonymous.
type Identity struct {
	UserID string
}

func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

func SetIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func GetIdentity(r *http.Request) Identity {
	identity, _ := r.Context().Value(identityContextKey).(Identity)
	return identity
}
