package ports

import (
	"context"
)

// IdentityService exposes the signed-in user.
// This is a driven port (implemented by adapters).
type IdentityService interface {
	// CurrentUserID returns the user's stable identifier, or "" when signed out.
	CurrentUserID() string

	// OnAuthStateChanged registers fn for sign-in and sign-out events. fn is called
	// immediately with the current user. The returned func removes the listener.
	OnAuthStateChanged(fn func(userID string)) (unsubscribe func())
}

// TokenVerifier resolves an auth token to a user identifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// TokenVerifierFunc adapts a function to TokenVerifier.
type TokenVerifierFunc func(ctx context.Context, token string) (string, error)

// Verify implements TokenVerifier.
func (f TokenVerifierFunc) Verify(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}
