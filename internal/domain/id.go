package domain

import "github.com/google/uuid"

// NewID creates a new time-ordered unique identifier for stored records.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewAnonymousUserID creates a random identifier for users without credentials.
func NewAnonymousUserID() string {
	return uuid.New().String()
}

// scopeNamespace seeds name-based user identifiers derived from auth tokens.
var scopeNamespace = uuid.MustParse("6b1f3c52-9a4e-4d8e-8f0b-2f8f6f0f6a11")

// DeriveUserID returns a stable identifier for the given credential.
func DeriveUserID(credential string) string {
	return uuid.NewSHA1(scopeNamespace, []byte(credential)).String()
}

// DefaultScopeID namespaces records when no scope id is configured.
const DefaultScopeID = "flowboard"

// ScopeKey returns the store key that holds one user's records.
func ScopeKey(scopeID, userID string) string {
	if scopeID == "" {
		scopeID = DefaultScopeID
	}
	return scopeID + "/users/" + userID
}
