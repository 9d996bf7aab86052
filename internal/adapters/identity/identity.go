// Package identity tracks the signed-in user.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// ErrMalformedToken is returned by the default verifier for unusable tokens.
var ErrMalformedToken = errors.New("malformed auth token")

// minTokenLength is the shortest token the default verifier accepts.
const minTokenLength = 8

// DefaultVerifier accepts any well-formed token and maps it to a stable user id.
var DefaultVerifier ports.TokenVerifier = ports.TokenVerifierFunc(func(_ context.Context, token string) (string, error) {
	if len(token) < minTokenLength || strings.IndexFunc(token, unicode.IsSpace) >= 0 {
		return "", ErrMalformedToken
	}
	return domain.DeriveUserID(token), nil
})

// Service implements ports.IdentityService.
type Service struct {
	mu        sync.Mutex
	token     string
	verifier  ports.TokenVerifier
	logger    *slog.Logger
	userID    string
	anonymous bool
	idFile    string
	nextID    int
	listeners map[int]func(string)
}

// Ensure Service implements ports.IdentityService.
var _ ports.IdentityService = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithAnonymousIDFile keeps the anonymous id in path, so every run on this
// machine signs in as the same anonymous user.
func WithAnonymousIDFile(path string) Option {
	return func(s *Service) {
		s.idFile = path
	}
}

// New creates a signed-out identity service for token. A nil verifier uses
// DefaultVerifier.
func New(token string, verifier ports.TokenVerifier, logger *slog.Logger, opts ...Option) *Service {
	if verifier == nil {
		verifier = DefaultVerifier
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		token:     strings.TrimSpace(token),
		verifier:  verifier,
		logger:    logger,
		listeners: make(map[int]func(string)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignIn resolves the configured token to a user. Without a token, or when
// verification fails, a random anonymous id stands in. Failures are logged
// and not retried.
func (s *Service) SignIn(ctx context.Context) string {
	userID, anonymous := s.resolve(ctx)

	s.mu.Lock()
	changed := userID != s.userID
	s.userID = userID
	s.anonymous = anonymous
	s.mu.Unlock()

	if changed {
		s.notify(userID)
	}
	return userID
}

func (s *Service) resolve(ctx context.Context) (string, bool) {
	if s.token == "" {
		s.logger.Info("no auth token configured, using anonymous identity")
		return s.anonymousID(), true
	}

	userID, err := s.verifier.Verify(ctx, s.token)
	if err == nil && userID == "" {
		err = ErrMalformedToken
	}
	if err != nil {
		s.logger.Warn("authentication failed, using anonymous identity", "err", err)
		return s.anonymousID(), true
	}
	return userID, false
}

// anonymousID returns the saved anonymous id, creating it on first use.
// Without an id file, or when the file cannot be written, the id lives only
// as long as the process.
func (s *Service) anonymousID() string {
	if s.idFile == "" {
		return domain.NewAnonymousUserID()
	}

	if data, err := os.ReadFile(s.idFile); err == nil {
		id := strings.TrimSpace(string(data))
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
		s.logger.Warn("ignoring malformed anonymous id file", "path", s.idFile)
	}

	id := domain.NewAnonymousUserID()
	if err := writeIDFile(s.idFile, id); err != nil {
		s.logger.Warn("could not save anonymous id, it will change next run", "err", err)
	}
	return id
}

func writeIDFile(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write anonymous id: %w", err)
	}
	return nil
}

// SignOut clears the current user.
func (s *Service) SignOut() {
	s.mu.Lock()
	changed := s.userID != ""
	s.userID = ""
	s.anonymous = false
	s.mu.Unlock()

	if changed {
		s.notify("")
	}
}

// CurrentUserID implements ports.IdentityService.
func (s *Service) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// IsAnonymous returns true if the current user is a local stand-in.
func (s *Service) IsAnonymous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anonymous
}

// OnAuthStateChanged implements ports.IdentityService.
func (s *Service) OnAuthStateChanged(fn func(userID string)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	current := s.userID
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) notify(userID string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(userID)
	}
}
