// Package bootstrap gates the one-time administrative setup of a fresh
// install. Completion requires a request classified as local, an unset
// completion flag, and knowledge of the deploy-time bootstrap secret; it
// then issues the first admin session and latches the flag.
package bootstrap

import (
	"context"
	"errors"
	"time"

	"homehold/internal/bootstrap/repository"
	"homehold/internal/security"
	sessiondomain "homehold/internal/session/domain"
	sessionservice "homehold/internal/session/service"
)

// CompletedFlag is the system flag latched when bootstrap finishes.
const CompletedFlag = "bootstrapped"

// Sentinel errors; the handler maps them to HTTP statuses.
var (
	ErrDisabled            = errors.New("bootstrap is not configured")
	ErrNotLocal            = errors.New("bootstrap requires a local request")
	ErrAlreadyBootstrapped = errors.New("bootstrap already completed")
	ErrBadSecret           = errors.New("bootstrap secret mismatch")
)

// Service implements the bootstrap gate.
type Service struct {
	flags      repository.Repository
	sessions   *sessionservice.Service
	hasher     *security.Hasher
	secretHash string // bcrypt hash from config; empty disables bootstrap
	adminRole  string
	sessionTTL time.Duration
}

// NewService returns the bootstrap service. secretHash empty disables the
// whole flow.
func NewService(flags repository.Repository, sessions *sessionservice.Service, hasher *security.Hasher, secretHash, adminRole string, sessionTTL time.Duration) *Service {
	return &Service{
		flags:      flags,
		sessions:   sessions,
		hasher:     hasher,
		secretHash: secretHash,
		adminRole:  adminRole,
		sessionTTL: sessionTTL,
	}
}

// Completed reports whether bootstrap has already run.
func (s *Service) Completed(ctx context.Context) (bool, error) {
	return s.flags.Get(ctx, CompletedFlag)
}

// Complete performs the one-time bootstrap: verifies locality, the unset
// flag, and the secret, then issues the first admin session and latches the
// flag. The locality check runs first so a remote caller learns nothing
// about the install's state. The flag is latched last: if session creation
// fails the install stays bootstrappable and the caller can retry.
func (s *Service) Complete(ctx context.Context, userID int64, secret string, isLocal bool, clientIP string) (*sessiondomain.Session, error) {
	if s.secretHash == "" {
		return nil, ErrDisabled
	}
	if !isLocal {
		return nil, ErrNotLocal
	}
	done, err := s.flags.Get(ctx, CompletedFlag)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadyBootstrapped
	}
	if err := s.hasher.Compare(s.secretHash, []byte(secret)); err != nil {
		return nil, ErrBadSecret
	}

	sess, err := s.sessions.Create(ctx, userID, s.adminRole, s.sessionTTL, sessionservice.CreateOptions{
		ClientIP: clientIP,
	})
	if err != nil {
		return nil, err
	}
	if err := s.flags.Set(ctx, CompletedFlag, true); err != nil {
		// Don't leave an admin session behind for an install that still
		// reads as un-bootstrapped.
		_ = s.sessions.Destroy(ctx, sess.SID)
		return nil, err
	}
	return sess, nil
}
