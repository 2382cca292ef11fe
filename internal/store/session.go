package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/garagehubapp/garagehub-server/internal/domain"
)

const (
	sessionPrefix        = "session:"
	sessionByTokenPrefix = "idx:sessions:token:" // For refresh token lookups
)

var (
	// ErrSessionNotFound is returned when a session cannot be found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session expired")
)

// CreateSession persists a new session and its refresh token index.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	key := []byte(sessionPrefix + session.ID)
	tokenKey := []byte(sessionByTokenPrefix + session.RefreshTokenHash)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, key, session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		// Token index maps refresh token hash to session ID.
		return txn.Set(tokenKey, []byte(session.ID))
	})
}

// GetSessionByTokenHash looks up a session by its refresh token hash.
// Expired sessions are deleted on access and reported as expired.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	tokenKey := []byte(sessionByTokenPrefix + tokenHash)

	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session by token: %w", err)
	}

	var session domain.Session
	if err := s.get([]byte(sessionPrefix+sessionID), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsExpired() {
		_ = s.DeleteSession(ctx, &session)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// UpdateSession persists changes to an existing session, moving the token
// index when the refresh token was rotated.
func (s *Store) UpdateSession(_ context.Context, session *domain.Session, oldTokenHash string) error {
	key := []byte(sessionPrefix + session.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, key, session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		if oldTokenHash != "" && oldTokenHash != session.RefreshTokenHash {
			oldKey := []byte(sessionByTokenPrefix + oldTokenHash)
			if err := txn.Delete(oldKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			newKey := []byte(sessionByTokenPrefix + session.RefreshTokenHash)
			return txn.Set(newKey, []byte(session.ID))
		}

		return nil
	})
}

// DeleteSession removes a session and its token index. Idempotent.
func (s *Store) DeleteSession(_ context.Context, session *domain.Session) error {
	key := []byte(sessionPrefix + session.ID)
	tokenKey := []byte(sessionByTokenPrefix + session.RefreshTokenHash)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete(tokenKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}
