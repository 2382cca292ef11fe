package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/garagehubapp/garagehub-server/internal/domain"
)

const (
	userPrefix        = "user:"
	userByEmailPrefix = "idx:users:email:" // For login lookups
)

var (
	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when attempting to create a user with an existing ID.
	ErrUserExists = errors.New("user already exists")
	// ErrEmailExists is returned when attempting to create a user with an email that's already in use.
	ErrEmailExists = errors.New("email already in use")
)

// CreateUser creates a new user account.
// Email uniqueness is enforced inside a single transaction.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	emailKey := []byte(userByEmailPrefix + normalizeEmail(user.Email))

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey)
		if err == nil {
			return ErrEmailExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email exists: %w", err)
		}

		if err := setInTxn(txn, key, user); err != nil {
			return err
		}

		// Email index maps normalized email to user ID.
		return txn.Set(emailKey, []byte(user.ID))
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	key := []byte(userPrefix + id)

	var user domain.User
	if err := s.get(key, &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
// Lookup is case-insensitive.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	emailKey := []byte(userByEmailPrefix + normalizeEmail(email))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// UpdateUser updates an existing user. Email is immutable after registration,
// so the email index never moves.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if _, err := s.GetUser(ctx, user.ID); err != nil {
		return err
	}

	user.Touch()

	return s.set([]byte(userPrefix+user.ID), user)
}

// normalizeEmail normalizes an email address for consistent lookups.
// Lowercases and trims whitespace.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
