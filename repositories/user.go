package repositories

import (
	"context"
	"fmt"
	"time"

	"taskhub/domain"
	"taskhub/errors"

	"github.com/dgraph-io/badger/v4"
)

// UserRepository is the badger-backed user directory.
// Keys are "user:{id}", values a CBOR userRecord.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRecord struct {
	ID          string    `cbor:"1,keyasint"`
	DisplayName string    `cbor:"2,keyasint"`
	Email       string    `cbor:"3,keyasint,omitempty"`
	Role        string    `cbor:"4,keyasint"`
	Active      bool      `cbor:"5,keyasint"`
	CreatedAt   time.Time `cbor:"6,keyasint"`
}

func userKey(id string) []byte {
	return []byte("user:" + id)
}

// SaveUser inserts or replaces a user.
func (u *UserRepository) SaveUser(user domain.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: empty user id", errors.ErrInvalidPayload)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	data, err := marshal(userRecord{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        string(user.Role),
		Active:      user.Active,
		CreatedAt:   user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
}

// GetUser returns errors.ErrUserNotFound when no record exists.
func (u *UserRepository) GetUser(_ context.Context, userID string) (domain.User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, userID)
	}
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:          record.ID,
		DisplayName: record.DisplayName,
		Email:       record.Email,
		Role:        domain.Role(record.Role),
		Active:      record.Active,
		CreatedAt:   record.CreatedAt.UTC(),
	}, nil
}

// SetActive flips the active flag of an existing user.
func (u *UserRepository) SetActive(ctx context.Context, userID string, active bool) error {
	user, err := u.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	user.Active = active
	return u.SaveUser(user)
}
