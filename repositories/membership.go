package repositories

import (
	"context"
	"fmt"
	"time"

	"taskhub/errors"

	"github.com/dgraph-io/badger/v4"
)

// MembershipRepository stores project memberships under "member:{user}:{project}".
// Listing a user's projects is a prefix scan on "member:{user}:".
type MembershipRepository struct {
	db *badger.DB
}

func NewMembershipRepository(db *badger.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

type membershipRecord struct {
	ProjectID string    `cbor:"1,keyasint"`
	JoinedAt  time.Time `cbor:"2,keyasint"`
}

func memberPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("member:%s:", userID))
}

func memberKey(userID, projectID string) []byte {
	return []byte(fmt.Sprintf("member:%s:%s", userID, projectID))
}

func (m *MembershipRepository) AddMember(userID, projectID string) error {
	if userID == "" || projectID == "" {
		return fmt.Errorf("%w: membership needs a user and a project", errors.ErrInvalidPayload)
	}
	data, err := marshal(membershipRecord{ProjectID: projectID, JoinedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(memberKey(userID, projectID), data)
	})
}

// RemoveMember is a no-op when the membership does not exist.
func (m *MembershipRepository) RemoveMember(userID, projectID string) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(memberKey(userID, projectID))
	})
}

// ProjectsOf returns the project ids of userID in key order.
func (m *MembershipRepository) ProjectsOf(ctx context.Context, userID string) ([]string, error) {
	var projects []string
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := memberPrefix(userID)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record membershipRecord
			err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			projects = append(projects, record.ProjectID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (m *MembershipRepository) IsMember(_ context.Context, userID, projectID string) (bool, error) {
	err := m.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(memberKey(userID, projectID))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}
