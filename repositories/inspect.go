package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Entry is one decoded key of the store, as listed by hubctl inspect.
type Entry struct {
	Key    string
	Kind   string
	Detail string
	At     time.Time
	Size   int
}

// Inspect lists every key starting with prefix and decodes the records it knows.
// Unknown or undecodable values are reported as RAW.
func Inspect(ctx context.Context, db *badger.DB, prefix string) ([]Entry, error) {
	var entries []Entry
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(val []byte) error {
				entries = append(entries, describe(key, val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

func describe(key string, val []byte) Entry {
	entry := Entry{Key: key, Kind: "RAW", Detail: fmt.Sprintf("%d bytes", len(val)), Size: len(val)}
	switch {
	case strings.HasPrefix(key, "user:"):
		var record userRecord
		if unmarshal(val, &record) != nil {
			return entry
		}
		entry.Kind = "USER"
		entry.At = record.CreatedAt
		entry.Detail = fmt.Sprintf("%s role=%s active=%t", record.DisplayName, record.Role, record.Active)
	case strings.HasPrefix(key, "member:"):
		var record membershipRecord
		if unmarshal(val, &record) != nil {
			return entry
		}
		entry.Kind = "MEMBER"
		entry.At = record.JoinedAt
		entry.Detail = "project=" + record.ProjectID
	}
	return entry
}
