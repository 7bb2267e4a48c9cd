package models

import (
	"fmt"
	"strings"
	"time"
)

// DecryptWarning reports a record that was left out of a sync cycle because
// one or more of its fields failed to decrypt.
type DecryptWarning struct {
	RecordID uint64
	Fields   []string
	Err      error
}

func (w DecryptWarning) Error() string {
	return fmt.Sprintf("record %d: cannot decrypt %s: %v", w.RecordID, strings.Join(w.Fields, ", "), w.Err)
}

func (w DecryptWarning) Unwrap() error {
	return w.Err
}

// VaultCache is a read-only view of one collection's decrypted working set.
type VaultCache[T Record] struct {
	// Records maps record id to its plaintext form.
	Records map[uint64]T
	// Order keeps the ids in the order the remote listed them.
	Order []uint64
	// Generation counts the mutations acknowledged by the remote.
	Generation uint64
	// Warnings lists the records skipped in the last cycle.
	Warnings []DecryptWarning
	// Stale is set when the records come from the local snapshot instead of
	// a successful remote fetch.
	Stale bool
	// UpdatedAt is when the records were last replaced.
	UpdatedAt time.Time
}

// List returns the records in remote order.
func (c VaultCache[T]) List() []T {
	out := make([]T, 0, len(c.Order))
	for _, id := range c.Order {
		if r, ok := c.Records[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Get returns the record with the given id.
func (c VaultCache[T]) Get(id uint64) (T, bool) {
	r, ok := c.Records[id]
	return r, ok
}

// Len returns the number of decrypted records.
func (c VaultCache[T]) Len() int {
	return len(c.Records)
}
