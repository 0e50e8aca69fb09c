package stub

import (
	"errors"
	"time"
)

// ErrNotFound indicates a stub was not found in the store.
var ErrNotFound = errors.New("stub not found")

// Store is the port for the mutable stub registry. Resolution only reads it,
// except for RecordUse, which stamps the selected stub's last-used timestamp.
type Store interface {
	// Lookup returns the stubs registered for a method and path, in
	// registration order. The returned slice is a snapshot; the stubs
	// themselves are shared.
	Lookup(method, path string) []*Stub

	// RecordUse stamps a stub as selected at t.
	RecordUse(s *Stub, t time.Time)

	// Add registers a stub, assigning an ID if it has none.
	Add(s *Stub)

	// Remove deletes a stub by ID. Returns ErrNotFound if absent.
	Remove(id string) error

	// Replace swaps the file-seeded stubs while keeping stubs registered
	// at runtime through the admin API.
	Replace(seeded []*Stub)

	// Reset removes every stub.
	Reset()

	// All returns every registered stub.
	All() []*Stub
}
