package store

import (
	"context"
	"errors"
)

// Collection names used by the service. The store itself imposes no schema
// on documents; callers validate document shape on read.
const (
	CollectionUsers      = "users"
	CollectionEvents     = "events"
	CollectionClubs      = "clubs"
	CollectionLedger     = "ledger"
	CollectionProposals  = "rewardProposals"
	CollectionComplaints = "complaints"
	CollectionSessions   = "sessions"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned by Create when a document with the same id already exists.
	ErrExists = errors.New("document already exists")
	// ErrConflict is returned when a transaction keeps colliding with
	// concurrent writers and runs out of retries.
	ErrConflict = errors.New("transaction conflict")
	// ErrReadAfterWrite is returned when a transaction reads after it has
	// already buffered a write. All reads must happen first so that the
	// conflict check covers every document the decision was based on.
	ErrReadAfterWrite = errors.New("transaction read after write")
	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("store closed")
)

// Doc is a raw document snapshot. Rev increases by one on every write and is
// the basis for optimistic concurrency control.
type Doc struct {
	ID   string
	Rev  int64
	Data []byte
}

// Tx is the view of the store inside a transaction. Reads are recorded and
// writes are buffered; the commit fails if any document read (or found
// missing) during the transaction changed concurrently, in which case the
// whole transaction function re-executes against fresh state.
type Tx interface {
	// Get returns a document or ErrNotFound. The miss is recorded too, so a
	// concurrent create of the same id also aborts the transaction.
	Get(collection string, id string) (Doc, error)
	// List returns all documents of a collection, recording each one.
	List(collection string) ([]Doc, error)
	// Create buffers a new document. Fails the commit with ErrExists if the
	// id is taken.
	Create(collection string, id string, data []byte) error
	// Put buffers a write of an existing (or new) document.
	Put(collection string, id string, data []byte) error
	// Delete buffers a document removal. Deleting a missing document is a no-op.
	Delete(collection string, id string) error
}

// Change describes one committed document write delivered to watchers.
type Change struct {
	Collection string
	ID         string
	// Doc is the state after the write. Deleted is set instead when the
	// document was removed.
	Doc     Doc
	Deleted bool
}

// Subscription is a live change feed for one collection. Consumers must call
// Close when done, otherwise the feed leaks. The channel is closed on Close
// and on store shutdown.
type Subscription struct {
	C     <-chan Change
	close func()
}

func NewSubscription(c <-chan Change, closeFn func()) *Subscription {
	return &Subscription{C: c, close: closeFn}
}

func (s *Subscription) Close() {
	if s.close != nil {
		s.close()
	}
}

// Store is a transactional document store with strongly-consistent
// single-document reads and optimistic multi-document transactions.
type Store interface {
	// Get reads the current state of a single document.
	Get(ctx context.Context, collection string, id string) (Doc, error)
	// List reads a consistent snapshot of a whole collection.
	List(ctx context.Context, collection string) ([]Doc, error)
	// RunTransaction executes fn atomically. fn may be invoked multiple
	// times; it must be idempotent and confine all side effects to the Tx.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	// Watch subscribes to committed changes on a collection.
	Watch(ctx context.Context, collection string) (*Subscription, error)

	Close() error
}
