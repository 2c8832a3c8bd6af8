// Package memory implements the document store on an in-process map. It is
// the backend used by tests and by single-node deployments without Postgres.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/campushq/unievents/server/store"
)

const maxRetries = 10

func New() *Store {
	return &Store{
		cols: map[string]map[string]store.Doc{},
		subs: map[string]map[int]chan store.Change{},
	}
}

type Store struct {
	mu      sync.Mutex
	cols    map[string]map[string]store.Doc
	subs    map[string]map[int]chan store.Change
	nextSub int
	closed  bool
}

func (s *Store) Get(ctx context.Context, collection string, id string) (store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.Doc{}, store.ErrClosed
	}
	doc, ok := s.cols[collection][id]
	if !ok {
		return store.Doc{}, store.ErrNotFound
	}
	return copyDoc(doc), nil
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, store.ErrClosed
	}
	docs := make([]store.Doc, 0, len(s.cols[collection]))
	for _, doc := range s.cols[collection] {
		docs = append(docs, copyDoc(doc))
	}
	slices.SortFunc(docs, func(a, b store.Doc) int {
		if a.ID < b.ID {
			return -1
		} else if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return docs, nil
}

func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := &tx{s: s, reads: map[docKey]int64{}}
		if err := fn(t); err != nil {
			return err
		}

		ok, err := s.commit(t)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return store.ErrConflict
}

func (s *Store) Watch(ctx context.Context, collection string) (*store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, store.ErrClosed
	}

	id := s.nextSub
	s.nextSub++

	ch := make(chan store.Change, 64)
	if s.subs[collection] == nil {
		s.subs[collection] = map[int]chan store.Change{}
	}
	s.subs[collection][id] = ch

	var once sync.Once
	return store.NewSubscription(ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if subs, ok := s.subs[collection]; ok {
				delete(subs, id)
			}
			close(ch)
		})
	}), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for _, subs := range s.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
	}
	return nil
}

type docKey struct {
	collection string
	id         string
}

type write struct {
	key    docKey
	data   []byte
	create bool
	delete bool
}

type tx struct {
	s      *Store
	reads  map[docKey]int64 // rev at read time, 0 = missing
	writes []write
}

func (t *tx) Get(collection string, id string) (store.Doc, error) {
	if len(t.writes) > 0 {
		return store.Doc{}, store.ErrReadAfterWrite
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.s.closed {
		return store.Doc{}, store.ErrClosed
	}

	key := docKey{collection, id}
	doc, ok := t.s.cols[collection][id]
	if !ok {
		t.reads[key] = 0
		return store.Doc{}, store.ErrNotFound
	}
	t.reads[key] = doc.Rev
	return copyDoc(doc), nil
}

func (t *tx) List(collection string) ([]store.Doc, error) {
	if len(t.writes) > 0 {
		return nil, store.ErrReadAfterWrite
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.s.closed {
		return nil, store.ErrClosed
	}

	docs := make([]store.Doc, 0, len(t.s.cols[collection]))
	for id, doc := range t.s.cols[collection] {
		t.reads[docKey{collection, id}] = doc.Rev
		docs = append(docs, copyDoc(doc))
	}
	return docs, nil
}

func (t *tx) Create(collection string, id string, data []byte) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	key := docKey{collection, id}
	if _, ok := t.s.cols[collection][id]; ok {
		return fmt.Errorf("create %s/%s: %w", collection, id, store.ErrExists)
	}
	// Record the miss so a concurrent create aborts the commit.
	if _, ok := t.reads[key]; !ok {
		t.reads[key] = 0
	}
	t.writes = append(t.writes, write{key: key, data: slices.Clone(data), create: true})
	return nil
}

func (t *tx) Put(collection string, id string, data []byte) error {
	t.writes = append(t.writes, write{key: docKey{collection, id}, data: slices.Clone(data)})
	return nil
}

func (t *tx) Delete(collection string, id string) error {
	t.writes = append(t.writes, write{key: docKey{collection, id}, delete: true})
	return nil
}

// commit validates every recorded read against the current state and applies
// the buffered writes. It reports ok=false when the transaction must retry.
func (s *Store) commit(t *tx) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, store.ErrClosed
	}

	for key, rev := range t.reads {
		doc, ok := s.cols[key.collection][key.id]
		if !ok {
			if rev != 0 {
				return false, nil
			}
			continue
		}
		if doc.Rev != rev {
			return false, nil
		}
	}

	var changes []store.Change
	for _, w := range t.writes {
		col := s.cols[w.key.collection]
		if col == nil {
			col = map[string]store.Doc{}
			s.cols[w.key.collection] = col
		}

		if w.delete {
			if _, ok := col[w.key.id]; !ok {
				continue
			}
			delete(col, w.key.id)
			changes = append(changes, store.Change{
				Collection: w.key.collection,
				ID:         w.key.id,
				Deleted:    true,
			})
			continue
		}

		doc := store.Doc{
			ID:   w.key.id,
			Rev:  col[w.key.id].Rev + 1,
			Data: slices.Clone(w.data),
		}
		col[w.key.id] = doc
		changes = append(changes, store.Change{
			Collection: w.key.collection,
			ID:         w.key.id,
			Doc:        copyDoc(doc),
		})
	}

	for _, change := range changes {
		for _, ch := range s.subs[change.Collection] {
			select {
			case ch <- change:
			default:
				// Slow consumer, drop. Watchers re-read on demand.
			}
		}
	}
	return true, nil
}

func copyDoc(doc store.Doc) store.Doc {
	doc.Data = slices.Clone(doc.Data)
	return doc
}
