package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campushq/unievents/server/store"
)

// notifyChannel matches the pg_notify channel used by the documents trigger,
// see migrations/0001_documents.sql. Payloads are "op:collection:id".
const notifyChannel = "unievents_documents"

func newListener(cfg Config, s *Store) *listener {
	ctx, cancel := context.WithCancel(context.Background())
	return &listener{
		s:      s,
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		subs:   map[string]map[int]chan store.Change{},
	}
}

type listener struct {
	s      *Store
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	subs    map[string]map[int]chan store.Change
	nextSub int
	closed  bool
}

func (l *listener) subscribe(collection string) (*store.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, store.ErrClosed
	}

	id := l.nextSub
	l.nextSub++

	ch := make(chan store.Change, 64)
	if l.subs[collection] == nil {
		l.subs[collection] = map[int]chan store.Change{}
	}
	l.subs[collection][id] = ch

	var once sync.Once
	return store.NewSubscription(ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if subs, ok := l.subs[collection]; ok {
				delete(subs, id)
			}
			close(ch)
		})
	}), nil
}

func (l *listener) close() {
	l.cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for _, subs := range l.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
	}
}

// run holds a dedicated connection on LISTEN and re-connects with backoff
// when it drops. Notifications are re-read from the documents table so
// watchers always see committed state.
func (l *listener) run() {
	for {
		if err := l.listen(); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("document listener failed, reconnecting", slog.Any("err", err))
		}

		select {
		case <-l.ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (l *listener) listen() error {
	conn, err := pgx.Connect(l.ctx, l.cfg.DataSourceName())
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(ctx)
	}()

	if _, err = conn.Exec(l.ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.WaitForNotification(l.ctx)
		if err != nil {
			return err
		}
		l.dispatch(notification.Payload)
	}
}

func (l *listener) dispatch(payload string) {
	parts := strings.SplitN(payload, ":", 3)
	if len(parts) != 3 {
		slog.Warn("ignoring malformed document notification", slog.String("payload", payload))
		return
	}
	op, collection, id := parts[0], parts[1], parts[2]

	change := store.Change{
		Collection: collection,
		ID:         id,
	}
	if op == "DELETE" {
		change.Deleted = true
	} else {
		ctx, cancel := context.WithTimeout(l.ctx, 5*time.Second)
		doc, err := l.s.Get(ctx, collection, id)
		cancel()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				change.Deleted = true
			} else {
				slog.Error("failed to read changed document", slog.String("collection", collection), slog.String("id", id), slog.Any("err", err))
				return
			}
		} else {
			change.Doc = doc
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs[collection] {
		select {
		case ch <- change:
		default:
			// Slow consumer, drop. Watchers re-read on demand.
		}
	}
}
