package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/campushq/unievents/server/store"
)

// SubscribeEvents streams the full event list as server-sent events: one
// snapshot on connect, then one per committed change. Consumers replace
// their state with each snapshot rather than merging. The subscription is
// closed when the client disconnects.
func (h *handler) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	h.subscribe(w, r, h.Ledger.WatchEvents, func(ctx context.Context) (any, error) {
		events, err := h.Ledger.ListEvents(ctx)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		snapshot := make([]Event, 0, len(events))
		for _, event := range events {
			snapshot = append(snapshot, newEvent(event, now))
		}
		return snapshot, nil
	})
}

// SubscribeProposals streams proposal list snapshots the same way.
func (h *handler) SubscribeProposals(w http.ResponseWriter, r *http.Request) {
	clubID := r.URL.Query().Get("club_id")
	h.subscribe(w, r, h.Ledger.WatchProposals, func(ctx context.Context) (any, error) {
		proposals, err := h.Ledger.ListProposals(ctx, clubID)
		if err != nil {
			return nil, err
		}
		snapshot := make([]Proposal, 0, len(proposals))
		for _, proposal := range proposals {
			snapshot = append(snapshot, newProposal(proposal))
		}
		return snapshot, nil
	})
}

func (h *handler) subscribe(
	w http.ResponseWriter,
	r *http.Request,
	watch func(ctx context.Context) (*store.Subscription, error),
	snapshot func(ctx context.Context) (any, error),
) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := watch(ctx)
	if err != nil {
		h.error(w, r, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if !h.push(ctx, w, snapshot) {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
			// Drain bursts so one snapshot covers them all.
			for {
				select {
				case _, ok = <-sub.C:
					if !ok {
						return
					}
					continue
				default:
				}
				break
			}
			if !h.push(ctx, w, snapshot) {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *handler) push(ctx context.Context, w http.ResponseWriter, snapshot func(ctx context.Context) (any, error)) bool {
	v, err := snapshot(ctx)
	if err != nil {
		return false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	if _, err = fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return false
	}
	return true
}
