package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campushq/unievents/server/store"
)

// FileComplaint records a complaint from any signed-in user.
func (s *Service) FileComplaint(ctx context.Context, authorID string, title string, body string) (Complaint, error) {
	if title == "" {
		err := fmt.Errorf("complaint title is required: %w", ErrInvalidArgument)
		operationsTotal.WithLabelValues("file_complaint", statusLabel(err)).Inc()
		return Complaint{}, err
	}

	complaint := Complaint{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		Status:    ComplaintOpen,
		CreatedAt: s.now(),
	}
	err := s.run(ctx, "file_complaint", func(tx store.Tx) error {
		if _, err := s.txUser(tx, authorID); err != nil {
			return err
		}
		return create(tx, store.CollectionComplaints, complaint.ID, complaint)
	})
	if err != nil {
		return Complaint{}, err
	}
	return complaint, nil
}

// MarkComplaintSeen adds the admin to the complaint's seenBy set. Club
// admins and the head may review complaints.
func (s *Service) MarkComplaintSeen(ctx context.Context, complaintID string, actorID string) error {
	return s.run(ctx, "mark_complaint_seen", func(tx store.Tx) error {
		if _, err := s.requireRole(tx, actorID, RoleClub, RoleHead); err != nil {
			return err
		}
		complaint, err := s.txComplaint(tx, complaintID)
		if err != nil {
			return err
		}

		before := len(complaint.SeenBy)
		complaint.SeenBy = addToSet(complaint.SeenBy, actorID)
		if len(complaint.SeenBy) == before {
			return nil
		}
		return put(tx, store.CollectionComplaints, complaintID, complaint)
	})
}

// CloseComplaint marks the complaint closed. Closing is forward-only;
// closing a closed complaint is a no-op.
func (s *Service) CloseComplaint(ctx context.Context, complaintID string, actorID string) error {
	return s.run(ctx, "close_complaint", func(tx store.Tx) error {
		if _, err := s.requireRole(tx, actorID, RoleClub, RoleHead); err != nil {
			return err
		}
		complaint, err := s.txComplaint(tx, complaintID)
		if err != nil {
			return err
		}

		if complaint.Status == ComplaintClosed {
			return nil
		}
		complaint.Status = ComplaintClosed
		return put(tx, store.CollectionComplaints, complaintID, complaint)
	})
}
