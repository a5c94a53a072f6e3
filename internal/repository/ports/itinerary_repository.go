package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
)

type DayRepository interface {
	// CreateRange inserts one day per date in a single transaction. Either
	// every date is created or none are.
	CreateRange(ctx context.Context, tripID uuid.UUID, dates []time.Time) ([]domain.ItineraryDay, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ItineraryDay, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ItineraryDay, error)
}

// AttachmentKey pairs an attachment with the sort key it should receive in a
// bulk reassignment.
type AttachmentKey struct {
	AttachmentID uuid.UUID
	SortKey      int64
}

type AttachmentRepository interface {
	Insert(ctx context.Context, attachment *domain.PlaceAttachment) (*domain.PlaceAttachment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PlaceAttachment, error)
	// ListByDay returns attachments ordered by sort key ascending, ties
	// broken by attachment id so display order is always well defined.
	ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.PlaceAttachment, error)
	Update(ctx context.Context, id uuid.UUID, update domain.AttachmentUpdate) (*domain.PlaceAttachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ReassignKeys rewrites sort keys for a day inside one transaction so a
	// partial failure can never leave the day half renumbered.
	ReassignKeys(ctx context.Context, dayID uuid.UUID, keys []AttachmentKey) error
	// Rebind moves an attachment to another day with a fresh sort key.
	Rebind(ctx context.Context, attachmentID, targetDayID uuid.UUID, sortKey int64) (*domain.PlaceAttachment, error)
}
