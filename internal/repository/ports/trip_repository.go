package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
)

type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Trip, error)
}
