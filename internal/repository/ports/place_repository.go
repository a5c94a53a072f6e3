package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
)

type PlaceRepository interface {
	// Create inserts a new catalog row. A concurrent insert with the same
	// external id surfaces the database unique violation unchanged so the
	// caller can recover by re-reading.
	Create(ctx context.Context, externalID string, fields domain.PlaceFields) (*domain.Place, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Place, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Place, error)
	// Delete removes a catalog row. The database restricts the delete while
	// any attachment still references the place.
	Delete(ctx context.Context, id uuid.UUID) error
}
