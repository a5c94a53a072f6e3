package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/repository/ports"
)

var (
	ErrPlaceValidation = errors.New("place validation failed")
	ErrPlaceNotFound   = errors.New("place not found")
	ErrPlaceInUse      = errors.New("place is still referenced by an itinerary")
)

// CatalogService owns the shared place catalog. Rows are insert-if-absent
// only: once a place exists its metadata is never overwritten by later
// lookups, so richer data fetched earlier cannot be clobbered.
type CatalogService struct {
	places ports.PlaceRepository
}

func NewCatalogService(placeRepo ports.PlaceRepository) *CatalogService {
	return &CatalogService{places: placeRepo}
}

// FindOrCreatePlace resolves the catalog row for an external place id,
// inserting it on first reference. Two itineraries racing on the same id are
// arbitrated by the unique constraint: the loser re-reads the winner's row
// instead of surfacing the conflict.
func (s *CatalogService) FindOrCreatePlace(ctx context.Context, externalID string, fields domain.PlaceFields) (*domain.Place, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", ErrPlaceValidation)
	}

	existing, err := s.places.FindByExternalID(ctx, externalID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	if strings.TrimSpace(fields.Name) == "" {
		return nil, fmt.Errorf("%w: name is required for a new place", ErrPlaceValidation)
	}

	created, err := s.places.Create(ctx, externalID, fields)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the insert race; the row exists now.
			return s.places.FindByExternalID(ctx, externalID)
		}
		return nil, err
	}
	return created, nil
}

func (s *CatalogService) GetPlace(ctx context.Context, id uuid.UUID) (*domain.Place, error) {
	place, err := s.places.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}
	return place, nil
}

// DeletePlace removes a catalog row. The catalog is shared infrastructure:
// the database restricts the delete while any attachment references the
// place, which surfaces here as ErrPlaceInUse.
func (s *CatalogService) DeletePlace(ctx context.Context, id uuid.UUID) error {
	if err := s.places.Delete(ctx, id); err != nil {
		switch {
		case isNotFound(err):
			return ErrPlaceNotFound
		case isForeignKeyViolation(err):
			return ErrPlaceInUse
		default:
			return err
		}
	}
	return nil
}
