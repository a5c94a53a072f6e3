package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/repository/ports"
)

const tripColumns = `id, owner_id, title, start_date, end_date, created_at, updated_at`

type TripRepository struct {
	db *sqlx.DB
}

func NewTripRepo(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	const query = `
		INSERT INTO trip (owner_id, title, start_date, end_date)
		VALUES (:owner_id, :title, :start_date, :end_date)
		RETURNING ` + tripColumns

	args := map[string]any{
		"owner_id":   trip.OwnerID,
		"title":      trip.Title,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.Trip
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *TripRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	const query = `
		SELECT ` + tripColumns + `
		FROM trip
		WHERE id = $1
	`
	var trip domain.Trip
	if err := r.db.GetContext(ctx, &trip, query, id); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Trip, error) {
	const query = `
		SELECT ` + tripColumns + `
		FROM trip
		WHERE owner_id = $1
		ORDER BY start_date DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	trips := make([]domain.Trip, 0)
	if err := r.db.SelectContext(ctx, &trips, query, ownerID, limit, offset); err != nil {
		return nil, err
	}
	return trips, nil
}

var _ ports.TripRepository = (*TripRepository)(nil)
