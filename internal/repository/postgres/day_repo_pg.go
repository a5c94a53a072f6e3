package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/repository/ports"
)

const dayColumns = `id, trip_id, day_date, notes, created_at`

type DayRepository struct {
	db *sqlx.DB
}

func NewDayRepo(db *sqlx.DB) *DayRepository {
	return &DayRepository{db: db}
}

// CreateRange inserts every date inside one transaction. A failing insert
// rolls the whole range back so a trip never ends up with a partial set of
// days.
func (r *DayRepository) CreateRange(ctx context.Context, tripID uuid.UUID, dates []time.Time) ([]domain.ItineraryDay, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO itinerary_day (trip_id, day_date)
		VALUES ($1, $2)
		RETURNING ` + dayColumns

	days := make([]domain.ItineraryDay, 0, len(dates))
	for _, date := range dates {
		var day domain.ItineraryDay
		if err := tx.GetContext(ctx, &day, query, tripID, date); err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return days, nil
}

func (r *DayRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ItineraryDay, error) {
	const query = `
		SELECT ` + dayColumns + `
		FROM itinerary_day
		WHERE trip_id = $1
		ORDER BY day_date ASC
	`
	days := make([]domain.ItineraryDay, 0)
	if err := r.db.SelectContext(ctx, &days, query, tripID); err != nil {
		return nil, err
	}
	return days, nil
}

func (r *DayRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ItineraryDay, error) {
	const query = `
		SELECT ` + dayColumns + `
		FROM itinerary_day
		WHERE id = $1
	`
	var day domain.ItineraryDay
	if err := r.db.GetContext(ctx, &day, query, id); err != nil {
		return nil, err
	}
	return &day, nil
}

var _ ports.DayRepository = (*DayRepository)(nil)
