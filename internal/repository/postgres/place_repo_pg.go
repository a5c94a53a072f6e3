package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/repository/ports"
)

const placeColumns = `
	id, external_id, name, formatted_address, summary, description, tags,
	latitude, longitude, country_code, country_name, photo_ref,
	created_at, updated_at
`

type PlaceRepository struct {
	db *sqlx.DB
}

func NewPlaceRepo(db *sqlx.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func (r *PlaceRepository) Create(ctx context.Context, externalID string, fields domain.PlaceFields) (*domain.Place, error) {
	const query = `
		INSERT INTO place (
			external_id, name, formatted_address, summary, description, tags,
			latitude, longitude, country_code, country_name, photo_ref
		) VALUES (
			:external_id, :name, :formatted_address, :summary, :description, :tags,
			:latitude, :longitude, :country_code, :country_name, :photo_ref
		)
		RETURNING ` + placeColumns

	args := map[string]any{
		"external_id":       strings.TrimSpace(externalID),
		"name":              strings.TrimSpace(fields.Name),
		"formatted_address": nullString(fields.FormattedAddress),
		"summary":           nullString(fields.Summary),
		"description":       nullString(fields.Description),
		"tags":              fields.Tags,
		"latitude":          nullFloat(fields.Latitude),
		"longitude":         nullFloat(fields.Longitude),
		"country_code":      nullString(fields.CountryCode),
		"country_name":      nullString(fields.CountryName),
		"photo_ref":         nullString(fields.PhotoRef),
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var place domain.Place
		if err := rows.StructScan(&place); err != nil {
			return nil, err
		}
		return &place, nil
	}
	return nil, sql.ErrNoRows
}

func (r *PlaceRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Place, error) {
	const query = `
		SELECT ` + placeColumns + `
		FROM place
		WHERE external_id = $1
	`
	var place domain.Place
	if err := r.db.GetContext(ctx, &place, query, strings.TrimSpace(externalID)); err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *PlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Place, error) {
	const query = `
		SELECT ` + placeColumns + `
		FROM place
		WHERE id = $1
	`
	var place domain.Place
	if err := r.db.GetContext(ctx, &place, query, id); err != nil {
		return nil, err
	}
	return &place, nil
}

// Delete relies on the trip_place foreign key being ON DELETE RESTRICT: a
// place still referenced by any attachment fails with a foreign key
// violation that the service maps to a conflict.
func (r *PlaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM place WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.PlaceRepository = (*PlaceRepository)(nil)
