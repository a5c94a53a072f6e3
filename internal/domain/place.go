package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TagList is an ordered list of category tags stored as a Postgres text
// array.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	return pq.StringArray(t).Value()
}

func (t *TagList) Scan(value any) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return err
	}
	*t = TagList(arr)
	return nil
}

// Place is a canonical catalog row shared by every itinerary. There is
// exactly one row per external provider id; once written the metadata is
// treated as append-only fact and is never overwritten by later lookups.
type Place struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ExternalID       string    `db:"external_id" json:"external_id"`
	Name             string    `db:"name" json:"name"`
	FormattedAddress *string   `db:"formatted_address" json:"formatted_address,omitempty"`
	Summary          *string   `db:"summary" json:"summary,omitempty"`
	Description      *string   `db:"description" json:"description,omitempty"`
	Tags             TagList   `db:"tags" json:"tags,omitempty"`
	Latitude         *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude        *float64  `db:"longitude" json:"longitude,omitempty"`
	CountryCode      *string   `db:"country_code" json:"country_code,omitempty"`
	CountryName      *string   `db:"country_name" json:"country_name,omitempty"`
	PhotoRef         *string   `db:"photo_ref" json:"photo_ref,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// PlaceFields carries the provider metadata used when a place is first
// inserted into the catalog. Existing rows are returned unchanged.
type PlaceFields struct {
	Name             string
	FormattedAddress *string
	Summary          *string
	Description      *string
	Tags             TagList
	Latitude         *float64
	Longitude        *float64
	CountryCode      *string
	CountryName      *string
	PhotoRef         *string
}
