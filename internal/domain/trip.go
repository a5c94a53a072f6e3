package domain

import (
	"time"

	"github.com/google/uuid"
)

type Trip struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Title     string    `db:"title" json:"title"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ItineraryDay is one calendar date of a trip. The date is unique within the
// trip; day rows are created in bulk when the trip's date range is set and
// are removed in cascade with the trip.
type ItineraryDay struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TripID    uuid.UUID `db:"trip_id" json:"trip_id"`
	Date      time.Time `db:"day_date" json:"date"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PlaceAttachment binds a catalog place to a specific day of a trip and
// carries the per-trip state that must not leak into the shared Place row.
// SortKey is the ordering token within the day; keys are sparse (allocated in
// steps of 100) and not required to be contiguous.
type PlaceAttachment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	DayID         uuid.UUID  `db:"day_id" json:"day_id"`
	PlaceID       uuid.UUID  `db:"place_id" json:"place_id"`
	SortKey       int64      `db:"sort_key" json:"sort_key"`
	ScheduledAt   *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	Visited       bool       `db:"visited" json:"visited"`
	Rating        *int       `db:"rating" json:"rating,omitempty"`
	DurationMins  *int       `db:"duration_mins" json:"duration_mins,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// AttachmentUserFields is the caller-supplied state for a new attachment.
type AttachmentUserFields struct {
	ScheduledAt  *time.Time
	Notes        *string
	Rating       *int
	DurationMins *int
}

// AttachmentUpdate is a partial edit; nil fields are left untouched.
type AttachmentUpdate struct {
	ScheduledAt  *time.Time
	Notes        *string
	Rating       *int
	DurationMins *int
	Visited      *bool
}

// DayView is a day together with its attachments in display order.
type DayView struct {
	Day         ItineraryDay      `json:"day"`
	Attachments []PlaceAttachment `json:"attachments"`
}
