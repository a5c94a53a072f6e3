package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/ordering"
	"github.com/wayplanhq/wayplan-backend/internal/places"
	"github.com/wayplanhq/wayplan-backend/internal/repository/ports"
)

var (
	// Not-found and not-owned are deliberately indistinguishable to the
	// caller so resource existence never leaks across accounts.
	ErrTripNotFound        = errors.New("trip not found")
	ErrDayNotFound         = errors.New("day not found")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrItineraryValidation = errors.New("itinerary validation failed")
	ErrOrderMismatch       = errors.New("declared order does not match the day's attachments")
)

// PlaceRef identifies the place being attached. Fields may be empty, in
// which case full metadata is fetched from the detail provider before the
// catalog row is first created.
type PlaceRef struct {
	ExternalID string
	Fields     domain.PlaceFields
}

type ItineraryService struct {
	trips       ports.TripRepository
	days        ports.DayRepository
	attachments ports.AttachmentRepository
	catalog     *CatalogService
	details     places.DetailProvider
}

func NewItineraryService(
	tripRepo ports.TripRepository,
	dayRepo ports.DayRepository,
	attachmentRepo ports.AttachmentRepository,
	catalog *CatalogService,
	details places.DetailProvider,
) *ItineraryService {
	return &ItineraryService{
		trips:       tripRepo,
		days:        dayRepo,
		attachments: attachmentRepo,
		catalog:     catalog,
		details:     details,
	}
}

// CreateTrip stores the trip row and bulk-creates one itinerary day per
// calendar date of the range, start and end inclusive.
func (s *ItineraryService) CreateTrip(ctx context.Context, actorID uuid.UUID, title string, start, end time.Time) (*domain.Trip, []domain.ItineraryDay, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil, fmt.Errorf("%w: title is required", ErrItineraryValidation)
	}
	dates, err := datesInRange(start, end)
	if err != nil {
		return nil, nil, err
	}

	trip, err := s.trips.Create(ctx, &domain.Trip{
		OwnerID:   actorID,
		Title:     title,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, nil, err
	}

	days, err := s.days.CreateRange(ctx, trip.ID, dates)
	if err != nil {
		return nil, nil, err
	}
	return trip, days, nil
}

// CreateDaysForRange bulk-creates day rows for an existing trip. This only
// runs when a trip's date range is established, so it is not idempotent; it
// is however all-or-nothing.
func (s *ItineraryService) CreateDaysForRange(ctx context.Context, actorID, tripID uuid.UUID, start, end time.Time) ([]domain.ItineraryDay, error) {
	if _, err := s.ownedTrip(ctx, actorID, tripID); err != nil {
		return nil, err
	}
	dates, err := datesInRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.days.CreateRange(ctx, tripID, dates)
}

func (s *ItineraryService) ListTrips(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]domain.Trip, error) {
	return s.trips.ListByOwner(ctx, actorID, limit, offset)
}

func (s *ItineraryService) ListDays(ctx context.Context, actorID, tripID uuid.UUID) ([]domain.ItineraryDay, error) {
	if _, err := s.ownedTrip(ctx, actorID, tripID); err != nil {
		return nil, err
	}
	return s.days.ListByTrip(ctx, tripID)
}

func (s *ItineraryService) GetDayWithAttachments(ctx context.Context, actorID, dayID uuid.UUID) (*domain.DayView, error) {
	day, err := s.ownedDay(ctx, actorID, dayID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	return &domain.DayView{Day: *day, Attachments: attachments}, nil
}

// AddPlaceToDay resolves (or first-creates) the catalog row for the place
// reference, computes an append sort key, and inserts the attachment at the
// end of the day's list. Drag placement is a follow-up ReorderDay call.
//
// There is no client idempotency token on this path: a retry after a
// timed-out-but-committed request creates a second attachment for the same
// place. Callers must treat the returned attachment as authoritative.
func (s *ItineraryService) AddPlaceToDay(ctx context.Context, actorID, dayID uuid.UUID, ref PlaceRef, userFields domain.AttachmentUserFields) (*domain.PlaceAttachment, error) {
	externalID := strings.TrimSpace(ref.ExternalID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: external place id is required", ErrItineraryValidation)
	}
	if userFields.Rating != nil && (*userFields.Rating < 1 || *userFields.Rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrItineraryValidation)
	}

	if _, err := s.ownedDay(ctx, actorID, dayID); err != nil {
		return nil, err
	}

	fields := ref.Fields
	if strings.TrimSpace(fields.Name) == "" && s.details != nil {
		fetched, err := s.details.Details(ctx, externalID)
		if err != nil {
			return nil, err
		}
		fields = *fetched
	}

	place, err := s.catalog.FindOrCreatePlace(ctx, externalID, fields)
	if err != nil {
		return nil, err
	}

	current, err := s.attachments.ListByDay(ctx, dayID)
	if err != nil {
		return nil, err
	}

	attachment := &domain.PlaceAttachment{
		DayID:        dayID,
		PlaceID:      place.ID,
		SortKey:      ordering.NextAppendKey(sortKeys(current)),
		ScheduledAt:  userFields.ScheduledAt,
		Notes:        userFields.Notes,
		Rating:       userFields.Rating,
		DurationMins: userFields.DurationMins,
	}
	return s.attachments.Insert(ctx, attachment)
}

// ReorderDay applies a client-declared full ordering for a day. It is the
// authoritative bulk path behind drag-and-drop: every attachment gets a key
// at standard spacing in one transaction, replacing whatever the day held.
// Concurrent reorders from different sessions are last-write-wins; there is
// no merge or version check.
func (s *ItineraryService) ReorderDay(ctx context.Context, actorID, dayID uuid.UUID, orderedIDs []uuid.UUID) error {
	if _, err := s.ownedDay(ctx, actorID, dayID); err != nil {
		return err
	}

	current, err := s.attachments.ListByDay(ctx, dayID)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(current) {
		return ErrOrderMismatch
	}
	present := make(map[uuid.UUID]struct{}, len(current))
	for _, attachment := range current {
		present[attachment.ID] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := present[id]; !ok {
			return ErrOrderMismatch
		}
		if _, dup := seen[id]; dup {
			return ErrOrderMismatch
		}
		seen[id] = struct{}{}
	}

	fresh := ordering.ReassignKeys(len(orderedIDs))
	keys := make([]ports.AttachmentKey, len(orderedIDs))
	for i, id := range orderedIDs {
		keys[i] = ports.AttachmentKey{AttachmentID: id, SortKey: fresh[i]}
	}
	return s.attachments.ReassignKeys(ctx, dayID, keys)
}

// MoveAttachment rebinds an attachment to a target day at the given
// position. The sort key comes from the target's neighbors at that position;
// when no integer gap remains there, the target day is renumbered at
// standard spacing first.
func (s *ItineraryService) MoveAttachment(ctx context.Context, actorID, attachmentID, targetDayID uuid.UUID, position int) (*domain.PlaceAttachment, error) {
	attachment, err := s.attachments.FindByID(ctx, attachmentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	if _, err := s.ownedDay(ctx, actorID, attachment.DayID); err != nil {
		return nil, err
	}
	if _, err := s.ownedDay(ctx, actorID, targetDayID); err != nil {
		return nil, err
	}

	target, err := s.attachments.ListByDay(ctx, targetDayID)
	if err != nil {
		return nil, err
	}
	// A move within the same day must not count the moving attachment as
	// its own neighbor.
	neighbors := target[:0:0]
	for _, a := range target {
		if a.ID != attachmentID {
			neighbors = append(neighbors, a)
		}
	}

	before, after := ordering.NeighborsAt(sortKeys(neighbors), position)
	key, ok := ordering.InsertBetween(before, after)
	if !ok {
		if err := s.renumberDay(ctx, targetDayID, neighbors); err != nil {
			return nil, err
		}
		before, after = ordering.NeighborsAt(ordering.ReassignKeys(len(neighbors)), position)
		if key, ok = ordering.InsertBetween(before, after); !ok {
			return nil, fmt.Errorf("no usable sort key after renumbering day %s", targetDayID)
		}
	}

	return s.attachments.Rebind(ctx, attachmentID, targetDayID, key)
}

func (s *ItineraryService) UpdateAttachment(ctx context.Context, actorID, attachmentID uuid.UUID, update domain.AttachmentUpdate) (*domain.PlaceAttachment, error) {
	if update.Rating != nil && (*update.Rating < 1 || *update.Rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrItineraryValidation)
	}
	attachment, err := s.attachments.FindByID(ctx, attachmentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	if _, err := s.ownedDay(ctx, actorID, attachment.DayID); err != nil {
		return nil, err
	}
	return s.attachments.Update(ctx, attachmentID, update)
}

// DeleteAttachment removes a single attachment. Keys are sparse by design,
// so the rest of the day keeps its keys untouched.
func (s *ItineraryService) DeleteAttachment(ctx context.Context, actorID, attachmentID uuid.UUID) error {
	attachment, err := s.attachments.FindByID(ctx, attachmentID)
	if err != nil {
		if isNotFound(err) {
			return ErrAttachmentNotFound
		}
		return err
	}
	if _, err := s.ownedDay(ctx, actorID, attachment.DayID); err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		if isNotFound(err) {
			return ErrAttachmentNotFound
		}
		return err
	}
	return nil
}

// renumberDay reissues keys at standard spacing in the day's current display
// order, preserving that order exactly.
func (s *ItineraryService) renumberDay(ctx context.Context, dayID uuid.UUID, current []domain.PlaceAttachment) error {
	fresh := ordering.ReassignKeys(len(current))
	keys := make([]ports.AttachmentKey, len(current))
	for i, attachment := range current {
		keys[i] = ports.AttachmentKey{AttachmentID: attachment.ID, SortKey: fresh[i]}
	}
	return s.attachments.ReassignKeys(ctx, dayID, keys)
}

func (s *ItineraryService) ownedTrip(ctx context.Context, actorID, tripID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	if trip.OwnerID != actorID {
		return nil, ErrTripNotFound
	}
	return trip, nil
}

func (s *ItineraryService) ownedDay(ctx context.Context, actorID, dayID uuid.UUID) (*domain.ItineraryDay, error) {
	day, err := s.days.FindByID(ctx, dayID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}
	if _, err := s.ownedTrip(ctx, actorID, day.TripID); err != nil {
		return nil, ErrDayNotFound
	}
	return day, nil
}

func sortKeys(attachments []domain.PlaceAttachment) []int64 {
	keys := make([]int64, len(attachments))
	for i, attachment := range attachments {
		keys[i] = attachment.SortKey
	}
	return keys
}

func datesInRange(start, end time.Time) ([]time.Time, error) {
	startDay := truncateToDate(start)
	endDay := truncateToDate(end)
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrItineraryValidation)
	}
	var dates []time.Time
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
