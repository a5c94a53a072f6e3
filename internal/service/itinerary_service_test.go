package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
)

type fakeDetails struct {
	fields *domain.PlaceFields
	calls  []string
	err    error
}

func (f *fakeDetails) Details(_ context.Context, externalID string) (*domain.PlaceFields, error) {
	f.calls = append(f.calls, externalID)
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

type itineraryFixture struct {
	svc         *ItineraryService
	trips       *fakeTripRepo
	days        *fakeDayRepo
	attachments *fakeAttachmentRepo
	places      *fakePlaceRepo
	details     *fakeDetails
	owner       uuid.UUID
}

func newItineraryFixture() *itineraryFixture {
	trips := newFakeTripRepo()
	days := newFakeDayRepo()
	attachments := newFakeAttachmentRepo()
	places := newFakePlaceRepo()
	details := &fakeDetails{fields: &domain.PlaceFields{Name: "Fetched Place"}}

	return &itineraryFixture{
		svc:         NewItineraryService(trips, days, attachments, NewCatalogService(places), details),
		trips:       trips,
		days:        days,
		attachments: attachments,
		places:      places,
		details:     details,
		owner:       uuid.New(),
	}
}

func (f *itineraryFixture) mustCreateTrip(t *testing.T, start, end time.Time) (*domain.Trip, []domain.ItineraryDay) {
	t.Helper()
	trip, days, err := f.svc.CreateTrip(context.Background(), f.owner, "City break", start, end)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return trip, days
}

func (f *itineraryFixture) mustAttach(t *testing.T, dayID uuid.UUID, externalID string) *domain.PlaceAttachment {
	t.Helper()
	attachment, err := f.svc.AddPlaceToDay(context.Background(), f.owner, dayID, PlaceRef{
		ExternalID: externalID,
		Fields:     domain.PlaceFields{Name: "Place " + externalID},
	}, domain.AttachmentUserFields{})
	if err != nil {
		t.Fatalf("attach %s: %v", externalID, err)
	}
	return attachment
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateTripCreatesOneDayPerDate(t *testing.T) {
	f := newItineraryFixture()
	trip, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 3))

	if len(days) != 3 {
		t.Fatalf("expected 3 days for an inclusive 3-date range, got %d", len(days))
	}
	for i, day := range days {
		want := date(2026, time.June, 1+i)
		if !day.Date.Equal(want) {
			t.Fatalf("day %d: expected date %v, got %v", i, want, day.Date)
		}
		if day.TripID != trip.ID {
			t.Fatalf("day %d bound to trip %s, want %s", i, day.TripID, trip.ID)
		}
	}
}

func TestCreateTripSingleDateRange(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 5), date(2026, time.June, 5))
	if len(days) != 1 {
		t.Fatalf("expected a single day when start equals end, got %d", len(days))
	}
}

func TestCreateTripValidation(t *testing.T) {
	f := newItineraryFixture()
	ctx := context.Background()

	if _, _, err := f.svc.CreateTrip(ctx, f.owner, "   ", date(2026, time.June, 1), date(2026, time.June, 2)); !errors.Is(err, ErrItineraryValidation) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}
	if _, _, err := f.svc.CreateTrip(ctx, f.owner, "Trip", date(2026, time.June, 3), date(2026, time.June, 1)); !errors.Is(err, ErrItineraryValidation) {
		t.Fatalf("expected validation error for reversed range, got %v", err)
	}
}

func TestCreateTripPropagatesDayRangeFailure(t *testing.T) {
	f := newItineraryFixture()
	f.days.rangeErr = errors.New("deadlock detected")

	_, _, err := f.svc.CreateTrip(context.Background(), f.owner, "Trip", date(2026, time.June, 1), date(2026, time.June, 3))
	if err == nil {
		t.Fatal("expected the day-range failure to surface")
	}

	days, listErr := f.svc.ListDays(context.Background(), f.owner, mustSingleTripID(t, f))
	if listErr != nil {
		t.Fatalf("list days: %v", listErr)
	}
	if len(days) != 0 {
		t.Fatalf("expected no days after an all-or-nothing failure, got %d", len(days))
	}
}

func mustSingleTripID(t *testing.T, f *itineraryFixture) uuid.UUID {
	t.Helper()
	trips, err := f.svc.ListTrips(context.Background(), f.owner, 10, 0)
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	return trips[0].ID
}

func TestAddPlaceToDayAppendsWithSparseKeys(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	dayID := days[0].ID

	first := f.mustAttach(t, dayID, "prov:a")
	second := f.mustAttach(t, dayID, "prov:b")
	third := f.mustAttach(t, dayID, "prov:c")

	if first.SortKey != 100 || second.SortKey != 200 || third.SortKey != 300 {
		t.Fatalf("expected keys 100/200/300, got %d/%d/%d", first.SortKey, second.SortKey, third.SortKey)
	}

	view, err := f.svc.GetDayWithAttachments(context.Background(), f.owner, dayID)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	wantOrder := []uuid.UUID{first.ID, second.ID, third.ID}
	for i, attachment := range view.Attachments {
		if attachment.ID != wantOrder[i] {
			t.Fatalf("position %d: expected %s, got %s", i, wantOrder[i], attachment.ID)
		}
	}
}

func TestAddPlaceToDayFetchesMissingMetadata(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))

	attachment, err := f.svc.AddPlaceToDay(context.Background(), f.owner, days[0].ID, PlaceRef{ExternalID: "prov:unknown"}, domain.AttachmentUserFields{})
	if err != nil {
		t.Fatalf("attach with provider lookup: %v", err)
	}
	if len(f.details.calls) != 1 || f.details.calls[0] != "prov:unknown" {
		t.Fatalf("expected one detail lookup for prov:unknown, got %v", f.details.calls)
	}

	place, err := f.places.FindByID(context.Background(), attachment.PlaceID)
	if err != nil {
		t.Fatalf("catalog row: %v", err)
	}
	if place.Name != "Fetched Place" {
		t.Fatalf("expected provider metadata on the catalog row, got %q", place.Name)
	}
}

// A retried add after a timed-out-but-committed request has no idempotency
// token to dedupe on, so it lands a second attachment to the same place.
func TestAddPlaceToDayRetryDuplicatesAttachment(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	dayID := days[0].ID

	first := f.mustAttach(t, dayID, "prov:same")
	second := f.mustAttach(t, dayID, "prov:same")

	if first.ID == second.ID {
		t.Fatal("expected two distinct attachments")
	}
	if first.PlaceID != second.PlaceID {
		t.Fatalf("expected both attachments to share the catalog row, got %s and %s", first.PlaceID, second.PlaceID)
	}
	if f.places.creates != 1 {
		t.Fatalf("expected a single catalog insert, got %d", f.places.creates)
	}
}

func TestAddPlaceToDayRatingValidation(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))

	rating := 6
	_, err := f.svc.AddPlaceToDay(context.Background(), f.owner, days[0].ID, PlaceRef{
		ExternalID: "prov:x",
		Fields:     domain.PlaceFields{Name: "X"},
	}, domain.AttachmentUserFields{Rating: &rating})
	if !errors.Is(err, ErrItineraryValidation) {
		t.Fatalf("expected validation error for rating 6, got %v", err)
	}
}

func TestReorderDayAppliesDeclaredOrder(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	dayID := days[0].ID

	a := f.mustAttach(t, dayID, "prov:a")
	b := f.mustAttach(t, dayID, "prov:b")
	c := f.mustAttach(t, dayID, "prov:c")

	if err := f.svc.ReorderDay(context.Background(), f.owner, dayID, []uuid.UUID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	view, err := f.svc.GetDayWithAttachments(context.Background(), f.owner, dayID)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	wantOrder := []uuid.UUID{c.ID, a.ID, b.ID}
	for i, attachment := range view.Attachments {
		if attachment.ID != wantOrder[i] {
			t.Fatalf("position %d: expected %s, got %s", i, wantOrder[i], attachment.ID)
		}
		if want := int64((i + 1) * 100); attachment.SortKey != want {
			t.Fatalf("position %d: expected key %d, got %d", i, want, attachment.SortKey)
		}
	}
}

func TestReorderDayRejectsMismatchedSets(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	dayID := days[0].ID

	a := f.mustAttach(t, dayID, "prov:a")
	b := f.mustAttach(t, dayID, "prov:b")
	ctx := context.Background()

	cases := map[string][]uuid.UUID{
		"too short":  {a.ID},
		"unknown id": {a.ID, uuid.New()},
		"duplicate":  {a.ID, a.ID},
	}
	for name, ids := range cases {
		if err := f.svc.ReorderDay(ctx, f.owner, dayID, ids); !errors.Is(err, ErrOrderMismatch) {
			t.Fatalf("%s: expected ErrOrderMismatch, got %v", name, err)
		}
	}

	// The failed attempts must not have touched the stored keys.
	view, err := f.svc.GetDayWithAttachments(ctx, f.owner, dayID)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if view.Attachments[0].ID != a.ID || view.Attachments[1].ID != b.ID {
		t.Fatal("order changed after rejected reorders")
	}
}

func TestReorderDayFailedTransactionLeavesKeysIntact(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	dayID := days[0].ID

	a := f.mustAttach(t, dayID, "prov:a")
	b := f.mustAttach(t, dayID, "prov:b")

	f.attachments.reassignErr = errors.New("connection reset mid-transaction")
	err := f.svc.ReorderDay(context.Background(), f.owner, dayID, []uuid.UUID{b.ID, a.ID})
	if err == nil {
		t.Fatal("expected the reorder to fail")
	}

	f.attachments.reassignErr = nil
	view, err := f.svc.GetDayWithAttachments(context.Background(), f.owner, dayID)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if view.Attachments[0].ID != a.ID || view.Attachments[0].SortKey != 100 {
		t.Fatal("first attachment changed after rolled-back reorder")
	}
	if view.Attachments[1].ID != b.ID || view.Attachments[1].SortKey != 200 {
		t.Fatal("second attachment changed after rolled-back reorder")
	}
}

func TestMoveAttachmentBisectsTargetGap(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 2))
	source, target := days[0].ID, days[1].ID

	moving := f.mustAttach(t, source, "prov:moving")
	f.mustAttach(t, target, "prov:t1")
	f.mustAttach(t, target, "prov:t2")

	moved, err := f.svc.MoveAttachment(context.Background(), f.owner, moving.ID, target, 1)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.DayID != target {
		t.Fatalf("expected attachment on day %s, got %s", target, moved.DayID)
	}
	if moved.SortKey != 150 {
		t.Fatalf("expected midpoint key 150 between 100 and 200, got %d", moved.SortKey)
	}

	if f.attachments.reassigns != 0 {
		t.Fatalf("no renumbering expected while a gap exists, saw %d", f.attachments.reassigns)
	}
}

func TestMoveAttachmentRenumbersWhenGapExhausted(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 2))
	source, target := days[0].ID, days[1].ID

	moving := f.mustAttach(t, source, "prov:moving")
	first := f.mustAttach(t, target, "prov:t1")
	second := f.mustAttach(t, target, "prov:t2")

	// Force adjacent keys on the target day so position 1 has no integer
	// midpoint left.
	f.attachments.attachments[first.ID].SortKey = 1
	f.attachments.attachments[second.ID].SortKey = 2

	moved, err := f.svc.MoveAttachment(context.Background(), f.owner, moving.ID, target, 1)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if f.attachments.reassigns != 1 {
		t.Fatalf("expected one renumbering pass, got %d", f.attachments.reassigns)
	}

	view, err := f.svc.GetDayWithAttachments(context.Background(), f.owner, target)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	wantOrder := []uuid.UUID{first.ID, moved.ID, second.ID}
	for i, attachment := range view.Attachments {
		if attachment.ID != wantOrder[i] {
			t.Fatalf("position %d: expected %s, got %s", i, wantOrder[i], attachment.ID)
		}
	}
}

func TestMoveAttachmentWithinSameDay(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	dayID := days[0].ID

	a := f.mustAttach(t, dayID, "prov:a")
	b := f.mustAttach(t, dayID, "prov:b")
	c := f.mustAttach(t, dayID, "prov:c")

	// Move the last attachment to the front of its own day.
	if _, err := f.svc.MoveAttachment(context.Background(), f.owner, c.ID, dayID, 0); err != nil {
		t.Fatalf("move: %v", err)
	}

	view, err := f.svc.GetDayWithAttachments(context.Background(), f.owner, dayID)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	wantOrder := []uuid.UUID{c.ID, a.ID, b.ID}
	for i, attachment := range view.Attachments {
		if attachment.ID != wantOrder[i] {
			t.Fatalf("position %d: expected %s, got %s", i, wantOrder[i], attachment.ID)
		}
	}
}

func TestEqualKeysOrderByAttachmentID(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	dayID := days[0].ID

	a := f.mustAttach(t, dayID, "prov:a")
	b := f.mustAttach(t, dayID, "prov:b")

	// Two racing appends can land the same key. Reads must still agree on
	// one order until the next write normalizes the keys.
	f.attachments.attachments[a.ID].SortKey = 100
	f.attachments.attachments[b.ID].SortKey = 100

	first, err := f.svc.GetDayWithAttachments(context.Background(), f.owner, dayID)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	second, err := f.svc.GetDayWithAttachments(context.Background(), f.owner, dayID)
	if err != nil {
		t.Fatalf("get day again: %v", err)
	}
	for i := range first.Attachments {
		if first.Attachments[i].ID != second.Attachments[i].ID {
			t.Fatalf("position %d changed between reads", i)
		}
	}
	if first.Attachments[0].ID.String() > first.Attachments[1].ID.String() {
		t.Fatal("tie must break by ascending attachment id")
	}
}

func TestUpdateAttachmentPartialEdit(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	attachment := f.mustAttach(t, days[0].ID, "prov:a")

	notes := "book tickets ahead"
	visited := true
	updated, err := f.svc.UpdateAttachment(context.Background(), f.owner, attachment.ID, domain.AttachmentUpdate{
		Notes:   &notes,
		Visited: &visited,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("notes not applied: %v", updated.Notes)
	}
	if !updated.Visited {
		t.Fatal("visited not applied")
	}
	if updated.SortKey != attachment.SortKey {
		t.Fatalf("sort key changed by a field edit: %d -> %d", attachment.SortKey, updated.SortKey)
	}

	badRating := 0
	if _, err := f.svc.UpdateAttachment(context.Background(), f.owner, attachment.ID, domain.AttachmentUpdate{Rating: &badRating}); !errors.Is(err, ErrItineraryValidation) {
		t.Fatalf("expected validation error for rating 0, got %v", err)
	}
}

func TestDeleteAttachmentLeavesOtherKeysUntouched(t *testing.T) {
	f := newItineraryFixture()
	_, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	dayID := days[0].ID

	a := f.mustAttach(t, dayID, "prov:a")
	b := f.mustAttach(t, dayID, "prov:b")
	c := f.mustAttach(t, dayID, "prov:c")

	if err := f.svc.DeleteAttachment(context.Background(), f.owner, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	view, err := f.svc.GetDayWithAttachments(context.Background(), f.owner, dayID)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if len(view.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(view.Attachments))
	}
	if view.Attachments[0].ID != a.ID || view.Attachments[0].SortKey != 100 {
		t.Fatal("first attachment disturbed by the delete")
	}
	if view.Attachments[1].ID != c.ID || view.Attachments[1].SortKey != 300 {
		t.Fatal("surviving keys should stay sparse, not shift")
	}
}

func TestOwnershipIsIndistinguishableFromMissing(t *testing.T) {
	f := newItineraryFixture()
	trip, days := f.mustCreateTrip(t, date(2026, time.June, 1), date(2026, time.June, 1))
	stranger := uuid.New()
	ctx := context.Background()

	if _, err := f.svc.ListDays(ctx, stranger, trip.ID); !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound for a stranger, got %v", err)
	}
	if _, err := f.svc.GetDayWithAttachments(ctx, stranger, days[0].ID); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("expected ErrDayNotFound for a stranger, got %v", err)
	}

	attachment := f.mustAttach(t, days[0].ID, "prov:a")
	if err := f.svc.DeleteAttachment(ctx, stranger, attachment.ID); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("expected ErrDayNotFound for a stranger's delete, got %v", err)
	}
}

func TestCreateDaysForRangeRequiresOwnedTrip(t *testing.T) {
	f := newItineraryFixture()
	if _, err := f.svc.CreateDaysForRange(context.Background(), f.owner, uuid.New(), date(2026, time.June, 1), date(2026, time.June, 2)); !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
}
