package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/repository/ports"
)

type fakePlaceRepo struct {
	mu         sync.Mutex
	byExternal map[string]*domain.Place
	byID       map[uuid.UUID]*domain.Place
	referenced map[uuid.UUID]int

	// onCreate runs before the insert and may return an error to simulate
	// the database rejecting it.
	onCreate func() error
	creates  int
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{
		byExternal: make(map[string]*domain.Place),
		byID:       make(map[uuid.UUID]*domain.Place),
		referenced: make(map[uuid.UUID]int),
	}
}

func (f *fakePlaceRepo) Create(_ context.Context, externalID string, fields domain.PlaceFields) (*domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++

	if f.onCreate != nil {
		if err := f.onCreate(); err != nil {
			return nil, err
		}
	}
	if _, exists := f.byExternal[externalID]; exists {
		return nil, uniqueViolation()
	}

	place := &domain.Place{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       fields.Name,
		Tags:       fields.Tags,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.byExternal[externalID] = place
	f.byID[place.ID] = place
	return clonePlace(place), nil
}

func (f *fakePlaceRepo) FindByExternalID(_ context.Context, externalID string) (*domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	place, ok := f.byExternal[externalID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return clonePlace(place), nil
}

func (f *fakePlaceRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	place, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return clonePlace(place), nil
}

func (f *fakePlaceRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	place, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	if f.referenced[id] > 0 {
		return foreignKeyViolation()
	}
	delete(f.byID, id)
	delete(f.byExternal, place.ExternalID)
	return nil
}

func (f *fakePlaceRepo) insert(place *domain.Place) {
	f.byExternal[place.ExternalID] = place
	f.byID[place.ID] = place
}

func clonePlace(place *domain.Place) *domain.Place {
	copied := *place
	return &copied
}

type fakeTripRepo struct {
	mu    sync.Mutex
	trips map[uuid.UUID]*domain.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[uuid.UUID]*domain.Trip)}
}

func (f *fakeTripRepo) Create(_ context.Context, trip *domain.Trip) (*domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *trip
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.trips[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeTripRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *trip
	return &copied, nil
}

func (f *fakeTripRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Trip, 0)
	for _, trip := range f.trips {
		if trip.OwnerID == ownerID {
			out = append(out, *trip)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	if offset >= len(out) {
		return []domain.Trip{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeDayRepo struct {
	mu   sync.Mutex
	days map[uuid.UUID]*domain.ItineraryDay

	rangeErr error
}

func newFakeDayRepo() *fakeDayRepo {
	return &fakeDayRepo{days: make(map[uuid.UUID]*domain.ItineraryDay)}
}

func (f *fakeDayRepo) CreateRange(_ context.Context, tripID uuid.UUID, dates []time.Time) ([]domain.ItineraryDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}
	out := make([]domain.ItineraryDay, 0, len(dates))
	for _, date := range dates {
		day := domain.ItineraryDay{
			ID:        uuid.New(),
			TripID:    tripID,
			Date:      date,
			CreatedAt: time.Now(),
		}
		f.days[day.ID] = &day
		out = append(out, day)
	}
	return out, nil
}

func (f *fakeDayRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.ItineraryDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ItineraryDay, 0)
	for _, day := range f.days {
		if day.TripID == tripID {
			out = append(out, *day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeDayRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.ItineraryDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	day, ok := f.days[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *day
	return &copied, nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments map[uuid.UUID]*domain.PlaceAttachment

	// reassignErr makes ReassignKeys fail without touching any row, the
	// same observable outcome as a rolled-back transaction.
	reassignErr error
	reassigns   int
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[uuid.UUID]*domain.PlaceAttachment)}
}

func (f *fakeAttachmentRepo) Insert(_ context.Context, attachment *domain.PlaceAttachment) (*domain.PlaceAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *attachment
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.attachments[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeAttachmentRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.PlaceAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attachment, ok := f.attachments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *attachment
	return &copied, nil
}

func (f *fakeAttachmentRepo) ListByDay(_ context.Context, dayID uuid.UUID) ([]domain.PlaceAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PlaceAttachment, 0)
	for _, attachment := range f.attachments {
		if attachment.DayID == dayID {
			out = append(out, *attachment)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortKey != out[j].SortKey {
			return out[i].SortKey < out[j].SortKey
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (f *fakeAttachmentRepo) Update(_ context.Context, id uuid.UUID, update domain.AttachmentUpdate) (*domain.PlaceAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attachment, ok := f.attachments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if update.ScheduledAt != nil {
		attachment.ScheduledAt = update.ScheduledAt
	}
	if update.Notes != nil {
		attachment.Notes = update.Notes
	}
	if update.Rating != nil {
		attachment.Rating = update.Rating
	}
	if update.DurationMins != nil {
		attachment.DurationMins = update.DurationMins
	}
	if update.Visited != nil {
		attachment.Visited = *update.Visited
	}
	attachment.UpdatedAt = time.Now()
	copied := *attachment
	return &copied, nil
}

func (f *fakeAttachmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.attachments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.attachments, id)
	return nil
}

func (f *fakeAttachmentRepo) ReassignKeys(_ context.Context, dayID uuid.UUID, keys []ports.AttachmentKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reassigns++
	if f.reassignErr != nil {
		return f.reassignErr
	}
	for _, key := range keys {
		attachment, ok := f.attachments[key.AttachmentID]
		if !ok || attachment.DayID != dayID {
			return sql.ErrNoRows
		}
	}
	for _, key := range keys {
		f.attachments[key.AttachmentID].SortKey = key.SortKey
	}
	return nil
}

func (f *fakeAttachmentRepo) Rebind(_ context.Context, attachmentID, targetDayID uuid.UUID, sortKey int64) (*domain.PlaceAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attachment, ok := f.attachments[attachmentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	attachment.DayID = targetDayID
	attachment.SortKey = sortKey
	attachment.UpdatedAt = time.Now()
	copied := *attachment
	return &copied, nil
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "place_external_id_key"}
}

func foreignKeyViolation() error {
	return &pgconn.PgError{Code: "23503", ConstraintName: "trip_place_place_id_fkey"}
}

var (
	_ ports.PlaceRepository      = (*fakePlaceRepo)(nil)
	_ ports.TripRepository       = (*fakeTripRepo)(nil)
	_ ports.DayRepository        = (*fakeDayRepo)(nil)
	_ ports.AttachmentRepository = (*fakeAttachmentRepo)(nil)
)
