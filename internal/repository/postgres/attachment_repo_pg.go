package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/repository/ports"
)

const attachmentColumns = `
	id, day_id, place_id, sort_key, scheduled_at, notes, visited, rating,
	duration_mins, created_at, updated_at
`

type AttachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepo(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Insert(ctx context.Context, attachment *domain.PlaceAttachment) (*domain.PlaceAttachment, error) {
	const query = `
		INSERT INTO trip_place (
			day_id, place_id, sort_key, scheduled_at, notes, visited, rating, duration_mins
		) VALUES (
			:day_id, :place_id, :sort_key, :scheduled_at, :notes, :visited, :rating, :duration_mins
		)
		RETURNING ` + attachmentColumns

	args := map[string]any{
		"day_id":        attachment.DayID,
		"place_id":      attachment.PlaceID,
		"sort_key":      attachment.SortKey,
		"scheduled_at":  nullTime(attachment.ScheduledAt),
		"notes":         nullString(attachment.Notes),
		"visited":       attachment.Visited,
		"rating":        nullInt(attachment.Rating),
		"duration_mins": nullInt(attachment.DurationMins),
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.PlaceAttachment
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *AttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PlaceAttachment, error) {
	const query = `
		SELECT ` + attachmentColumns + `
		FROM trip_place
		WHERE id = $1
	`
	var attachment domain.PlaceAttachment
	if err := r.db.GetContext(ctx, &attachment, query, id); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByDay orders by sort key with the attachment id as tie-break, so a
// racing insert that produced duplicate keys still yields a stable display
// order until the next write normalizes it.
func (r *AttachmentRepository) ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.PlaceAttachment, error) {
	const query = `
		SELECT ` + attachmentColumns + `
		FROM trip_place
		WHERE day_id = $1
		ORDER BY sort_key ASC, id ASC
	`
	attachments := make([]domain.PlaceAttachment, 0)
	if err := r.db.SelectContext(ctx, &attachments, query, dayID); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *AttachmentRepository) Update(ctx context.Context, id uuid.UUID, update domain.AttachmentUpdate) (*domain.PlaceAttachment, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if update.ScheduledAt != nil {
		setParts = append(setParts, fmt.Sprintf("scheduled_at = $%d", idx))
		args = append(args, nullTime(update.ScheduledAt))
		idx++
	}
	if update.Notes != nil {
		setParts = append(setParts, fmt.Sprintf("notes = $%d", idx))
		args = append(args, nullString(update.Notes))
		idx++
	}
	if update.Rating != nil {
		setParts = append(setParts, fmt.Sprintf("rating = $%d", idx))
		args = append(args, nullInt(update.Rating))
		idx++
	}
	if update.DurationMins != nil {
		setParts = append(setParts, fmt.Sprintf("duration_mins = $%d", idx))
		args = append(args, nullInt(update.DurationMins))
		idx++
	}
	if update.Visited != nil {
		setParts = append(setParts, fmt.Sprintf("visited = $%d", idx))
		args = append(args, *update.Visited)
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE trip_place
		SET %s
		WHERE id = $%d
		RETURNING `+attachmentColumns,
		strings.Join(setParts, ", "), idx)
	args = append(args, id)

	var attachment domain.PlaceAttachment
	if err := r.db.GetContext(ctx, &attachment, query, args...); err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trip_place WHERE id = $1`, id)
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

// ReassignKeys rewrites the sort keys of a day in one transaction. The
// update is all-or-nothing: a failing row rolls the whole reassignment back
// so two attachments can never end up sharing a key because only half the
// batch landed.
func (r *AttachmentRepository) ReassignKeys(ctx context.Context, dayID uuid.UUID, keys []ports.AttachmentKey) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		UPDATE trip_place
		SET sort_key = $1, updated_at = NOW()
		WHERE id = $2 AND day_id = $3
	`
	for _, key := range keys {
		result, err := tx.ExecContext(ctx, query, key.SortKey, key.AttachmentID, dayID)
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
	}

	return tx.Commit()
}

func (r *AttachmentRepository) Rebind(ctx context.Context, attachmentID, targetDayID uuid.UUID, sortKey int64) (*domain.PlaceAttachment, error) {
	const query = `
		UPDATE trip_place
		SET day_id = $2, sort_key = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + attachmentColumns

	var attachment domain.PlaceAttachment
	if err := r.db.GetContext(ctx, &attachment, query, attachmentID, targetDayID, sortKey); err != nil {
		return nil, err
	}
	return &attachment, nil
}

var _ ports.AttachmentRepository = (*AttachmentRepository)(nil)
