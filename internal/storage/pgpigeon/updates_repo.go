package pgpigeon

import (
	"context"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertUpdate(ctx context.Context, q rowQuerier, trackingID uint64, trackingNumber string, in models.UpdateInput) (*models.TrackingUpdate, error) {
	u := &models.TrackingUpdate{
		TrackingID:     trackingID,
		TrackingNumber: trackingNumber,
		Status:         in.Status,
		Location:       in.Location,
		Description:    in.Description,
		Emoji:          in.Emoji,
		PigeonName:     in.PigeonName,
		CreatedBy:      in.CreatedBy,
	}
	err := q.QueryRow(ctx, `
INSERT INTO tracking_updates (
  tracking_id, tracking_number, status, location, description,
  emoji, pigeon_name, event_time, created_by
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id, event_time
`, trackingID, trackingNumber, in.Status, in.Location, in.Description,
		in.Emoji, in.PigeonName, in.Timestamp.UTC(), in.CreatedBy).Scan(&u.ID, &u.Timestamp)
	if err != nil {
		return nil, errors.Wrap(err, "insert tracking update")
	}
	return u, nil
}

// AppendUpdate добавляет событие и синхронизирует статус родительской записи в одной транзакции.
func (s *Storage) AppendUpdate(ctx context.Context, trackingNumber string, in models.UpdateInput, change StatusChange, now time.Time) (*models.TrackingUpdate, *models.Tracking, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var trackingID uint64
	err = tx.QueryRow(ctx, `SELECT id FROM trackings WHERE tracking_number = $1 FOR UPDATE`, trackingNumber).Scan(&trackingID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, errors.Wrapf(apperr.ErrNotFound, "tracking %s", trackingNumber)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "lock tracking")
	}

	if in.Timestamp.IsZero() {
		in.Timestamp = now
	}
	u, err := insertUpdate(ctx, tx, trackingID, trackingNumber, in)
	if err != nil {
		return nil, nil, err
	}

	t, err := scanTracking(tx.QueryRow(ctx, `
UPDATE trackings
SET status = COALESCE($2, status), status_label = $3, updated_at = $4
WHERE id = $1
RETURNING`+trackingColumns,
		trackingID, change.statusArg(), change.Label, now.UTC()))
	if err != nil {
		return nil, nil, errors.Wrap(err, "sync tracking status")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "commit tx")
	}
	return u, t, nil
}

func (s *Storage) ListUpdates(ctx context.Context, trackingNumber string) ([]*models.TrackingUpdate, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  id, tracking_id, tracking_number, status, location, description,
  emoji, pigeon_name, event_time, created_by
FROM tracking_updates
WHERE tracking_number = $1
ORDER BY event_time ASC, id ASC
`, trackingNumber)
	if err != nil {
		return nil, errors.Wrap(err, "select tracking updates")
	}
	defer rows.Close()

	out := make([]*models.TrackingUpdate, 0)
	for rows.Next() {
		var u models.TrackingUpdate
		if err := rows.Scan(
			&u.ID, &u.TrackingID, &u.TrackingNumber, &u.Status, &u.Location, &u.Description,
			&u.Emoji, &u.PigeonName, &u.Timestamp, &u.CreatedBy,
		); err != nil {
			return nil, errors.Wrap(err, "scan tracking update")
		}
		out = append(out, &u)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
