package pgpigeon

import (
	"context"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const trackingColumns = `
  id, tracking_number, sender, recipient,
  sender_address, recipient_address, message,
  status, status_label,
  estimated_delivery, actual_delivery,
  created_at, updated_at`

// StatusChange описывает, что записать в status/status_label.
// Status == nil оставляет стадию как есть; Label всегда перезаписывается (nil -> NULL).
type StatusChange struct {
	Status *models.Status
	Label  *string
}

func (c StatusChange) statusArg() *string {
	if c.Status == nil {
		return nil
	}
	s := string(*c.Status)
	return &s
}

func scanTracking(r rowScanner) (*models.Tracking, error) {
	var t models.Tracking
	var status string
	if err := r.Scan(
		&t.ID, &t.TrackingNumber, &t.Sender, &t.Recipient,
		&t.SenderAddress, &t.RecipientAddress, &t.Message,
		&status, &t.StatusLabel,
		&t.EstimatedDelivery, &t.ActualDelivery,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = models.Status(status)
	return &t, nil
}

// CreateTracking вставляет запись и её первое (системное) событие в одной транзакции.
func (s *Storage) CreateTracking(ctx context.Context, t *models.Tracking, initial models.UpdateInput) (*models.Tracking, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanTracking(tx.QueryRow(ctx, `
INSERT INTO trackings (
  tracking_number, sender, recipient, sender_address, recipient_address,
  message, status, estimated_delivery, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
RETURNING`+trackingColumns,
		t.TrackingNumber, t.Sender, t.Recipient, t.SenderAddress, t.RecipientAddress,
		t.Message, string(t.Status), t.EstimatedDelivery.UTC(), t.CreatedAt.UTC()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTrackingNumber
		}
		return nil, errors.Wrap(err, "insert tracking")
	}

	if initial.Timestamp.IsZero() {
		initial.Timestamp = created.CreatedAt
	}
	if _, err := insertUpdate(ctx, tx, created.ID, created.TrackingNumber, initial); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return created, nil
}

func (s *Storage) GetTracking(ctx context.Context, trackingNumber string) (*models.Tracking, error) {
	t, err := scanTracking(s.db.QueryRow(ctx, `
SELECT`+trackingColumns+`
FROM trackings
WHERE tracking_number = $1
`, trackingNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "tracking %s", trackingNumber)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select tracking")
	}
	return t, nil
}

func (s *Storage) ListTrackings(ctx context.Context) ([]*models.Tracking, error) {
	return s.queryTrackings(ctx, `
SELECT`+trackingColumns+`
FROM trackings
ORDER BY created_at DESC, id DESC
`)
}

// ListUndeliveredTrackings возвращает записи, чья сохранённая стадия ещё может измениться.
func (s *Storage) ListUndeliveredTrackings(ctx context.Context, limit int) ([]*models.Tracking, error) {
	if limit <= 0 || limit > 10_000 {
		limit = 1000
	}
	return s.queryTrackings(ctx, `
SELECT`+trackingColumns+`
FROM trackings
WHERE status <> $1
ORDER BY estimated_delivery ASC
LIMIT $2
`, string(models.StatusDelivered), limit)
}

func (s *Storage) queryTrackings(ctx context.Context, q string, args ...any) ([]*models.Tracking, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select trackings")
	}
	defer rows.Close()

	out := make([]*models.Tracking, 0)
	for rows.Next() {
		t, err := scanTracking(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan tracking")
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) EditTracking(ctx context.Context, trackingNumber string, in models.TrackingEditInput, change StatusChange, now time.Time) (*models.Tracking, error) {
	t, err := scanTracking(s.db.QueryRow(ctx, `
UPDATE trackings
SET
  sender = $2,
  recipient = $3,
  message = $4,
  estimated_delivery = $5,
  status = COALESCE($6, status),
  status_label = $7,
  updated_at = $8
WHERE tracking_number = $1
RETURNING`+trackingColumns,
		trackingNumber, in.Sender, in.Recipient, in.Message, in.EstimatedDelivery.UTC(),
		change.statusArg(), change.Label, now.UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "tracking %s", trackingNumber)
	}
	if err != nil {
		return nil, errors.Wrap(err, "update tracking")
	}
	return t, nil
}

// UpdateStatus меняет только стадию/метку, остальные поля не трогает.
func (s *Storage) UpdateStatus(ctx context.Context, trackingNumber string, change StatusChange, now time.Time) (*models.Tracking, error) {
	t, err := scanTracking(s.db.QueryRow(ctx, `
UPDATE trackings
SET status = COALESCE($2, status), status_label = $3, updated_at = $4
WHERE tracking_number = $1
RETURNING`+trackingColumns,
		trackingNumber, change.statusArg(), change.Label, now.UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "tracking %s", trackingNumber)
	}
	if err != nil {
		return nil, errors.Wrap(err, "update tracking status")
	}
	return t, nil
}

// AdvanceStatus переводит запись from -> to, только если в БД всё ещё стадия from.
// Метка администратора сбрасывается. Возвращает false, если строку уже изменили.
func (s *Storage) AdvanceStatus(ctx context.Context, id uint64, from, to models.Status, now time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
UPDATE trackings
SET status = $3, status_label = NULL, updated_at = $4
WHERE id = $1 AND status = $2
`, id, string(from), string(to), now.UTC())
	if err != nil {
		return false, errors.Wrap(err, "advance status")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Storage) DeleteTracking(ctx context.Context, trackingNumber string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trackings WHERE tracking_number = $1`, trackingNumber)
	if err != nil {
		return errors.Wrap(err, "delete tracking")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(apperr.ErrNotFound, "tracking %s", trackingNumber)
	}
	return nil
}

func (s *Storage) DeleteAllTrackings(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM trackings`)
	if err != nil {
		return 0, errors.Wrap(err, "delete trackings")
	}
	return tag.RowsAffected(), nil
}

func (s *Storage) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	var out models.StatusCounts
	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM trackings GROUP BY status`)
	if err != nil {
		return out, errors.Wrap(err, "count trackings")
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return out, errors.Wrap(err, "scan count")
		}
		out.Total += n
		switch models.Status(status) {
		case models.StatusProcessing:
			out.Processing = n
		case models.StatusAssigned:
			out.Assigned = n
		case models.StatusInTransit:
			out.InTransit = n
		case models.StatusApproaching:
			out.Approaching = n
		case models.StatusDelivered:
			out.Delivered = n
		}
	}
	if rows.Err() != nil {
		return out, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
