package pgpigeon

import (
	"context"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Каждая операция над сессиями — один SQL-запрос, без транзакций поверх нескольких строк.

func (s *Storage) UpsertSession(ctx context.Context, sess models.AdminSession) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO admin_sessions (session_id, username, expires_at, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (session_id)
DO UPDATE SET username = EXCLUDED.username, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
`, sess.SessionID, sess.Username, sess.ExpiresAt.UTC(), sess.CreatedAt.UTC())
	return errors.Wrap(err, "upsert session")
}

func (s *Storage) GetSession(ctx context.Context, sessionID string) (*models.AdminSession, error) {
	var sess models.AdminSession
	err := s.db.QueryRow(ctx, `
SELECT session_id, username, expires_at, created_at
FROM admin_sessions
WHERE session_id = $1
`, sessionID).Scan(&sess.SessionID, &sess.Username, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(apperr.ErrNotFound, "session")
	}
	if err != nil {
		return nil, errors.Wrap(err, "select session")
	}
	return &sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM admin_sessions WHERE session_id = $1`, sessionID)
	return errors.Wrap(err, "delete session")
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "delete expired sessions")
	}
	return tag.RowsAffected(), nil
}
