package pgpigeon

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS trackings (
  id BIGSERIAL PRIMARY KEY,
  tracking_number TEXT NOT NULL UNIQUE,
  sender TEXT NOT NULL,
  recipient TEXT NOT NULL,
  sender_address TEXT NOT NULL DEFAULT 'Pigeon Post Service',
  recipient_address TEXT NOT NULL DEFAULT 'Delivery Location',
  message TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'processing',
  status_label TEXT NULL,
  estimated_delivery TIMESTAMPTZ NOT NULL,
  actual_delivery TIMESTAMPTZ NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_trackings_status ON trackings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_trackings_created_at ON trackings(created_at DESC)`,
		`
CREATE TABLE IF NOT EXISTS tracking_updates (
  id BIGSERIAL PRIMARY KEY,
  tracking_id BIGINT NOT NULL REFERENCES trackings(id) ON DELETE CASCADE,
  tracking_number TEXT NOT NULL,
  status TEXT NOT NULL,
  location TEXT NOT NULL,
  description TEXT NOT NULL,
  emoji TEXT NOT NULL DEFAULT '📦',
  pigeon_name TEXT NULL,
  event_time TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by TEXT NOT NULL DEFAULT 'system'
)`,
		`CREATE INDEX IF NOT EXISTS idx_tracking_updates_tracking_id_event_time ON tracking_updates(tracking_id, event_time ASC)`,
		`CREATE INDEX IF NOT EXISTS idx_tracking_updates_tracking_number ON tracking_updates(tracking_number)`,
		`
CREATE TABLE IF NOT EXISTS admin_sessions (
  session_id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_sessions_expires_at ON admin_sessions(expires_at)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
