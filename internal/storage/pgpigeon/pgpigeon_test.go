package pgpigeon

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test: needs docker")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "pigeonpost_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/pigeonpost_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func newTracking(number string, now time.Time) *models.Tracking {
	return &models.Tracking{
		TrackingNumber:    number,
		Sender:            "Alice",
		Recipient:         "Bob",
		SenderAddress:     models.DefaultSenderAddress,
		RecipientAddress:  models.DefaultRecipientAddress,
		Message:           "hello",
		Status:            models.StatusAssigned,
		EstimatedDelivery: now.Add(3 * time.Hour),
		CreatedAt:         now,
	}
}

func systemUpdate() models.UpdateInput {
	return models.UpdateInput{
		Status:      string(models.StatusAssigned),
		Location:    models.DefaultSenderAddress,
		Description: "created",
		Emoji:       models.DefaultEmoji,
		CreatedBy:   models.CreatedBySystem,
	}
}

func TestPGPigeon_TrackingFlow(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	created, err := st.CreateTracking(ctx, newTracking("PPSTEST1", now), systemUpdate())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, models.StatusAssigned, created.Status)
	require.Nil(t, created.StatusLabel)

	_, err = st.CreateTracking(ctx, newTracking("PPSTEST1", now), systemUpdate())
	require.ErrorIs(t, err, ErrDuplicateTrackingNumber)

	got, err := st.GetTracking(ctx, "PPSTEST1")
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Sender)
	require.WithinDuration(t, now.Add(3*time.Hour), got.EstimatedDelivery, time.Millisecond)

	_, err = st.GetTracking(ctx, "NOPE")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// ручное событие со свободным текстом: стадия не меняется, метка ставится
	label := "delayed"
	u, upd, err := st.AppendUpdate(ctx, "PPSTEST1", models.UpdateInput{
		Status: label, Location: "Roof", Description: "storm", Emoji: "⏰", CreatedBy: models.CreatedByAdmin,
	}, StatusChange{Label: &label}, now.Add(time.Minute))
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.Equal(t, models.StatusAssigned, upd.Status)
	require.NotNil(t, upd.StatusLabel)
	require.Equal(t, "delayed", *upd.StatusLabel)

	delivered := models.StatusDelivered
	_, upd, err = st.AppendUpdate(ctx, "PPSTEST1", models.UpdateInput{
		Status: string(delivered), Location: "Door", Description: "done", Emoji: "✅", CreatedBy: models.CreatedByAdmin,
	}, StatusChange{Status: &delivered}, now.Add(2*time.Minute))
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, upd.Status)
	require.Nil(t, upd.StatusLabel)

	_, _, err = st.AppendUpdate(ctx, "NOPE", systemUpdate(), StatusChange{}, now)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	ups, err := st.ListUpdates(ctx, "PPSTEST1")
	require.NoError(t, err)
	require.Len(t, ups, 3)
	require.Equal(t, models.CreatedBySystem, ups[0].CreatedBy)
	require.Equal(t, string(models.StatusDelivered), ups[2].Status)
	for i := 1; i < len(ups); i++ {
		require.False(t, ups[i].Timestamp.Before(ups[i-1].Timestamp))
	}

	empty, err := st.ListUpdates(ctx, "NOPE")
	require.NoError(t, err)
	require.Len(t, empty, 0)

	counts, err := st.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.Total)
	require.Equal(t, int64(1), counts.Delivered)

	require.NoError(t, st.DeleteTracking(ctx, "PPSTEST1"))
	require.ErrorIs(t, st.DeleteTracking(ctx, "PPSTEST1"), apperr.ErrNotFound)

	// каскад: события удалены вместе с записью
	ups, err = st.ListUpdates(ctx, "PPSTEST1")
	require.NoError(t, err)
	require.Len(t, ups, 0)
}

func TestPGPigeon_EditAdvanceAndClear(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := st.CreateTracking(ctx, newTracking("PPSEDIT", now), systemUpdate())
	require.NoError(t, err)

	ok, err := st.AdvanceStatus(ctx, created.ID, models.StatusProcessing, models.StatusInTransit, now)
	require.NoError(t, err)
	require.False(t, ok) // в БД assigned, а не processing

	ok, err = st.AdvanceStatus(ctx, created.ID, models.StatusAssigned, models.StatusInTransit, now)
	require.NoError(t, err)
	require.True(t, ok)

	edited, err := st.EditTracking(ctx, "PPSEDIT", models.TrackingEditInput{
		Sender: "Carol", Recipient: "Dave", Message: "m2", EstimatedDelivery: now.Add(10 * time.Hour),
	}, StatusChange{}, now)
	require.NoError(t, err)
	require.Equal(t, "Carol", edited.Sender)
	require.Equal(t, models.StatusInTransit, edited.Status)

	_, err = st.EditTracking(ctx, "NOPE", models.TrackingEditInput{}, StatusChange{}, now)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	label := "lost in fog"
	labeled, err := st.UpdateStatus(ctx, "PPSEDIT", StatusChange{Label: &label}, now)
	require.NoError(t, err)
	require.Equal(t, models.StatusInTransit, labeled.Status)
	require.Equal(t, "lost in fog", *labeled.StatusLabel)

	approaching := models.StatusApproaching
	moved, err := st.UpdateStatus(ctx, "PPSEDIT", StatusChange{Status: &approaching}, now)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproaching, moved.Status)
	require.Nil(t, moved.StatusLabel)

	_, err = st.UpdateStatus(ctx, "NOPE", StatusChange{Status: &approaching}, now)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	active, err := st.ListUndeliveredTrackings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := st.ListTrackings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	n, err := st.DeleteAllTrackings(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestPGPigeon_Sessions(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, st.UpsertSession(ctx, models.AdminSession{
		SessionID: "live", Username: "admin", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}))
	require.NoError(t, st.UpsertSession(ctx, models.AdminSession{
		SessionID: "old", Username: "admin", ExpiresAt: now.Add(-time.Hour), CreatedAt: now,
	}))

	got, err := st.GetSession(ctx, "live")
	require.NoError(t, err)
	require.Equal(t, "admin", got.Username)

	n, err := st.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = st.GetSession(ctx, "old")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, st.DeleteSession(ctx, "live"))
	require.NoError(t, st.DeleteSession(ctx, "live"))
}
