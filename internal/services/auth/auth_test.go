package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authmocks "github.com/BearBump/PigeonPost/internal/services/auth/mocks"
)

type memStore struct {
	mu   sync.Mutex
	rows map[string]models.AdminSession
}

func newMemStore() *memStore { return &memStore{rows: map[string]models.AdminSession{}} }

func (m *memStore) UpsertSession(_ context.Context, s models.AdminSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.SessionID] = s
	return nil
}

func (m *memStore) GetSession(_ context.Context, id string) (*models.AdminSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.rows {
		if !s.ExpiresAt.After(now) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func testHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestAuth(t *testing.T, store SessionStore) (*Authenticator, *clock) {
	c := &clock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	a := New(store, "admin", testHash(t, "pigeon123"), nil)
	a.now = c.now
	return a, c
}

func TestLogin_Authenticate_RoundTrip(t *testing.T) {
	store := newMemStore()
	a, c := newTestAuth(t, store)
	ctx := context.Background()

	sess, err := a.Login(ctx, "admin", "pigeon123")
	require.NoError(t, err)
	require.NotEmpty(t, sess.SessionID)
	require.Equal(t, "admin", sess.Username)
	require.Equal(t, c.t.Add(24*time.Hour), sess.ExpiresAt)

	id, err := a.Authenticate(ctx, sess.SessionID)
	require.NoError(t, err)
	require.Equal(t, "admin", id.Username)
	require.Equal(t, sess.ExpiresAt, id.ExpiresAt)

	other, err := a.Login(ctx, "admin", "pigeon123")
	require.NoError(t, err)
	require.NotEqual(t, sess.SessionID, other.SessionID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := newMemStore()
	a, _ := newTestAuth(t, store)
	ctx := context.Background()

	_, err := a.Login(ctx, "admin", "wrong")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = a.Login(ctx, "root", "pigeon123")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = a.Login(ctx, "", "")
	require.ErrorIs(t, err, apperr.ErrValidation)

	require.Empty(t, store.rows)
}

func TestAuthenticate_ExpiredThenUnauthorized(t *testing.T) {
	store := newMemStore()
	a, c := newTestAuth(t, store)
	ctx := context.Background()

	sess, err := a.Login(ctx, "admin", "pigeon123")
	require.NoError(t, err)

	// ровно в момент истечения сессия уже недействительна
	c.t = sess.ExpiresAt
	_, err = a.Authenticate(ctx, sess.SessionID)
	require.ErrorIs(t, err, apperr.ErrSessionExpired)

	_, err = a.Authenticate(ctx, sess.SessionID)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	a, _ := newTestAuth(t, newMemStore())

	_, err := a.Authenticate(context.Background(), "")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = a.Authenticate(context.Background(), "not-a-session")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogout_Idempotent(t *testing.T) {
	store := newMemStore()
	a, _ := newTestAuth(t, store)
	ctx := context.Background()

	sess, err := a.Login(ctx, "admin", "pigeon123")
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, sess.SessionID))
	require.NoError(t, a.Logout(ctx, sess.SessionID))
	require.NoError(t, a.Logout(ctx, ""))

	_, err = a.Authenticate(ctx, sess.SessionID)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestSweepExpired(t *testing.T) {
	store := newMemStore()
	a, c := newTestAuth(t, store)
	ctx := context.Background()

	old, err := a.Login(ctx, "admin", "pigeon123")
	require.NoError(t, err)
	c.t = c.t.Add(23 * time.Hour)
	fresh, err := a.Login(ctx, "admin", "pigeon123")
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Hour)
	n, err := a.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = a.Authenticate(ctx, old.SessionID)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = a.Authenticate(ctx, fresh.SessionID)
	require.NoError(t, err)
}

func TestAuthenticate_StoreFailureRejects(t *testing.T) {
	store := &authmocks.MockSessionStore{}
	a, _ := newTestAuth(t, store)

	store.On("GetSession", mock.Anything, "tok").Return(nil, errors.New("connection refused")).Once()

	_, err := a.Authenticate(context.Background(), "tok")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	store.AssertExpectations(t)
}

func TestAuthenticate_ExpiredDeleteFailureStillExpired(t *testing.T) {
	store := &authmocks.MockSessionStore{}
	a, c := newTestAuth(t, store)

	store.On("GetSession", mock.Anything, "tok").
		Return(&models.AdminSession{SessionID: "tok", Username: "admin", ExpiresAt: c.t.Add(-time.Second)}, nil).Once()
	store.On("DeleteSession", mock.Anything, "tok").Return(errors.New("db down")).Once()

	_, err := a.Authenticate(context.Background(), "tok")
	require.ErrorIs(t, err, apperr.ErrSessionExpired)
	store.AssertExpectations(t)
}

func TestLogin_StoreFailureSurfaced(t *testing.T) {
	store := &authmocks.MockSessionStore{}
	a, _ := newTestAuth(t, store)
	a.newID = func() string { return "fixed-id" }

	want := errors.New("db down")
	store.On("UpsertSession", mock.Anything, mock.MatchedBy(func(s models.AdminSession) bool {
		return s.SessionID == "fixed-id" && s.Username == "admin"
	})).Return(want).Once()

	_, err := a.Login(context.Background(), "admin", "pigeon123")
	require.ErrorIs(t, err, want)
}

func TestHashPassword_Verifies(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("s3cret")))

	a := New(newMemStore(), "admin", h, nil).WithTTL(time.Hour)
	sess, err := a.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)
}
