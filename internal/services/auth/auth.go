package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/logger"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const DefaultSessionTTL = 24 * time.Hour

// SessionStore — каждая операция атомарна сама по себе (одна строка, один запрос).
type SessionStore interface {
	UpsertSession(ctx context.Context, sess models.AdminSession) error
	GetSession(ctx context.Context, sessionID string) (*models.AdminSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Identity — кто прошёл проверку токена.
type Identity struct {
	Username  string    `json:"username"`
	SessionID string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator — единственный администратор, пароль хранится только как bcrypt-хэш.
type Authenticator struct {
	store        SessionStore
	username     string
	passwordHash []byte
	ttl          time.Duration
	log          *zap.Logger

	now   func() time.Time
	newID func() string
}

func New(store SessionStore, username, passwordHash string, l *zap.Logger) *Authenticator {
	return &Authenticator{
		store:        store,
		username:     username,
		passwordHash: []byte(passwordHash),
		ttl:          DefaultSessionTTL,
		log:          logger.OrNop(l).Named("auth"),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

func (a *Authenticator) WithTTL(ttl time.Duration) *Authenticator {
	if ttl > 0 {
		a.ttl = ttl
	}
	return a
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.AdminSession, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.Wrap(apperr.ErrValidation, "username and password required")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// хэш сверяем всегда, чтобы время ответа не выдавало логин
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		a.log.Info("login rejected", zap.String("username", username))
		return nil, apperr.ErrInvalidCredentials
	}

	now := a.now()
	sess := models.AdminSession{
		SessionID: a.newID(),
		Username:  a.username,
		ExpiresAt: now.Add(a.ttl),
		CreatedAt: now,
	}
	if err := a.store.UpsertSession(ctx, sess); err != nil {
		return nil, err
	}
	a.log.Info("admin logged in", zap.String("username", sess.Username), zap.Time("expires_at", sess.ExpiresAt))
	return &sess, nil
}

// Authenticate никогда не пропускает токен с expiresAt <= now, даже если чистка ещё не прошла.
// Недоступное хранилище — тоже отказ.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}

	sess, err := a.store.GetSession(ctx, token)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		a.log.Error("session lookup failed", zap.Error(err))
		return nil, apperr.ErrUnauthorized
	}

	if !sess.ExpiresAt.After(a.now()) {
		if err := a.store.DeleteSession(ctx, token); err != nil {
			a.log.Warn("delete expired session failed", zap.Error(err))
		}
		return nil, apperr.ErrSessionExpired
	}
	return &Identity{Username: sess.Username, SessionID: sess.SessionID, ExpiresAt: sess.ExpiresAt}, nil
}

// Logout идемпотентен: отсутствие сессии не ошибка.
func (a *Authenticator) Logout(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	return a.store.DeleteSession(ctx, sessionID)
}

func (a *Authenticator) SweepExpired(ctx context.Context) (int64, error) {
	return a.store.DeleteExpiredSessions(ctx, a.now())
}
