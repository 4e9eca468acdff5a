package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/services/auth"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ctxKey int

const identityKey ctxKey = iota

func identityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok && id != nil
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", clientIP(r)),
		}
		switch {
		case status >= 500:
			a.log.Error("http request", fields...)
		case status >= 400:
			a.log.Warn("http request", fields...)
		default:
			a.log.Info("http request", fields...)
		}
	})
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			a.writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// optionalAdmin: невалидный токен не ошибка, просто запрос без прав администратора.
func (a *API) optionalAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// loginThrottle ограничивает попытки входа с одного IP. Если Redis недоступен — пропускаем.
func (a *API) loginThrottle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.limiter == nil || a.opts.LoginLimitPerMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ok, count, err := a.limiter.Allow(r.Context(), clientIP(r), a.opts.LoginLimitPerMinute, time.Minute)
		if err != nil {
			a.log.Warn("login rate limiter unavailable", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			a.log.Warn("login throttled",
				zap.String("client_ip", clientIP(r)),
				zap.Int64("attempts", count),
			)
			w.Header().Set("Retry-After", strconv.Itoa(60))
			a.writeServiceError(w, r, apperr.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
