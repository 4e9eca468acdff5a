package httpapi

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const bodyLimit = 1 << 20

type errResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, _ *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errResponse{Error: msg})
}

func decodeJSON[T any](w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, "request body is required")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

// writeServiceError переводит ошибки сервисов в HTTP. Всё неизвестное — 500 без подробностей.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Tracking number not found")
	case errors.Is(err, apperr.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, apperr.ErrSessionExpired):
		writeError(w, r, http.StatusUnauthorized, "Session expired")
	case errors.Is(err, apperr.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, apperr.ErrRateLimited):
		writeError(w, r, http.StatusTooManyRequests, "Too many login attempts, try again later")
	default:
		a.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// validationMessage: "missing required fields: validation error" -> "Missing required fields".
func validationMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+apperr.ErrValidation.Error())
	if msg == "" || msg == apperr.ErrValidation.Error() {
		return "Missing required fields"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// parseTime принимает RFC 3339 и значение из <input type="datetime-local"> (как UTC).
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// clientIP: RemoteAddr уже переписан middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
