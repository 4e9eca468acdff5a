package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message"`
}

type logoutRequest struct {
	SessionID string `json:"sessionId"`
}

type verifyResponse struct {
	Valid     bool      `json:"valid"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type forceUpdateResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

type clearDataResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, loginResponse{
		Success:   true,
		SessionID: sess.SessionID,
		ExpiresAt: sess.ExpiresAt,
		Message:   "Login successful",
	})
}

// logout всегда отвечает 200: сессия берётся из тела или из заголовка Authorization.
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if r.Body != nil {
		// тело необязательно, мусор в нём не мешает выйти
		_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, bodyLimit)).Decode(&req)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = bearerToken(r)
	}
	if err := a.auth.Logout(r.Context(), sessionID); err != nil {
		a.log.Warn("logout failed", zap.Error(err))
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	id, err := a.auth.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, verifyResponse{Valid: true, Username: id.Username, ExpiresAt: id.ExpiresAt})
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := a.svc.Stats(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, counts)
}

func (a *API) forceUpdate(w http.ResponseWriter, r *http.Request) {
	n, err := a.svc.RefreshAll(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, forceUpdateResponse{Message: "Status update complete", Updated: n})
}

func (a *API) clearData(w http.ResponseWriter, r *http.Request) {
	n, err := a.svc.ClearAll(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, clearDataResponse{Message: "All tracking data cleared", DeletedCount: n})
}
