package httpapi

import (
	"net/http"
	"strings"

	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/BearBump/PigeonPost/internal/services/trackings"
	"github.com/go-chi/chi/v5"
)

type createTrackingRequest struct {
	Sender            string `json:"sender"`
	Recipient         string `json:"recipient"`
	SenderAddress     string `json:"senderAddress"`
	RecipientAddress  string `json:"recipientAddress"`
	Message           string `json:"message"`
	EstimatedDelivery string `json:"estimatedDelivery"`
}

type editTrackingRequest struct {
	Sender            string `json:"sender"`
	Recipient         string `json:"recipient"`
	Message           string `json:"message"`
	EstimatedDelivery string `json:"estimatedDelivery"`
	Status            string `json:"status"`
}

type updateRequest struct {
	Status      string  `json:"status"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Emoji       string  `json:"emoji"`
	PigeonName  *string `json:"pigeonName"`
}

func trackingNumberParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "trackingNumber")))
}

func (a *API) createTracking(w http.ResponseWriter, r *http.Request) {
	var req createTrackingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Sender) == "" || strings.TrimSpace(req.Recipient) == "" ||
		strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.EstimatedDelivery) == "" {
		writeError(w, r, http.StatusBadRequest, "Missing required fields")
		return
	}
	est, ok := parseTime(req.EstimatedDelivery)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid estimatedDelivery")
		return
	}

	view, err := a.svc.Create(r.Context(), models.TrackingCreateInput{
		Sender:            req.Sender,
		Recipient:         req.Recipient,
		SenderAddress:     req.SenderAddress,
		RecipientAddress:  req.RecipientAddress,
		Message:           req.Message,
		EstimatedDelivery: est,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (a *API) listTrackings(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.List(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []*trackings.TrackingView{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (a *API) getTracking(w http.ResponseWriter, r *http.Request) {
	_, admin := identityFrom(r.Context())
	view, err := a.svc.Get(r.Context(), trackingNumberParam(r), admin)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (a *API) editTracking(w http.ResponseWriter, r *http.Request) {
	var req editTrackingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Sender) == "" || strings.TrimSpace(req.Recipient) == "" ||
		strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.EstimatedDelivery) == "" {
		writeError(w, r, http.StatusBadRequest, "Missing required fields")
		return
	}
	est, ok := parseTime(req.EstimatedDelivery)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid estimatedDelivery")
		return
	}

	view, err := a.svc.Edit(r.Context(), trackingNumberParam(r), models.TrackingEditInput{
		Sender:            req.Sender,
		Recipient:         req.Recipient,
		Message:           req.Message,
		EstimatedDelivery: est,
		Status:            req.Status,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (a *API) deleteTracking(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.Context(), trackingNumberParam(r)); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Tracking deleted successfully"})
}

func (a *API) appendUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := a.svc.AppendUpdate(r.Context(), trackingNumberParam(r), models.UpdateInput{
		Status:      req.Status,
		Location:    req.Location,
		Description: req.Description,
		Emoji:       req.Emoji,
		PigeonName:  req.PigeonName,
		CreatedBy:   models.CreatedByAdmin,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, u)
}

func (a *API) listUpdates(w http.ResponseWriter, r *http.Request) {
	ups, err := a.svc.ListUpdates(r.Context(), trackingNumberParam(r))
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	if ups == nil {
		ups = []*models.TrackingUpdate{}
	}
	writeJSON(w, r, http.StatusOK, ups)
}

func (a *API) setStatus(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := a.svc.SetStatus(r.Context(), trackingNumberParam(r), trackings.SetStatusInput{
		Status:      req.Status,
		Location:    req.Location,
		Description: req.Description,
		Emoji:       req.Emoji,
		PigeonName:  req.PigeonName,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}
