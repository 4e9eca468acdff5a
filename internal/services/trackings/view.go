package trackings

import (
	"net/url"
	"time"

	"github.com/BearBump/PigeonPost/internal/lifecycle"
	"github.com/BearBump/PigeonPost/internal/models"
)

const (
	qrServiceURL = "https://api.qrserver.com/v1/create-qr-code/"
	qrSize       = "128x128"
)

// TrackingView — то, что отдаём наружу: запись + вычисленная стадия + таймлайн.
type TrackingView struct {
	TrackingNumber    string                    `json:"trackingNumber"`
	Sender            string                    `json:"sender"`
	Recipient         string                    `json:"recipient"`
	SenderAddress     string                    `json:"senderAddress"`
	RecipientAddress  string                    `json:"recipientAddress"`
	Message           string                    `json:"message,omitempty"`
	MessageRevealed   bool                      `json:"messageRevealed"`
	Status            models.Status             `json:"status"`
	StatusLabel       *string                   `json:"statusLabel,omitempty"`
	StageLabel        string                    `json:"stageLabel"`
	StageEmoji        string                    `json:"stageEmoji"`
	EstimatedDelivery time.Time                 `json:"estimatedDelivery"`
	ActualDelivery    *time.Time                `json:"actualDelivery,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
	Timeline          []lifecycle.TimelineEntry `json:"timeline"`
	Updates           []*models.TrackingUpdate  `json:"updates"`
	QRCodeURL         string                    `json:"qrCodeUrl"`
}

// BuildView собирает представление. Сообщение раскрывается после доставки либо администратору.
func BuildView(t *models.Tracking, updates []*models.TrackingUpdate, now time.Time, admin bool, publicBaseURL string) *TrackingView {
	if updates == nil {
		updates = []*models.TrackingUpdate{}
	}
	v := &TrackingView{
		TrackingNumber:    t.TrackingNumber,
		Sender:            t.Sender,
		Recipient:         t.Recipient,
		SenderAddress:     t.SenderAddress,
		RecipientAddress:  t.RecipientAddress,
		Status:            t.Status,
		StatusLabel:       t.StatusLabel,
		StageLabel:        t.Status.Label(),
		StageEmoji:        t.Status.Emoji(),
		EstimatedDelivery: t.EstimatedDelivery,
		ActualDelivery:    t.ActualDelivery,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		Timeline:          lifecycle.GenerateTimeline(now, t.CreatedAt, t.EstimatedDelivery, t.Status),
		Updates:           updates,
		QRCodeURL:         QRCodeURL(publicBaseURL, t.TrackingNumber),
	}
	if admin || t.Status == models.StatusDelivered {
		v.Message = t.Message
		v.MessageRevealed = true
	}
	return v
}

// QRCodeURL строит ссылку на картинку QR у внешнего сервиса; кодируется адрес страницы отслеживания.
func QRCodeURL(publicBaseURL, trackingNumber string) string {
	data := trackingNumber
	if publicBaseURL != "" {
		data = publicBaseURL + "?track=" + url.QueryEscape(trackingNumber)
	}
	q := url.Values{}
	q.Set("size", qrSize)
	q.Set("data", data)
	q.Set("bgcolor", "FEF3E2")
	q.Set("color", "92400E")
	q.Set("margin", "10")
	return qrServiceURL + "?" + q.Encode()
}
