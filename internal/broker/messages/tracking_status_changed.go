package messages

import (
	"time"
)

const TrackingStatusChangedTopic = "tracking.status_changed"

// TrackingStatusChanged публикуется при смене сохранённой стадии/метки и при удалении записи.
// Ключ сообщения — номер отправления.
type TrackingStatusChanged struct {
	TrackingNumber string    `json:"tracking_number"`
	OldStatus      string    `json:"old_status,omitempty"`
	NewStatus      string    `json:"new_status,omitempty"`
	StatusLabel    *string   `json:"status_label,omitempty"`
	ChangedBy      string    `json:"changed_by"`
	ChangedAt      time.Time `json:"changed_at"`
	Deleted        bool      `json:"deleted,omitempty"`
}
