package models

import "time"

// Стадии доставки в порядке жизненного цикла.
type Status string

const (
	StatusProcessing  Status = "processing"
	StatusAssigned    Status = "assigned"
	StatusInTransit   Status = "in-transit"
	StatusApproaching Status = "approaching"
	StatusDelivered   Status = "delivered"
)

var stageOrder = map[Status]int{
	StatusProcessing:  0,
	StatusAssigned:    1,
	StatusInTransit:   2,
	StatusApproaching: 3,
	StatusDelivered:   4,
}

// ParseStatus reports whether s names one of the lifecycle stages.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := stageOrder[st]
	return st, ok
}

// Rank returns the position of the stage in the lifecycle, -1 for unknown values.
func (s Status) Rank() int {
	if r, ok := stageOrder[s]; ok {
		return r
	}
	return -1
}

func (s Status) Label() string {
	switch s {
	case StatusProcessing:
		return "Processing"
	case StatusAssigned:
		return "Pigeon Assigned"
	case StatusInTransit:
		return "In Transit"
	case StatusApproaching:
		return "Approaching Destination"
	case StatusDelivered:
		return "Delivered"
	default:
		return string(s)
	}
}

func (s Status) Emoji() string {
	switch s {
	case StatusProcessing:
		return "📝"
	case StatusAssigned:
		return "🕊️"
	case StatusInTransit:
		return "✈️"
	case StatusApproaching:
		return "🎯"
	case StatusDelivered:
		return "✅"
	default:
		return DefaultEmoji
	}
}

// AllStatuses returns the stages in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusProcessing, StatusAssigned, StatusInTransit, StatusApproaching, StatusDelivered}
}

const (
	DefaultSenderAddress    = "Pigeon Post Service"
	DefaultRecipientAddress = "Delivery Location"
	DefaultEmoji            = "📦"

	CreatedBySystem = "system"
	CreatedByAdmin  = "admin"
)

type Tracking struct {
	ID                uint64     `json:"id"`
	TrackingNumber    string     `json:"trackingNumber"`
	Sender            string     `json:"sender"`
	Recipient         string     `json:"recipient"`
	SenderAddress     string     `json:"senderAddress"`
	RecipientAddress  string     `json:"recipientAddress"`
	Message           string     `json:"message"`
	Status            Status     `json:"status"`
	StatusLabel       *string    `json:"statusLabel,omitempty"`
	EstimatedDelivery time.Time  `json:"estimatedDelivery"`
	ActualDelivery    *time.Time `json:"actualDelivery,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type TrackingUpdate struct {
	ID             uint64    `json:"id"`
	TrackingID     uint64    `json:"trackingId"`
	TrackingNumber string    `json:"trackingNumber"`
	Status         string    `json:"status"`
	Location       string    `json:"location"`
	Description    string    `json:"description"`
	Emoji          string    `json:"emoji"`
	PigeonName     *string   `json:"pigeonName,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	CreatedBy      string    `json:"createdBy"`
}

type TrackingCreateInput struct {
	Sender            string
	Recipient         string
	SenderAddress     string
	RecipientAddress  string
	Message           string
	EstimatedDelivery time.Time
}

// TrackingEditInput — полная замена редактируемых полей записи.
type TrackingEditInput struct {
	Sender            string
	Recipient         string
	Message           string
	EstimatedDelivery time.Time
	Status            string
}

type UpdateInput struct {
	Status      string
	Location    string
	Description string
	Emoji       string
	PigeonName  *string
	CreatedBy   string
	Timestamp   time.Time
}

type AdminSession struct {
	SessionID string    `json:"sessionId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusCounts — агрегаты для /admin/stats.
type StatusCounts struct {
	Total       int64 `json:"total"`
	Processing  int64 `json:"processing"`
	Assigned    int64 `json:"assigned"`
	InTransit   int64 `json:"inTransit"`
	Approaching int64 `json:"approaching"`
	Delivered   int64 `json:"delivered"`
}
