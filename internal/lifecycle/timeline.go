package lifecycle

import (
	"time"

	"github.com/BearBump/PigeonPost/internal/models"
)

type TimelineEntry struct {
	Stage     string    `json:"stage"`
	Time      time.Time `json:"time"`
	Completed bool      `json:"completed"`
}

var timelineStages = [...]struct {
	name   string
	offset float64
}{
	{"Message Received", 0},
	{"Pigeon Assigned", 0.2},
	{"In Flight", 0.4},
	{"Approaching Destination", 0.8},
	{"Delivered", 1},
}

// completedThrough — индекс последней завершённой стадии для известных статусов.
var completedThrough = map[models.Status]int{
	models.StatusProcessing:  0,
	models.StatusAssigned:    1,
	models.StatusInTransit:   2,
	models.StatusApproaching: 3,
	models.StatusDelivered:   4,
}

// GenerateTimeline builds the five-stage display timeline.
//
// When estimatedDelivery is not in the future every stage is completed and the
// timestamps are spaced one hour apart, ending at estimatedDelivery. Otherwise
// each stage is scheduled at a fixed fraction of the remaining time and its
// completed flag follows currentStatus; unknown statuses fall back to comparing
// the scheduled time with now. createdAt does not affect either regime.
func GenerateTimeline(now, createdAt, estimatedDelivery time.Time, currentStatus models.Status) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(timelineStages))

	left := estimatedDelivery.Sub(now)
	if left <= 0 {
		last := len(timelineStages) - 1
		for i, st := range timelineStages {
			out = append(out, TimelineEntry{
				Stage:     st.name,
				Time:      estimatedDelivery.Add(-time.Duration(last-i) * time.Hour),
				Completed: true,
			})
		}
		return out
	}

	through, known := completedThrough[currentStatus]
	for i, st := range timelineStages {
		at := now.Add(time.Duration(float64(left) * st.offset))
		completed := !at.After(now)
		if known {
			completed = i <= through
		}
		out = append(out, TimelineEntry{Stage: st.name, Time: at, Completed: completed})
	}
	return out
}
