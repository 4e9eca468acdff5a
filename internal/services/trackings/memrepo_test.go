package trackings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/BearBump/PigeonPost/internal/storage/pgpigeon"
	"github.com/pkg/errors"
)

// memRepo — Repository в памяти с той же семантикой, что у pgpigeon.
type memRepo struct {
	mu       sync.Mutex
	nextID   uint64
	nextUpd  uint64
	byNumber map[string]*models.Tracking
	updates  map[string][]*models.TrackingUpdate

	advanceErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		byNumber: map[string]*models.Tracking{},
		updates:  map[string][]*models.TrackingUpdate{},
	}
}

func cloneTracking(t *models.Tracking) *models.Tracking {
	c := *t
	return &c
}

func (r *memRepo) notFound(n string) error {
	return errors.Wrapf(apperr.ErrNotFound, "tracking %s", n)
}

func (r *memRepo) insertUpdate(t *models.Tracking, in models.UpdateInput) *models.TrackingUpdate {
	r.nextUpd++
	u := &models.TrackingUpdate{
		ID:             r.nextUpd,
		TrackingID:     t.ID,
		TrackingNumber: t.TrackingNumber,
		Status:         in.Status,
		Location:       in.Location,
		Description:    in.Description,
		Emoji:          in.Emoji,
		PigeonName:     in.PigeonName,
		Timestamp:      in.Timestamp,
		CreatedBy:      in.CreatedBy,
	}
	r.updates[t.TrackingNumber] = append(r.updates[t.TrackingNumber], u)
	return u
}

func applyChange(t *models.Tracking, change pgpigeon.StatusChange, now time.Time) {
	if change.Status != nil {
		t.Status = *change.Status
	}
	t.StatusLabel = change.Label
	t.UpdatedAt = now
}

func (r *memRepo) CreateTracking(_ context.Context, t *models.Tracking, initial models.UpdateInput) (*models.Tracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[t.TrackingNumber]; ok {
		return nil, pgpigeon.ErrDuplicateTrackingNumber
	}
	r.nextID++
	c := cloneTracking(t)
	c.ID = r.nextID
	c.UpdatedAt = c.CreatedAt
	r.byNumber[c.TrackingNumber] = c
	if initial.Timestamp.IsZero() {
		initial.Timestamp = c.CreatedAt
	}
	r.insertUpdate(c, initial)
	return cloneTracking(c), nil
}

func (r *memRepo) GetTracking(_ context.Context, n string) (*models.Tracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byNumber[n]
	if !ok {
		return nil, r.notFound(n)
	}
	return cloneTracking(t), nil
}

func (r *memRepo) ListTrackings(_ context.Context) ([]*models.Tracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tracking, 0, len(r.byNumber))
	for _, t := range r.byNumber {
		out = append(out, cloneTracking(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memRepo) ListUndeliveredTrackings(ctx context.Context, limit int) ([]*models.Tracking, error) {
	all, _ := r.ListTrackings(ctx)
	out := make([]*models.Tracking, 0, len(all))
	for _, t := range all {
		if t.Status != models.StatusDelivered && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memRepo) EditTracking(_ context.Context, n string, in models.TrackingEditInput, change pgpigeon.StatusChange, now time.Time) (*models.Tracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byNumber[n]
	if !ok {
		return nil, r.notFound(n)
	}
	t.Sender, t.Recipient, t.Message, t.EstimatedDelivery = in.Sender, in.Recipient, in.Message, in.EstimatedDelivery
	applyChange(t, change, now)
	return cloneTracking(t), nil
}

func (r *memRepo) UpdateStatus(_ context.Context, n string, change pgpigeon.StatusChange, now time.Time) (*models.Tracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byNumber[n]
	if !ok {
		return nil, r.notFound(n)
	}
	applyChange(t, change, now)
	return cloneTracking(t), nil
}

func (r *memRepo) AdvanceStatus(_ context.Context, id uint64, from, to models.Status, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.advanceErr != nil {
		return false, r.advanceErr
	}
	for _, t := range r.byNumber {
		if t.ID == id && t.Status == from {
			t.Status = to
			t.StatusLabel = nil
			t.UpdatedAt = now
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) DeleteTracking(_ context.Context, n string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[n]; !ok {
		return r.notFound(n)
	}
	delete(r.byNumber, n)
	delete(r.updates, n)
	return nil
}

func (r *memRepo) DeleteAllTrackings(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.byNumber))
	r.byNumber = map[string]*models.Tracking{}
	r.updates = map[string][]*models.TrackingUpdate{}
	return n, nil
}

func (r *memRepo) CountByStatus(_ context.Context) (models.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c models.StatusCounts
	for _, t := range r.byNumber {
		c.Total++
		switch t.Status {
		case models.StatusProcessing:
			c.Processing++
		case models.StatusAssigned:
			c.Assigned++
		case models.StatusInTransit:
			c.InTransit++
		case models.StatusApproaching:
			c.Approaching++
		case models.StatusDelivered:
			c.Delivered++
		}
	}
	return c, nil
}

func (r *memRepo) AppendUpdate(_ context.Context, n string, in models.UpdateInput, change pgpigeon.StatusChange, now time.Time) (*models.TrackingUpdate, *models.Tracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byNumber[n]
	if !ok {
		return nil, nil, r.notFound(n)
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = now
	}
	u := r.insertUpdate(t, in)
	applyChange(t, change, now)
	return u, cloneTracking(t), nil
}

func (r *memRepo) ListUpdates(_ context.Context, n string) ([]*models.TrackingUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]*models.TrackingUpdate{}, r.updates[n]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs [][]byte
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, string(key))
	p.msgs = append(p.msgs, value)
	return p.err
}
