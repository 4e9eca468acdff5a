package trackings

import (
	"context"
	"strings"
	"time"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/broker/messages"
	"github.com/BearBump/PigeonPost/internal/lifecycle"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/BearBump/PigeonPost/internal/storage/pgpigeon"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const createAttempts = 5

// Create выдаёт номер, выставляет стадию по времени и пишет первое системное событие.
func (s *Service) Create(ctx context.Context, in models.TrackingCreateInput) (*TrackingView, error) {
	in.Sender = strings.TrimSpace(in.Sender)
	in.Recipient = strings.TrimSpace(in.Recipient)
	if in.Sender == "" || in.Recipient == "" || strings.TrimSpace(in.Message) == "" || in.EstimatedDelivery.IsZero() {
		return nil, errors.Wrap(apperr.ErrValidation, "missing required fields")
	}
	if strings.TrimSpace(in.SenderAddress) == "" {
		in.SenderAddress = models.DefaultSenderAddress
	}
	if strings.TrimSpace(in.RecipientAddress) == "" {
		in.RecipientAddress = models.DefaultRecipientAddress
	}

	now := s.now()
	status := lifecycle.DeriveStatus(now, in.EstimatedDelivery)
	initial := models.UpdateInput{
		Status:      string(status),
		Location:    in.SenderAddress,
		Description: "Message received by " + models.DefaultSenderAddress,
		Emoji:       status.Emoji(),
		CreatedBy:   models.CreatedBySystem,
		Timestamp:   now,
	}

	var created *models.Tracking
	for attempt := 0; attempt < createAttempts; attempt++ {
		number, err := s.newNumber(now)
		if err != nil {
			return nil, err
		}
		created, err = s.repo.CreateTracking(ctx, &models.Tracking{
			TrackingNumber:    number,
			Sender:            in.Sender,
			Recipient:         in.Recipient,
			SenderAddress:     in.SenderAddress,
			RecipientAddress:  in.RecipientAddress,
			Message:           in.Message,
			Status:            status,
			EstimatedDelivery: in.EstimatedDelivery,
			CreatedAt:         now,
		}, initial)
		if errors.Is(err, pgpigeon.ErrDuplicateTrackingNumber) {
			s.log.Debug("tracking number collision, retrying", zap.String("tracking_number", number))
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	if created == nil {
		return nil, errors.Errorf("tracking number: %d collisions in a row", createAttempts)
	}

	s.log.Info("tracking created",
		zap.String("tracking_number", created.TrackingNumber),
		zap.String("status", string(created.Status)),
	)
	return BuildView(created, nil, now, true, s.publicBaseURL), nil
}

// Get читает запись, пересчитывает стадию и сохраняет её, если она ушла вперёд.
// Ошибка сохранения только логируется. revealMessage — запрос от администратора.
func (s *Service) Get(ctx context.Context, trackingNumber string, revealMessage bool) (*TrackingView, error) {
	t, hit := s.cachedRecord(ctx, trackingNumber)
	if !hit {
		var err error
		t, err = s.repo.GetTracking(ctx, trackingNumber)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	if changed, _ := s.reconcile(ctx, t, now); !changed && !hit {
		s.storeCached(ctx, t)
	}

	updates, err := s.repo.ListUpdates(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	return BuildView(t, updates, now, revealMessage, s.publicBaseURL), nil
}

// List — все записи (новые сверху) с пересчитанной стадией, без журнала событий.
func (s *Service) List(ctx context.Context) ([]*TrackingView, error) {
	items, err := s.repo.ListTrackings(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]*TrackingView, 0, len(items))
	for _, t := range items {
		s.reconcile(ctx, t, now)
		out = append(out, BuildView(t, nil, now, true, s.publicBaseURL))
	}
	return out, nil
}

// reconcile приводит t.Status к эффективной стадии и пытается её сохранить.
// changed — стадия в t изменилась; persisted — изменение записано этим вызовом.
func (s *Service) reconcile(ctx context.Context, t *models.Tracking, now time.Time) (changed, persisted bool) {
	effective := lifecycle.EffectiveStatus(t.Status, lifecycle.DeriveStatus(now, t.EstimatedDelivery))
	if effective == t.Status {
		return false, false
	}

	before := *t
	t.Status = effective
	t.StatusLabel = nil
	t.UpdatedAt = now

	ok, err := s.repo.AdvanceStatus(ctx, t.ID, before.Status, effective, now)
	if err != nil {
		s.log.Warn("persist derived status failed",
			zap.String("tracking_number", t.TrackingNumber),
			zap.String("from", string(before.Status)),
			zap.String("to", string(effective)),
			zap.Error(err),
		)
		return true, false
	}
	if !ok {
		// строку уже поменяли параллельно, кэш мог устареть
		s.InvalidateCached(ctx, t.TrackingNumber)
		return true, false
	}
	s.changed(ctx, &before, t, models.CreatedBySystem)
	return true, true
}

// Edit — полная замена редактируемых полей. Пустой Status: стадия заново выводится из нового срока, метка остаётся.
func (s *Service) Edit(ctx context.Context, trackingNumber string, in models.TrackingEditInput) (*TrackingView, error) {
	in.Sender = strings.TrimSpace(in.Sender)
	in.Recipient = strings.TrimSpace(in.Recipient)
	if in.Sender == "" || in.Recipient == "" || strings.TrimSpace(in.Message) == "" || in.EstimatedDelivery.IsZero() {
		return nil, errors.Wrap(apperr.ErrValidation, "missing required fields")
	}

	now := s.now()
	change, err := s.editChange(ctx, trackingNumber, in, now)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.EditTracking(ctx, trackingNumber, in, change, now)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, nil, t, models.CreatedByAdmin)
	s.reconcile(ctx, t, now)

	return BuildView(t, nil, now, true, s.publicBaseURL), nil
}

// editChange: явный статус применяется как есть; пустой — стадия по новому сроку, текущая метка сохраняется.
func (s *Service) editChange(ctx context.Context, trackingNumber string, in models.TrackingEditInput, now time.Time) (pgpigeon.StatusChange, error) {
	if strings.TrimSpace(in.Status) != "" {
		return StatusChangeFor(in.Status), nil
	}
	cur, err := s.repo.GetTracking(ctx, trackingNumber)
	if err != nil {
		return pgpigeon.StatusChange{}, err
	}
	derived := lifecycle.DeriveStatus(now, in.EstimatedDelivery)
	return pgpigeon.StatusChange{Status: &derived, Label: cur.StatusLabel}, nil
}

// SetStatusInput — прямое выставление статуса; при заданных Location и Description дописывается событие.
type SetStatusInput struct {
	Status      string
	Location    string
	Description string
	Emoji       string
	PigeonName  *string
}

func (s *Service) SetStatus(ctx context.Context, trackingNumber string, in SetStatusInput) (*TrackingView, error) {
	if strings.TrimSpace(in.Status) == "" {
		return nil, errors.Wrap(apperr.ErrValidation, "status is required")
	}

	if strings.TrimSpace(in.Location) != "" && strings.TrimSpace(in.Description) != "" {
		if _, err := s.AppendUpdate(ctx, trackingNumber, models.UpdateInput{
			Status:      in.Status,
			Location:    in.Location,
			Description: in.Description,
			Emoji:       in.Emoji,
			PigeonName:  in.PigeonName,
			CreatedBy:   models.CreatedByAdmin,
		}); err != nil {
			return nil, err
		}
		return s.Get(ctx, trackingNumber, true)
	}

	now := s.now()
	t, err := s.repo.UpdateStatus(ctx, trackingNumber, StatusChangeFor(in.Status), now)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, nil, t, models.CreatedByAdmin)
	s.reconcile(ctx, t, now)
	return BuildView(t, nil, now, true, s.publicBaseURL), nil
}

func (s *Service) Delete(ctx context.Context, trackingNumber string) error {
	if err := s.repo.DeleteTracking(ctx, trackingNumber); err != nil {
		return err
	}
	s.InvalidateCached(ctx, trackingNumber)
	s.publish(ctx, messages.TrackingStatusChanged{
		TrackingNumber: trackingNumber,
		ChangedBy:      models.CreatedByAdmin,
		Deleted:        true,
	})
	s.log.Info("tracking deleted", zap.String("tracking_number", trackingNumber))
	return nil
}

// RefreshAll пересчитывает и сохраняет стадию всех записей. Считаются только реально записанные изменения.
func (s *Service) RefreshAll(ctx context.Context) (int64, error) {
	items, err := s.repo.ListTrackings(ctx)
	if err != nil {
		return 0, err
	}
	return s.refresh(ctx, items), nil
}

// RefreshUndelivered — то же для не более limit недоставленных записей (фоновый воркер).
func (s *Service) RefreshUndelivered(ctx context.Context, limit int) (int64, error) {
	items, err := s.repo.ListUndeliveredTrackings(ctx, limit)
	if err != nil {
		return 0, err
	}
	return s.refresh(ctx, items), nil
}

func (s *Service) refresh(ctx context.Context, items []*models.Tracking) int64 {
	now := s.now()
	var n int64
	for _, t := range items {
		if ctx.Err() != nil {
			break
		}
		if _, persisted := s.reconcile(ctx, t, now); persisted {
			n++
		}
	}
	return n
}

func (s *Service) Stats(ctx context.Context) (models.StatusCounts, error) {
	return s.repo.CountByStatus(ctx)
}

// ClearAll удаляет все записи вместе с событиями.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	items, err := s.repo.ListTrackings(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteAllTrackings(ctx)
	if err != nil {
		return 0, err
	}
	for _, t := range items {
		s.InvalidateCached(ctx, t.TrackingNumber)
		s.publish(ctx, messages.TrackingStatusChanged{
			TrackingNumber: t.TrackingNumber,
			ChangedBy:      models.CreatedByAdmin,
			Deleted:        true,
		})
	}
	s.log.Warn("all trackings cleared", zap.Int64("deleted", n))
	return n, nil
}
