package trackings

import (
	"context"
	"strings"

	"github.com/BearBump/PigeonPost/internal/apperr"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/BearBump/PigeonPost/internal/storage/pgpigeon"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// StatusChangeFor: стадия из перечисления выставляется и сбрасывает метку,
// любой другой текст становится меткой, стадия не меняется.
func StatusChangeFor(status string) pgpigeon.StatusChange {
	status = strings.TrimSpace(status)
	if st, ok := models.ParseStatus(status); ok {
		return pgpigeon.StatusChange{Status: &st}
	}
	label := status
	return pgpigeon.StatusChange{Label: &label}
}

// AppendUpdate дописывает событие в журнал и синхронно обновляет статус записи.
// Валидация до любого обращения к хранилищу.
func (s *Service) AppendUpdate(ctx context.Context, trackingNumber string, in models.UpdateInput) (*models.TrackingUpdate, error) {
	in.Status = strings.TrimSpace(in.Status)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" || in.Location == "" || in.Description == "" {
		return nil, errors.Wrap(apperr.ErrValidation, "status, location and description are required")
	}
	if strings.TrimSpace(in.Emoji) == "" {
		in.Emoji = models.DefaultEmoji
	}
	if in.PigeonName != nil && strings.TrimSpace(*in.PigeonName) == "" {
		in.PigeonName = nil
	}
	if in.CreatedBy == "" {
		in.CreatedBy = models.CreatedBySystem
	}

	now := s.now()
	if in.Timestamp.IsZero() {
		in.Timestamp = now
	}

	u, t, err := s.repo.AppendUpdate(ctx, trackingNumber, in, StatusChangeFor(in.Status), now)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, nil, t, in.CreatedBy)

	s.log.Info("tracking update appended",
		zap.String("tracking_number", trackingNumber),
		zap.String("status", in.Status),
		zap.String("created_by", in.CreatedBy),
	)
	return u, nil
}

// ListUpdates — журнал по возрастанию времени. Пустой журнал не ошибка, отсутствующая запись — ошибка.
func (s *Service) ListUpdates(ctx context.Context, trackingNumber string) ([]*models.TrackingUpdate, error) {
	if _, err := s.repo.GetTracking(ctx, trackingNumber); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, trackingNumber)
}
