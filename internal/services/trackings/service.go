package trackings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BearBump/PigeonPost/internal/broker/messages"
	"github.com/BearBump/PigeonPost/internal/cache"
	"github.com/BearBump/PigeonPost/internal/logger"
	"github.com/BearBump/PigeonPost/internal/models"
	"github.com/BearBump/PigeonPost/internal/storage/pgpigeon"
	"go.uber.org/zap"
)

type Repository interface {
	CreateTracking(ctx context.Context, t *models.Tracking, initial models.UpdateInput) (*models.Tracking, error)
	GetTracking(ctx context.Context, trackingNumber string) (*models.Tracking, error)
	ListTrackings(ctx context.Context) ([]*models.Tracking, error)
	ListUndeliveredTrackings(ctx context.Context, limit int) ([]*models.Tracking, error)
	EditTracking(ctx context.Context, trackingNumber string, in models.TrackingEditInput, change pgpigeon.StatusChange, now time.Time) (*models.Tracking, error)
	UpdateStatus(ctx context.Context, trackingNumber string, change pgpigeon.StatusChange, now time.Time) (*models.Tracking, error)
	AdvanceStatus(ctx context.Context, id uint64, from, to models.Status, now time.Time) (bool, error)
	DeleteTracking(ctx context.Context, trackingNumber string) error
	DeleteAllTrackings(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
	AppendUpdate(ctx context.Context, trackingNumber string, in models.UpdateInput, change pgpigeon.StatusChange, now time.Time) (*models.TrackingUpdate, *models.Tracking, error)
	ListUpdates(ctx context.Context, trackingNumber string) ([]*models.TrackingUpdate, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

const publishTimeout = 2 * time.Second

type Service struct {
	repo     Repository
	cache    cache.BytesCache
	cacheTTL time.Duration

	producer Publisher
	topic    string

	publicBaseURL string

	log       *zap.Logger
	now       func() time.Time
	newNumber func(now time.Time) (string, error)
}

func New(repo Repository, c cache.BytesCache, cacheTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		cache:     c,
		cacheTTL:  cacheTTL,
		topic:     messages.TrackingStatusChangedTopic,
		log:       zap.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
		newNumber: NewTrackingNumber,
	}
}

func (s *Service) WithPublisher(p Publisher, topic string) *Service {
	s.producer = p
	if topic != "" {
		s.topic = topic
	}
	return s
}

func (s *Service) WithLogger(l *zap.Logger) *Service {
	s.log = logger.OrNop(l).Named("trackings")
	return s
}

// WithPublicBaseURL задаёт адрес страницы отслеживания, который кодируется в QR.
func (s *Service) WithPublicBaseURL(u string) *Service {
	s.publicBaseURL = u
	return s
}

// InvalidateCached сбрасывает кэш записи; вызывается и из consumer'а событий.
func (s *Service) InvalidateCached(ctx context.Context, trackingNumber string) {
	if s.cache == nil || trackingNumber == "" {
		return
	}
	if err := s.cache.Del(ctx, cache.TrackingRecordKey(trackingNumber)); err != nil {
		s.log.Warn("cache del failed", zap.String("tracking_number", trackingNumber), zap.Error(err))
	}
}

func (s *Service) cachedRecord(ctx context.Context, trackingNumber string) (*models.Tracking, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	b, ok, err := s.cache.Get(ctx, cache.TrackingRecordKey(trackingNumber))
	if err != nil {
		s.log.Debug("cache get failed", zap.String("tracking_number", trackingNumber), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var t models.Tracking
	if json.Unmarshal(b, &t) != nil {
		return nil, false
	}
	return &t, true
}

func (s *Service) storeCached(ctx context.Context, t *models.Tracking) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.TrackingRecordKey(t.TrackingNumber), b, s.cacheTTL); err != nil {
		s.log.Debug("cache set failed", zap.String("tracking_number", t.TrackingNumber), zap.Error(err))
	}
}

// publish не возвращает ошибку: событие вторично по отношению к записи в БД.
func (s *Service) publish(ctx context.Context, msg messages.TrackingStatusChanged) {
	if s.producer == nil {
		return
	}
	if msg.ChangedAt.IsZero() {
		msg.ChangedAt = s.now()
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.producer.Publish(pctx, s.topic, []byte(msg.TrackingNumber), b); err != nil {
		s.log.Warn("publish status change failed",
			zap.String("tracking_number", msg.TrackingNumber),
			zap.String("topic", s.topic),
			zap.Error(err),
		)
	}
}

func (s *Service) changed(ctx context.Context, before, after *models.Tracking, by string) {
	s.InvalidateCached(ctx, after.TrackingNumber)
	msg := messages.TrackingStatusChanged{
		TrackingNumber: after.TrackingNumber,
		NewStatus:      string(after.Status),
		StatusLabel:    after.StatusLabel,
		ChangedBy:      by,
		ChangedAt:      after.UpdatedAt,
	}
	if before != nil {
		msg.OldStatus = string(before.Status)
	}
	s.publish(ctx, msg)
}
