package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BearBump/PigeonPost/internal/broker/messages"
	"github.com/BearBump/PigeonPost/internal/logger"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает события об изменении статуса отправлений.
type Consumer struct {
	r   messageReader
	log *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	if topic == "" {
		topic = messages.TrackingStatusChangedTopic
	}
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}
	if groupID != "" {
		cfg.GroupTopics = []string{topic}
	} else {
		cfg.Topic = topic
	}
	return newConsumerWithReader(kafka.NewReader(cfg))
}

func newConsumerWithReader(r messageReader) *Consumer {
	return &Consumer{r: r, log: zap.NewNop()}
}

func (c *Consumer) WithLogger(l *zap.Logger) *Consumer {
	c.log = logger.OrNop(l).Named("kafka-consumer")
	return c
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// Consume читает сообщения до отмены ctx или первой ошибки.
// Коммит только после успешного handler, иначе сообщение потеряется.
func (c *Consumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch message")
		}
		if err := handler(msg.Key, msg.Value); err != nil {
			return err
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, "commit message")
		}
	}
}

// ConsumeStatusChanges декодирует TrackingStatusChanged. Битое сообщение логируется и коммитится,
// чтобы группа не встала на нём навсегда.
func (c *Consumer) ConsumeStatusChanges(ctx context.Context, handler func(messages.TrackingStatusChanged) error) error {
	return c.Consume(ctx, func(key, value []byte) error {
		var m messages.TrackingStatusChanged
		if err := json.Unmarshal(value, &m); err != nil {
			c.log.Warn("skip malformed status change message", zap.ByteString("key", key), zap.Error(err))
			return nil
		}
		if m.TrackingNumber == "" {
			m.TrackingNumber = string(key)
		}
		return handler(m)
	})
}
