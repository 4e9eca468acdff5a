package cache

import (
	"context"
	"time"
)

// BytesCache — best-effort кэш сырых байтов. Промах и ошибка не должны ломать чтение из БД.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

func TrackingRecordKey(trackingNumber string) string {
	return "tracking:" + trackingNumber + ":record"
}
