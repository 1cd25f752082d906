package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/errcodes"
)

const defaultPrefix = "mm_scanner:notified:"

// NotificationStore NotificationRecord в Redis: ключ живёт ровно окно подавления.
type NotificationStore struct {
	client *redis.Client
	prefix string
}

func NewNotificationStore(client *redis.Client, prefix string) *NotificationStore {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &NotificationStore{client: client, prefix: prefix}
}

func (s *NotificationStore) redisKey(key entity.NotificationKey) string {
	return s.prefix + key.String()
}

func (s *NotificationStore) LastNotifiedAt(ctx context.Context, key entity.NotificationKey) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, domain.WrapError(err, errcodes.InternalServerError, "redis get")
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, domain.WrapError(err, errcodes.UnexpectedFormat, "redis value "+raw)
	}

	return time.UnixMilli(ms), true, nil
}

// RecordNotified запись без TTL: без окна подавления нечему истекать.
func (s *NotificationStore) RecordNotified(ctx context.Context, key entity.NotificationKey, when time.Time) error {
	if err := s.client.Set(ctx, s.redisKey(key), when.UnixMilli(), 0).Err(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "redis set")
	}

	return nil
}

// Claim SET NX PX window+1ms: ключ живёт на миллисекунду дольше окна, чтобы
// повтор проходил строго после окна, как в остальных хранилищах.
func (s *NotificationStore) Claim(
	ctx context.Context,
	key entity.NotificationKey,
	now time.Time,
	window time.Duration,
) (bool, error) {
	err := s.client.SetArgs(ctx, s.redisKey(key), now.UnixMilli(), redis.SetArgs{
		Mode: "NX",
		TTL:  window + time.Millisecond,
	}).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "redis set nx")
	}

	return true, nil
}
