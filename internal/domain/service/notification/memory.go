package notification

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"mm_scanner/internal/domain/entity"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryRecords записи в памяти процесса на go-cache.
type MemoryRecords struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{
		cache: cache.New(cache.NoExpiration, memoryCleanupInterval),
	}
}

func (m *MemoryRecords) LastNotifiedAt(_ context.Context, key entity.NotificationKey) (time.Time, bool, error) {
	v, ok := m.cache.Get(key.String())
	if !ok {
		return time.Time{}, false, nil
	}

	return v.(time.Time), true, nil //nolint:forcetypeassert
}

func (m *MemoryRecords) RecordNotified(_ context.Context, key entity.NotificationKey, when time.Time) error {
	m.cache.Set(key.String(), when, cache.NoExpiration)

	return nil
}

func (m *MemoryRecords) Claim(_ context.Context, key entity.NotificationKey, now time.Time, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.cache.Get(key.String()); ok {
		if last, _ := v.(time.Time); now.Sub(last) <= window {
			return false, nil
		}
	}

	m.cache.Set(key.String(), now, window)

	return true, nil
}

func (m *MemoryRecords) Len() int {
	return m.cache.ItemCount()
}
