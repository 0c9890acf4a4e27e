package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ключи кеша записей и списков
func FileKey(id uuid.UUID) string       { return "file_" + id.String() }
func FileListKey(ws uuid.UUID) string   { return "files_" + ws.String() }
func FolderListKey(ws uuid.UUID) string { return "folders_" + ws.String() }

type item struct {
	value      interface{}
	expiration int64
}

// MemoryCache потокобезопасный кеш с TTL и фоновой очисткой
type MemoryCache struct {
	items map[string]item
	mu    sync.RWMutex
	stop  chan struct{}
}

func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]item),
		stop:  make(chan struct{}),
	}
	go c.cleanupExpiredItems()
	return c
}

func (c *MemoryCache) Set(key string, value interface{}, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:      value,
		expiration: time.Now().Add(duration).UnixNano(),
	}
}

func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found {
		return nil, false
	}

	if it.expiration > 0 && time.Now().UnixNano() > it.expiration {
		return nil, false
	}

	return it.value, true
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Close останавливает фоновую очистку
func (c *MemoryCache) Close() {
	close(c.stop)
}

func (c *MemoryCache) cleanupExpiredItems() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now().UnixNano()
			for key, it := range c.items {
				if it.expiration > 0 && now > it.expiration {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
