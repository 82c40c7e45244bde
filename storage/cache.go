package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"todochat-api/domain"
)

type backend interface {
	ListTodos(ctx context.Context) ([]domain.Todo, error)
	GetTodo(ctx context.Context, id string) (domain.Todo, error)
	CreateTodo(ctx context.Context, n domain.NewTodo) (domain.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Cache wraps a Storage instance with Redis-backed caching for reads. Every
// mutation evicts the affected keys so readers never see stale records past
// the eviction.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
// A nil client disables caching entirely.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	if todos, ok := c.loadList(ctx); ok {
		return todos, nil
	}
	todos, err := c.base.ListTodos(ctx)
	if err != nil {
		return nil, err
	}
	c.storeList(ctx, todos)
	return todos, nil
}

func (c *Cache) GetTodo(ctx context.Context, id string) (domain.Todo, error) {
	if t, ok := c.loadItem(ctx, id); ok {
		return t, nil
	}
	t, err := c.base.GetTodo(ctx, id)
	if err != nil {
		return domain.Todo{}, err
	}
	c.storeItem(ctx, t)
	return t, nil
}

func (c *Cache) CreateTodo(ctx context.Context, n domain.NewTodo) (domain.Todo, error) {
	t, err := c.base.CreateTodo(ctx, n)
	if err != nil {
		return domain.Todo{}, err
	}
	c.evict(ctx, t.ID)
	return t, nil
}

func (c *Cache) UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	t, err := c.base.UpdateTodo(ctx, id, patch)
	if err != nil {
		return domain.Todo{}, err
	}
	c.evict(ctx, id)
	return t, nil
}

func (c *Cache) DeleteTodo(ctx context.Context, id string) error {
	if err := c.base.DeleteTodo(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *Cache) loadList(ctx context.Context) ([]domain.Todo, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, listCacheKey()).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, listCacheKey()).Err()
		}
		return nil, false
	}
	var todos []domain.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		_ = c.redis.Del(ctx, listCacheKey()).Err()
		return nil, false
	}
	return todos, true
}

func (c *Cache) storeList(ctx context.Context, todos []domain.Todo) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(todos)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, listCacheKey(), data, c.ttl).Err()
}

func (c *Cache) loadItem(ctx context.Context, id string) (domain.Todo, bool) {
	if c.redis == nil {
		return domain.Todo{}, false
	}
	data, err := c.redis.Get(ctx, itemCacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, itemCacheKey(id)).Err()
		}
		return domain.Todo{}, false
	}
	var t domain.Todo
	if err := json.Unmarshal(data, &t); err != nil {
		_ = c.redis.Del(ctx, itemCacheKey(id)).Err()
		return domain.Todo{}, false
	}
	return t, true
}

func (c *Cache) storeItem(ctx context.Context, t domain.Todo) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, itemCacheKey(t.ID), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, id string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, listCacheKey(), itemCacheKey(id)).Result()
}

func listCacheKey() string {
	return "todos:list"
}

func itemCacheKey(id string) string {
	return "todos:item:" + id
}
