package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"todochat-api/domain"
)

type stubBackend struct {
	listTodosFn  func(ctx context.Context) ([]domain.Todo, error)
	getTodoFn    func(ctx context.Context, id string) (domain.Todo, error)
	createTodoFn func(ctx context.Context, n domain.NewTodo) (domain.Todo, error)
	updateTodoFn func(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error)
	deleteTodoFn func(ctx context.Context, id string) error
}

func (s *stubBackend) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	if s.listTodosFn == nil {
		return nil, errors.New("unexpected ListTodos call")
	}
	return s.listTodosFn(ctx)
}

func (s *stubBackend) GetTodo(ctx context.Context, id string) (domain.Todo, error) {
	if s.getTodoFn == nil {
		return domain.Todo{}, errors.New("unexpected GetTodo call")
	}
	return s.getTodoFn(ctx, id)
}

func (s *stubBackend) CreateTodo(ctx context.Context, n domain.NewTodo) (domain.Todo, error) {
	if s.createTodoFn == nil {
		return domain.Todo{}, errors.New("unexpected CreateTodo call")
	}
	return s.createTodoFn(ctx, n)
}

func (s *stubBackend) UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	if s.updateTodoFn == nil {
		return domain.Todo{}, errors.New("unexpected UpdateTodo call")
	}
	return s.updateTodoFn(ctx, id, patch)
}

func (s *stubBackend) DeleteTodo(ctx context.Context, id string) error {
	if s.deleteTodoFn == nil {
		return errors.New("unexpected DeleteTodo call")
	}
	return s.deleteTodoFn(ctx, id)
}

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCacheListTodosMissThenHit(t *testing.T) {
	mr, client := testRedis(t)
	ctx := context.Background()
	expected := []domain.Todo{{
		ID:        "t1",
		Item:      "leite",
		Quantity:  2,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	var calls int
	cache := NewCache(&stubBackend{
		listTodosFn: func(ctx context.Context) ([]domain.Todo, error) {
			calls++
			return append([]domain.Todo(nil), expected...), nil
		},
	}, client, time.Minute)

	todos, err := cache.ListTodos(ctx)
	if err != nil {
		t.Fatalf("list todos: %v", err)
	}
	if !reflect.DeepEqual(todos, expected) {
		t.Fatalf("unexpected todos: %#v", todos)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to backend, got %d", calls)
	}
	if ttl := mr.TTL(listCacheKey()); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	cached, err := cache.ListTodos(ctx)
	if err != nil {
		t.Fatalf("list cached todos: %v", err)
	}
	if !reflect.DeepEqual(cached, expected) {
		t.Fatalf("unexpected cached todos: %#v", cached)
	}
	if calls != 1 {
		t.Fatalf("expected cached list to avoid backend, calls=%d", calls)
	}
}

func TestCacheGetTodoMissThenHit(t *testing.T) {
	_, client := testRedis(t)
	ctx := context.Background()
	expected := domain.Todo{
		ID:        "t1",
		Item:      "pão",
		Quantity:  1,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var calls int
	cache := NewCache(&stubBackend{
		getTodoFn: func(ctx context.Context, id string) (domain.Todo, error) {
			calls++
			if id != "t1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return expected, nil
		},
	}, client, time.Minute)

	got, err := cache.GetTodo(ctx, "t1")
	if err != nil {
		t.Fatalf("get todo: %v", err)
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected todo: %#v", got)
	}

	cached, err := cache.GetTodo(ctx, "t1")
	if err != nil {
		t.Fatalf("get cached todo: %v", err)
	}
	if !reflect.DeepEqual(cached, expected) {
		t.Fatalf("unexpected cached todo: %#v", cached)
	}
	if calls != 1 {
		t.Fatalf("expected cached get to avoid backend, calls=%d", calls)
	}
}

func TestCacheMutationsEvict(t *testing.T) {
	mr, client := testRedis(t)
	ctx := context.Background()
	stored := domain.Todo{ID: "t1", Item: "leite", Quantity: 1, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

	listCalls := 0
	cache := NewCache(&stubBackend{
		listTodosFn: func(ctx context.Context) ([]domain.Todo, error) {
			listCalls++
			return []domain.Todo{stored}, nil
		},
		getTodoFn: func(ctx context.Context, id string) (domain.Todo, error) {
			return stored, nil
		},
		createTodoFn: func(ctx context.Context, n domain.NewTodo) (domain.Todo, error) {
			return domain.Todo{ID: "t2", Item: n.Item, Quantity: n.Quantity}, nil
		},
		updateTodoFn: func(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
			return patch.Apply(stored), nil
		},
		deleteTodoFn: func(ctx context.Context, id string) error {
			return nil
		},
	}, client, time.Minute)

	if _, err := cache.ListTodos(ctx); err != nil {
		t.Fatalf("prime list: %v", err)
	}
	if _, err := cache.GetTodo(ctx, "t1"); err != nil {
		t.Fatalf("prime item: %v", err)
	}
	if !mr.Exists(listCacheKey()) || !mr.Exists(itemCacheKey("t1")) {
		t.Fatal("expected both keys to be cached")
	}

	if _, err := cache.CreateTodo(ctx, domain.NewTodo{Item: "ovos", Quantity: 12}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if mr.Exists(listCacheKey()) {
		t.Fatal("create must evict the list key")
	}

	if _, err := cache.ListTodos(ctx); err != nil {
		t.Fatalf("reprime list: %v", err)
	}
	q := 5.0
	if _, err := cache.UpdateTodo(ctx, "t1", domain.TodoPatch{Quantity: &q}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if mr.Exists(listCacheKey()) || mr.Exists(itemCacheKey("t1")) {
		t.Fatal("update must evict the list and item keys")
	}

	if _, err := cache.GetTodo(ctx, "t1"); err != nil {
		t.Fatalf("reprime item: %v", err)
	}
	if err := cache.DeleteTodo(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(itemCacheKey("t1")) {
		t.Fatal("delete must evict the item key")
	}

	if listCalls != 2 {
		t.Fatalf("unexpected backend list calls: %d", listCalls)
	}
}

func TestCacheBackendErrorNotCached(t *testing.T) {
	mr, client := testRedis(t)
	ctx := context.Background()

	cache := NewCache(&stubBackend{
		listTodosFn: func(ctx context.Context) ([]domain.Todo, error) {
			return nil, errors.New("table unavailable")
		},
	}, client, time.Minute)

	if _, err := cache.ListTodos(ctx); err == nil {
		t.Fatal("expected backend error to surface")
	}
	if mr.Exists(listCacheKey()) {
		t.Fatal("errors must not populate the cache")
	}
}

func TestCacheNilRedisPassesThrough(t *testing.T) {
	ctx := context.Background()
	var calls int
	cache := NewCache(&stubBackend{
		listTodosFn: func(ctx context.Context) ([]domain.Todo, error) {
			calls++
			return []domain.Todo{}, nil
		},
	}, nil, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.ListTodos(ctx); err != nil {
			t.Fatalf("list todos: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("nil redis must hit the backend every time, calls=%d", calls)
	}
}
