package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"todochat-api/domain"
)

// All todos live in a single partition; RowKey is the todo id.
const todoPartition = "todos"

// Storage provides access to the hosted todos table.
type Storage struct {
	todoTable *aztables.Client
}

// New creates a Storage instance from the given connection string.
func New(connStr, todosTable string) (*Storage, error) {
	clientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &clientOptions)
	if err != nil {
		return nil, err
	}
	return &Storage{todoTable: svc.NewClient(todosTable)}, nil
}

type todoEntity struct {
	aztables.Entity
	Item        string  `json:"Item"`
	Quantity    float64 `json:"Quantity"`
	Description string  `json:"Description"`
	Checked     bool    `json:"Checked"`
	CreatedAt   string  `json:"CreatedAt"`
}

func decodeTodoEntity(data []byte) (domain.Todo, error) {
	var ent todoEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Todo{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ent.CreatedAt)
	if err != nil {
		return domain.Todo{}, err
	}
	return domain.Todo{
		ID:          ent.RowKey,
		Item:        ent.Item,
		Quantity:    ent.Quantity,
		Description: ent.Description,
		Checked:     ent.Checked,
		CreatedAt:   createdAt,
	}, nil
}

func encodeTodoEntity(t domain.Todo) ([]byte, error) {
	return json.Marshal(todoEntity{
		Entity:      aztables.Entity{PartitionKey: todoPartition, RowKey: t.ID},
		Item:        t.Item,
		Quantity:    t.Quantity,
		Description: t.Description,
		Checked:     t.Checked,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
	})
}

// ListTodos retrieves every todo, newest first.
func (s *Storage) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	filter := "PartitionKey eq '" + todoPartition + "'"
	pager := s.todoTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	todos := []domain.Todo{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			t, err := decodeTodoEntity(e)
			if err != nil {
				return nil, err
			}
			todos = append(todos, t)
		}
	}
	sortByCreatedDesc(todos)
	return todos, nil
}

// sortByCreatedDesc orders todos by creation time descending; the table
// service returns entities in key order, not insertion order.
func sortByCreatedDesc(todos []domain.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
}

// GetTodo fetches a single todo by id.
func (s *Storage) GetTodo(ctx context.Context, id string) (domain.Todo, error) {
	ent, err := s.todoTable.GetEntity(ctx, todoPartition, id, nil)
	if err != nil {
		return domain.Todo{}, mapNotFound(err)
	}
	return decodeTodoEntity(ent.Value)
}

// CreateTodo inserts a new todo, assigning its id and creation timestamp.
func (s *Storage) CreateTodo(ctx context.Context, n domain.NewTodo) (domain.Todo, error) {
	t := domain.Todo{
		ID:          uuid.NewString(),
		Item:        n.Item,
		Quantity:    n.Quantity,
		Description: n.Description,
		Checked:     n.Checked,
		CreatedAt:   time.Now().UTC(),
	}
	data, err := encodeTodoEntity(t)
	if err != nil {
		return domain.Todo{}, err
	}
	if _, err := s.todoTable.AddEntity(ctx, data, nil); err != nil {
		return domain.Todo{}, err
	}
	return t, nil
}

// UpdateTodo applies a partial patch and returns the updated record.
func (s *Storage) UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	current, err := s.GetTodo(ctx, id)
	if err != nil {
		return domain.Todo{}, err
	}
	updated := patch.Apply(current)
	data, err := encodeTodoEntity(updated)
	if err != nil {
		return domain.Todo{}, err
	}
	opts := &aztables.UpdateEntityOptions{UpdateMode: aztables.UpdateModeReplace}
	if _, err := s.todoTable.UpdateEntity(ctx, data, opts); err != nil {
		return domain.Todo{}, mapNotFound(err)
	}
	return updated, nil
}

// DeleteTodo removes a todo by id.
func (s *Storage) DeleteTodo(ctx context.Context, id string) error {
	if _, err := s.todoTable.DeleteEntity(ctx, todoPartition, id, nil); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func mapNotFound(err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return err
}
