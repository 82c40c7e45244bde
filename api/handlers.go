package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"todochat-api/domain"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Store, extractor Extractor, completer Completer, limiter *FixedWindowLimiter, respCache *ResponseCache, logger *log.Logger) {
	e.GET("/api/todos", listTodos(store))
	e.GET("/api/todos/:id", getTodo(store))
	e.POST("/api/todos", createTodo(store))
	e.PUT("/api/todos/:id", updateTodo(store))
	e.DELETE("/api/todos/:id", deleteTodo(store))
	e.POST("/api/chat", postChat(extractor, completer, limiter, respCache, logger))
	e.GET("/api/health", health())
}

func health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "ok", Message: "Server is running"})
	}
}

func listTodos(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		todos, err := store.ListTodos(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, todos)
	}
}

func getTodo(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		t, err := store.GetTodo(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, t)
	}
}

func createTodo(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createTodoRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if req.Item == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Item is required"})
		}

		n := domain.NewTodo{Item: req.Item, Quantity: 1}
		if req.Quantity != nil {
			n.Quantity = *req.Quantity
		}
		if req.Description != nil {
			n.Description = *req.Description
		}
		if req.Checked != nil {
			n.Checked = *req.Checked
		}

		t, err := store.CreateTodo(c.Request().Context(), n)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, t)
	}
}

func updateTodo(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch domain.TodoPatch
		if err := decodeBody(c, &patch); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		t, err := store.UpdateTodo(c.Request().Context(), c.Param("id"), patch)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, t)
	}
}

func deleteTodo(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if err := store.DeleteTodo(c.Request().Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, deleteTodoResponse{Success: true, ID: id})
	}
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(v)
}
