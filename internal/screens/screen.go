// internal/screens/screen.go
package screens

import (
	"context"

	"admin-console/internal/resource"
)

// Screen is a resource controller with its element type erased, so the HTTP,
// websocket and CLI surfaces can drive any kind by name.
type Screen interface {
	Kind() Kind
	Mount(ctx context.Context) error
	Refresh(ctx context.Context) error
	Execute(ctx context.Context, req resource.FetchRequest) error
	RequestFilterChange(key, value string) (resource.FetchRequest, error)
	RequestPage(n int) (resource.FetchRequest, bool)
	SetFilter(ctx context.Context, key, value string) error
	GoToPage(ctx context.Context, n int) error
	Mutate(ctx context.Context, m resource.Mutation) (resource.Result, error)
	IsMutating(targetID string) bool
	Snapshot() any
	Close()
}

type screen[T any] struct {
	*resource.Controller[T]
	kind Kind
}

func (s *screen[T]) Kind() Kind { return s.kind }

func (s *screen[T]) Snapshot() any { return s.Controller.Snapshot() }
