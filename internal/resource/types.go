// internal/resource/types.go
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	xerrors "admin-console/internal/pkg/errors"
)

// ErrSuperseded is returned by a load whose response arrived after a newer
// load was started. The response was discarded.
var ErrSuperseded = errors.New("response superseded by a newer request")

// Filters maps a resource's filter keys to their values.
type Filters map[string]string

func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	maps.Copy(out, f)
	return out
}

// Page is one page of a collection as returned by the API.
type Page[T any] struct {
	Items        []T
	Page         int
	TotalPages   int
	TotalRecords int
}

// State is a point-in-time copy of a controller.
type State[T any] struct {
	Items        []T      `json:"items"`
	Page         int      `json:"page"`
	TotalPages   int      `json:"total_pages"`
	TotalRecords int      `json:"total_records"`
	IsLoading    bool     `json:"is_loading"`
	Filters      Filters  `json:"filters"`
	Mutating     []string `json:"mutating,omitempty"`
}

type MutationKind string

const (
	MutationCreate       MutationKind = "create"
	MutationUpdate       MutationKind = "update"
	MutationDelete       MutationKind = "delete"
	MutationStatusChange MutationKind = "status_change"
)

// Mutation is a pending create, update, delete or status change against one item.
type Mutation struct {
	Kind     MutationKind `json:"kind"`
	TargetID string       `json:"target_id,omitempty"`
	Action   string       `json:"action,omitempty"`
	Payload  any          `json:"payload,omitempty"`
}

// Validate checks the mutation's shape before it is sent.
func (m Mutation) Validate() error {
	switch m.Kind {
	case MutationCreate:
		if m.TargetID != "" {
			return fmt.Errorf("%w: create must not carry a target id", xerrors.ErrInvalidInput)
		}
	case MutationUpdate, MutationDelete:
		if m.TargetID == "" {
			return fmt.Errorf("%w: %s requires a target id", xerrors.ErrInvalidInput, m.Kind)
		}
	case MutationStatusChange:
		if m.TargetID == "" {
			return fmt.Errorf("%w: status change requires a target id", xerrors.ErrInvalidInput)
		}
		if m.Action == "" {
			return fmt.Errorf("%w: status change requires an action", xerrors.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: %q", xerrors.ErrUnsupportedMutation, m.Kind)
	}
	return nil
}

// entityKey identifies the entity a mutation holds. Creates share one key so a
// create modal cannot be submitted twice.
func (m Mutation) entityKey() string {
	if m.Kind == MutationCreate {
		return "new"
	}
	return m.TargetID
}

// Result is what the API answered to a successful mutation.
type Result struct {
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// FetchRequest describes a load the caller must run. Debounce is non-zero when
// the request may be coalesced with later ones.
type FetchRequest struct {
	Page     int           `json:"page"`
	Filters  Filters       `json:"filters"`
	Debounce time.Duration `json:"debounce,omitempty"`
}

// Source fetches and mutates one resource collection.
type Source[T any] interface {
	List(ctx context.Context, page int, filters Filters) (Page[T], error)
	Apply(ctx context.Context, m Mutation) (Result, error)
}

// Session is the part of the session gate a controller needs.
type Session interface {
	CheckAuth(ctx context.Context) bool
	Epoch() uint64
}

// MutationObserver is told about every mutation once it settles.
type MutationObserver interface {
	MutationSettled(ctx context.Context, resource string, m Mutation, err error)
}
