// internal/resource/rest_source.go
package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	xerrors "admin-console/internal/pkg/errors"
	"admin-console/internal/transport"
)

// Doer is the transport call a RESTSource needs.
type Doer interface {
	Do(ctx context.Context, req transport.Request, out any) (*transport.Envelope, error)
}

// Endpoint locates one collection on the admin API.
type Endpoint struct {
	// Collection is listed with GET and created with POST, e.g. "admin/users".
	Collection string
	// Item is the prefix for single-item calls, e.g. "admin/user". Defaults to Collection.
	Item string
	// FilterKeys are the only query parameters forwarded to the list call.
	FilterKeys []string
	// PageParam defaults to "page".
	PageParam string
	// ItemsField is the key holding the list in the response data. Defaults to "items".
	ItemsField string
	// StatusMethod is used for status changes. Defaults to PUT.
	StatusMethod string
}

func (e Endpoint) withDefaults() Endpoint {
	if e.Item == "" {
		e.Item = e.Collection
	}
	if e.PageParam == "" {
		e.PageParam = "page"
	}
	if e.ItemsField == "" {
		e.ItemsField = "items"
	}
	if e.StatusMethod == "" {
		e.StatusMethod = http.MethodPut
	}
	return e
}

// RESTSource lists and mutates a collection through the transport client.
type RESTSource[T any] struct {
	client   Doer
	endpoint Endpoint
}

func NewRESTSource[T any](client Doer, endpoint Endpoint) *RESTSource[T] {
	return &RESTSource[T]{client: client, endpoint: endpoint.withDefaults()}
}

func (s *RESTSource[T]) Endpoint() Endpoint { return s.endpoint }

func (s *RESTSource[T]) List(ctx context.Context, page int, filters Filters) (Page[T], error) {
	q := url.Values{}
	q.Set(s.endpoint.PageParam, strconv.Itoa(page))
	for k, v := range filters {
		if v == "" || !slices.Contains(s.endpoint.FilterKeys, k) {
			continue
		}
		q.Set(k, v)
	}

	var raw map[string]json.RawMessage
	if _, err := s.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   s.endpoint.Collection,
		Query:  q,
	}, &raw); err != nil {
		return Page[T]{}, err
	}

	var out Page[T]
	if items, ok := raw[s.endpoint.ItemsField]; ok && string(items) != "null" {
		if err := json.Unmarshal(items, &out.Items); err != nil {
			return Page[T]{}, &xerrors.APIError{
				Kind:    xerrors.ErrServer,
				Message: fmt.Sprintf("unexpected %s list shape", s.endpoint.Collection),
				Cause:   err,
			}
		}
	}

	for field, dst := range map[string]*int{
		"current_page":  &out.Page,
		"total_pages":   &out.TotalPages,
		"total_records": &out.TotalRecords,
	} {
		if v, ok := raw[field]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
	if out.Page == 0 {
		out.Page = page
	}
	return out, nil
}

func (s *RESTSource[T]) Apply(ctx context.Context, m Mutation) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	req := transport.Request{Body: m.Payload}
	id := url.PathEscape(m.TargetID)
	switch m.Kind {
	case MutationCreate:
		req.Method = http.MethodPost
		req.Path = s.endpoint.Collection
	case MutationUpdate:
		req.Method = http.MethodPut
		req.Path = join(s.endpoint.Item, id)
	case MutationDelete:
		req.Method = http.MethodDelete
		req.Path = join(s.endpoint.Item, id)
		req.Body = nil
	case MutationStatusChange:
		req.Method = s.endpoint.StatusMethod
		req.Path = join(s.endpoint.Item, id, url.PathEscape(m.Action))
	}

	env, err := s.client.Do(ctx, req, nil)
	if err != nil {
		return Result{}, err
	}
	if env == nil {
		return Result{}, nil
	}
	return Result{Message: env.Message, Data: env.Data}, nil
}

func join(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.Trim(p, "/")
	}
	return strings.Join(parts, "/")
}
