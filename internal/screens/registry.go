// internal/screens/registry.go
package screens

import (
	"fmt"
	"slices"
	"time"

	"admin-console/internal/notify"
	xerrors "admin-console/internal/pkg/errors"
	"admin-console/internal/resource"

	"go.uber.org/zap"
)

// PermissionChecker is satisfied by the session gate.
type PermissionChecker interface {
	HasPermission(key string) bool
}

type Deps struct {
	Client   resource.Doer
	Session  resource.Session
	Notifier notify.Notifier
	Observer resource.MutationObserver
	Debounce time.Duration
	Logger   *zap.Logger
	// OnChange receives every state change of every screen.
	OnChange func(kind string, state any)
}

// Registry owns one screen per resource kind.
type Registry struct {
	deps    Deps
	screens map[string]Screen
	order   []string
}

func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	r := &Registry{deps: deps, screens: make(map[string]Screen)}
	registerAll(r)
	return r
}

func register[T any](r *Registry, k Kind) {
	s := &screen[T]{kind: k}
	opts := resource.Options{
		Subject:    k.Subject,
		FilterKeys: k.Endpoint.FilterKeys,
		SearchKeys: k.SearchKeys,
		Debounce:   r.deps.Debounce,
		Session:    r.deps.Session,
		Notifier:   r.deps.Notifier,
		Observer:   r.deps.Observer,
		Logger:     r.deps.Logger.With(zap.String("screen", k.Name)),
	}
	if r.deps.OnChange != nil {
		onChange := r.deps.OnChange
		opts.OnChange = func() { onChange(k.Name, s.Snapshot()) }
	}
	s.Controller = resource.NewController[T](k.Name, resource.NewRESTSource[T](r.deps.Client, k.Endpoint), opts)

	r.screens[k.Name] = s
	r.order = append(r.order, k.Name)
}

// Get returns the screen for a kind.
func (r *Registry) Get(kind string) (Screen, error) {
	s, ok := r.screens[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownResource, kind)
	}
	return s, nil
}

// Kinds lists every registered kind in navigation order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.screens[name].Kind())
	}
	return out
}

// Visible lists the kinds the operator may open.
func (r *Registry) Visible(perms PermissionChecker) []Kind {
	return slices.DeleteFunc(r.Kinds(), func(k Kind) bool {
		return !perms.HasPermission(k.View)
	})
}

// Access returns the screen if the operator holds the view permission, and the
// manage permission as well when manage is set. It fails closed, and every
// denial sends one permission notice.
func (r *Registry) Access(perms PermissionChecker, kind string, manage bool) (Screen, error) {
	s, err := r.Get(kind)
	if err != nil {
		return nil, err
	}
	k := s.Kind()
	if !perms.HasPermission(k.View) {
		return nil, r.deny(k, fmt.Errorf("%w: %s requires %s", xerrors.ErrForbidden, kind, k.View))
	}
	if manage && (k.ReadOnly() || !perms.HasPermission(k.Manage)) {
		return nil, r.deny(k, fmt.Errorf("%w: %s is not editable by this account", xerrors.ErrForbidden, kind))
	}
	return s, nil
}

func (r *Registry) deny(k Kind, err error) error {
	for _, msg := range xerrors.Notices(err, k.Subject) {
		r.deps.Notifier.Notify(notify.Notice{Level: notify.LevelError, Message: msg, Source: k.Name})
	}
	return err
}

// Close stops every screen's pending work.
func (r *Registry) Close() {
	for _, s := range r.screens {
		s.Close()
	}
}
