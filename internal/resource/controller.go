// internal/resource/controller.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"admin-console/internal/notify"
	xerrors "admin-console/internal/pkg/errors"

	"go.uber.org/zap"
)

// DefaultSearchDebounce coalesces free-text search keystrokes.
const DefaultSearchDebounce = 300 * time.Millisecond

type Options struct {
	// Subject names the collection in notices, e.g. "users".
	Subject string
	// FilterKeys are the filters this resource accepts. Empty means any.
	FilterKeys []string
	// SearchKeys are free-text filters whose changes are debounced.
	SearchKeys []string
	Debounce   time.Duration

	Session  Session
	Notifier notify.Notifier
	Observer MutationObserver
	Logger   *zap.Logger

	// OnChange is called after every observable state change.
	OnChange func()
}

// Controller drives fetch, filter, paginate and mutate for one collection.
// Items, page and totals only ever change together, from a successful load.
type Controller[T any] struct {
	name string
	src  Source[T]
	opts Options

	mu           sync.Mutex
	items        []T
	page         int
	totalPages   int
	totalRecords int
	filters      Filters
	loading      bool
	seq          uint64
	// intent counts page and filter changes made through RequestPage and
	// RequestFilterChange. A load started under an older intent never
	// writes page or filters back.
	intent       uint64
	inflight     map[string]struct{}
	timer        *time.Timer
	closed       bool
}

func NewController[T any](name string, src Source[T], opts Options) *Controller[T] {
	if opts.Subject == "" {
		opts.Subject = name
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSearchDebounce
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller[T]{
		name:     name,
		src:      src,
		opts:     opts,
		page:     1,
		filters:  Filters{},
		inflight: make(map[string]struct{}),
	}
}

func (c *Controller[T]) Name() string { return c.name }

// Mount is the screen entry point. It checks the session before any fetch.
func (c *Controller[T]) Mount(ctx context.Context) error {
	if c.opts.Session != nil && !c.opts.Session.CheckAuth(ctx) {
		return xerrors.ErrUnauthorized
	}
	c.mu.Lock()
	page, filters := c.page, c.filters.Clone()
	c.mu.Unlock()
	return c.Load(ctx, page, filters)
}

// Refresh reloads the current page with the current filters.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page, filters := c.page, c.filters.Clone()
	c.mu.Unlock()
	return c.Load(ctx, page, filters)
}

// Load fetches one page. Only the response to the most recently started load
// is applied; older responses return ErrSuperseded. On failure the previous
// items stay in place and one notice is sent.
func (c *Controller[T]) Load(ctx context.Context, page int, filters Filters) error {
	if page < 1 {
		page = 1
	}
	filters = filters.Clone()

	c.mu.Lock()
	c.seq++
	seq, intent := c.seq, c.intent
	c.loading = true
	c.mu.Unlock()
	c.changed()

	epoch := c.epoch()
	result, err := c.src.List(ctx, page, filters)

	c.mu.Lock()
	latest := seq == c.seq
	if latest {
		c.loading = false
	}
	sessionEnded := c.epoch() != epoch
	if latest && err == nil && !sessionEnded {
		c.applyLocked(result, filters, intent == c.intent)
	}
	c.mu.Unlock()
	if latest {
		c.changed()
	}

	switch {
	case !latest:
		c.opts.Logger.Debug("discarded stale response",
			zap.String("resource", c.name), zap.Uint64("seq", seq))
		return ErrSuperseded
	case sessionEnded:
		return xerrors.ErrSessionExpired
	case err != nil:
		c.report(err)
		return fmt.Errorf("load %s page %d: %w", c.name, page, err)
	}
	return nil
}

// RequestFilterChange records a filter change and returns the fetch it requires.
// Changing a filter always moves back to page 1. An empty value clears the filter.
func (c *Controller[T]) RequestFilterChange(key, value string) (FetchRequest, error) {
	if len(c.opts.FilterKeys) > 0 && !slices.Contains(c.opts.FilterKeys, key) {
		return FetchRequest{}, fmt.Errorf("%w: unknown filter %q for %s", xerrors.ErrInvalidInput, key, c.name)
	}

	c.mu.Lock()
	if value == "" {
		delete(c.filters, key)
	} else {
		c.filters[key] = value
	}
	c.page = 1
	c.intent++
	req := FetchRequest{Page: 1, Filters: c.filters.Clone()}
	c.mu.Unlock()

	if slices.Contains(c.opts.SearchKeys, key) {
		req.Debounce = c.opts.Debounce
	}
	return req, nil
}

// RequestPage records a page change. It returns false, and changes nothing,
// when n is outside 1..totalPages.
func (c *Controller[T]) RequestPage(n int) (FetchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 1 || n > c.totalPages {
		return FetchRequest{}, false
	}
	c.page = n
	c.intent++
	return FetchRequest{Page: n, Filters: c.filters.Clone()}, true
}

// Execute runs a FetchRequest. Debounced requests are coalesced: only the last
// one within the window is loaded, and any immediate request cancels a pending one.
// Scheduling a debounced request supersedes loads already in flight.
func (c *Controller[T]) Execute(ctx context.Context, req FetchRequest) error {
	if req.Debounce <= 0 {
		c.cancelPending()
		return c.Load(ctx, req.Page, req.Filters)
	}

	bg := context.WithoutCancel(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.seq++
	c.timer = time.AfterFunc(req.Debounce, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.timer = nil
		c.mu.Unlock()
		_ = c.Load(bg, req.Page, req.Filters)
	})
	return nil
}

// SetFilter is RequestFilterChange followed by Execute.
func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) error {
	req, err := c.RequestFilterChange(key, value)
	if err != nil {
		return err
	}
	return c.Execute(ctx, req)
}

// GoToPage is RequestPage followed by Execute; out-of-range pages are a no-op.
func (c *Controller[T]) GoToPage(ctx context.Context, n int) error {
	req, ok := c.RequestPage(n)
	if !ok {
		return nil
	}
	return c.Execute(ctx, req)
}

// Mutate sends one mutation. At most one mutation per entity may be in flight.
// Success reloads the current page instead of editing items locally; failure
// leaves items untouched. Mutations are never retried.
func (c *Controller[T]) Mutate(ctx context.Context, m Mutation) (Result, error) {
	if err := m.Validate(); err != nil {
		c.opts.Notifier.Notify(notify.Notice{Level: notify.LevelError, Message: err.Error(), Source: c.name})
		return Result{}, err
	}

	key := m.entityKey()
	c.mu.Lock()
	if _, busy := c.inflight[key]; busy {
		c.mu.Unlock()
		c.opts.Notifier.Notify(notify.Notice{
			Level:   notify.LevelWarning,
			Message: xerrors.ErrDuplicateSubmission.Error(),
			Source:  c.name,
		})
		return Result{}, xerrors.ErrDuplicateSubmission
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()
	c.changed()

	epoch := c.epoch()
	res, err := c.src.Apply(ctx, m)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	c.changed()

	if c.opts.Observer != nil {
		c.opts.Observer.MutationSettled(ctx, c.name, m, err)
	}

	if c.epoch() != epoch {
		if err == nil {
			err = xerrors.ErrSessionExpired
		}
		return res, err
	}
	if err != nil {
		c.report(err)
		return Result{}, fmt.Errorf("%s %s: %w", m.Kind, c.name, err)
	}

	msg := res.Message
	if msg == "" {
		msg = fmt.Sprintf("%s %s succeeded.", c.opts.Subject, m.Kind)
	}
	c.opts.Notifier.Notify(notify.Notice{Level: notify.LevelSuccess, Message: msg, Source: c.name})

	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.opts.Logger.Warn("resync after mutation failed",
			zap.String("resource", c.name), zap.Error(err))
	}
	return res, nil
}

// IsMutating reports whether a mutation for the target id is in flight.
func (c *Controller[T]) IsMutating(targetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[targetID]
	return ok
}

// Snapshot returns a copy of the controller state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	mutating := make([]string, 0, len(c.inflight))
	for k := range c.inflight {
		mutating = append(mutating, k)
	}
	slices.Sort(mutating)

	return State[T]{
		Items:        slices.Clone(c.items),
		Page:         c.page,
		TotalPages:   c.totalPages,
		TotalRecords: c.totalRecords,
		IsLoading:    c.loading,
		Filters:      c.filters.Clone(),
		Mutating:     mutating,
	}
}

// Close stops pending debounced loads.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// applyLocked swaps in a page of results. Page and filters are only taken
// from the response when no page or filter change happened since the load began.
func (c *Controller[T]) applyLocked(p Page[T], filters Filters, current bool) {
	totalPages := max(p.TotalPages, 0)

	c.items = slices.Clone(p.Items)
	c.totalPages = totalPages
	c.totalRecords = max(p.TotalRecords, 0)
	if current {
		c.page = min(max(p.Page, 1), max(totalPages, 1))
		c.filters = filters
	}
}

func (c *Controller[T]) cancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// report sends one notice per failure. Unauthorized failures are reported by
// the session gate, which de-duplicates them across screens.
func (c *Controller[T]) report(err error) {
	if errors.Is(err, xerrors.ErrUnauthorized) || errors.Is(err, xerrors.ErrSessionExpired) {
		return
	}
	for _, msg := range xerrors.Notices(err, c.opts.Subject) {
		c.opts.Notifier.Notify(notify.Notice{Level: notify.LevelError, Message: msg, Source: c.name})
	}
}

func (c *Controller[T]) epoch() uint64 {
	if c.opts.Session == nil {
		return 0
	}
	return c.opts.Session.Epoch()
}

func (c *Controller[T]) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}
