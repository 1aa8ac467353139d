package crud

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
)

// ListView is what a list renders.
type ListView[T any] struct {
	Loading bool
	Error   string
	Rows    []T

	// Placeholder is set exactly when the list is idle and empty.
	Placeholder string
}

// List holds the last collection read from the backend.
type List[T any] struct {
	name     string
	fetch    func(context.Context) ([]T, error)
	messages Messages
	banner   *Banner

	mu       sync.Mutex
	items    []T
	inFlight int
}

// NewList builds a list reporting errors to banner.
func NewList[T any](name string, fetch func(context.Context) ([]T, error), messages Messages, banner *Banner) *List[T] {
	return &List[T]{name: name, fetch: fetch, messages: messages, banner: banner}
}

// Load fetches the whole collection and replaces the rows. On failure the
// previous rows stay visible and the banner carries the error. Concurrent
// loads are not merged; whichever finishes last decides the rows.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.inFlight++
	l.mu.Unlock()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight--

	if err != nil {
		slogx.FromContext(ctx).Warn("backend operation failed", "entity", l.name, "operation", "list", "error", err)
		l.banner.Set(ErrorMessage(err, l.messages.LoadFailed))
		return err
	}

	l.items = items
	l.banner.Clear()
	return nil
}

// Rows returns a copy of the current rows.
func (l *List[T]) Rows() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

// View snapshots the list for rendering.
func (l *List[T]) View() ListView[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := ListView[T]{
		Loading: l.inFlight > 0,
		Error:   l.banner.String(),
		Rows:    append([]T(nil), l.items...),
	}
	if !v.Loading && len(v.Rows) == 0 {
		v.Placeholder = l.messages.Empty
	}
	return v
}
