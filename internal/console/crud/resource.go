package crud

import (
	"context"
	"strings"
)

// Messages are the per-entity strings the lifecycle shows.
type Messages struct {
	Empty         string
	ConfirmDelete string
	LoadFailed    string
	SaveFailed    string
	DeleteFailed  string
}

// Resource binds the lifecycle to one entity type T edited through drafts D.
type Resource[T, D any] struct {
	// Name is used in logs, e.g. "client".
	Name string

	List   func(ctx context.Context) ([]T, error)
	Create func(ctx context.Context, draft D) error
	Update func(ctx context.Context, id int64, draft D) error
	Delete func(ctx context.Context, id int64) error

	ID       func(T) int64
	Defaults func() D
	DraftOf  func(T) D

	// Freeze restores write-once fields of next from current while editing.
	// Nil means every field is mutable.
	Freeze func(current, next D) D

	// Validate gates submission. Nil accepts every draft.
	Validate func(D) error

	Messages Messages
}

// ErrorMessage reduces err to the single string shown in the banner.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// Confirmer answers a yes/no prompt before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }
