package crud

import (
	"context"
	"errors"
	"sync"

	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
)

var ErrFormHidden = errors.New("crud: form is hidden")

// Mode is the form state.
type Mode int

const (
	Hidden Mode = iota
	Creating
	Editing
)

func (m Mode) String() string {
	switch m {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "hidden"
	}
}

// Form holds the draft being edited.
type Form[T, D any] struct {
	res    *Resource[T, D]
	list   *List[T]
	banner *Banner

	mu    sync.Mutex
	mode  Mode
	id    int64
	draft D
}

// NewForm builds a form that reloads list after each successful submit.
func NewForm[T, D any](res *Resource[T, D], list *List[T], banner *Banner) *Form[T, D] {
	return &Form[T, D]{res: res, list: list, banner: banner, draft: res.Defaults()}
}

// Mode returns the current state.
func (f *Form[T, D]) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Draft returns the current draft.
func (f *Form[T, D]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// EditingID returns the id being edited, or 0.
func (f *Form[T, D]) EditingID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

// Open starts a new record from the defaults.
func (f *Form[T, D]) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode, f.id, f.draft = Creating, 0, f.res.Defaults()
}

// Edit loads record into the draft.
func (f *Form[T, D]) Edit(record T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode, f.id, f.draft = Editing, f.res.ID(record), f.res.DraftOf(record)
}

// SetDraft replaces the draft with user input. While editing, write-once
// fields keep their current values.
func (f *Form[T, D]) SetDraft(next D) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode == Editing && f.res.Freeze != nil {
		next = f.res.Freeze(f.draft, next)
	}
	f.draft = next
}

// Cancel resets and hides the form. No request is made.
func (f *Form[T, D]) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Form[T, D]) reset() {
	f.mode, f.id, f.draft = Hidden, 0, f.res.Defaults()
}

// Submit sends the draft. Creating sends the full record, editing sends an
// update by id. A failure keeps the draft and the mode. A success reloads
// the list once and hides the form.
func (f *Form[T, D]) Submit(ctx context.Context) error {
	f.mu.Lock()
	mode, id, draft := f.mode, f.id, f.draft
	f.mu.Unlock()

	if mode == Hidden {
		return ErrFormHidden
	}

	f.banner.Clear()

	if f.res.Validate != nil {
		if err := f.res.Validate(draft); err != nil {
			f.banner.Set(ErrorMessage(err, f.res.Messages.SaveFailed))
			return err
		}
	}

	var err error
	op := "create"
	if mode == Editing {
		op = "update"
		err = f.res.Update(ctx, id, draft)
	} else {
		err = f.res.Create(ctx, draft)
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("backend operation failed", "entity", f.res.Name, "operation", op, "error", err)
		f.banner.Set(ErrorMessage(err, f.res.Messages.SaveFailed))
		return err
	}

	_ = f.list.Load(ctx)

	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
	return nil
}
