package crud

import (
	"context"

	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
)

// Screen is one entity page: a list, a form and a delete action sharing a banner.
type Screen[T, D any] struct {
	List *List[T]
	Form *Form[T, D]

	res    *Resource[T, D]
	banner *Banner
}

// View is everything a page template needs.
type View[T, D any] struct {
	List      ListView[T]
	Mode      Mode
	Draft     D
	EditingID int64
	Banner    string
}

// NewScreen wires a screen for res.
func NewScreen[T, D any](res Resource[T, D]) *Screen[T, D] {
	banner := &Banner{}
	list := NewList(res.Name, res.List, res.Messages, banner)
	return &Screen[T, D]{
		List:   list,
		Form:   NewForm(&res, list, banner),
		res:    &res,
		banner: banner,
	}
}

// Messages returns the entity strings.
func (s *Screen[T, D]) Messages() Messages { return s.res.Messages }

// Mount loads the list, as when the page is first shown.
func (s *Screen[T, D]) Mount(ctx context.Context) error {
	return s.List.Load(ctx)
}

// Find returns the displayed row with id.
func (s *Screen[T, D]) Find(id int64) (T, bool) {
	for _, row := range s.List.Rows() {
		if s.res.ID(row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// SetError shows msg in the banner.
func (s *Screen[T, D]) SetError(msg string) { s.banner.Set(msg) }

// Delete asks c first. Declined means no request at all. Confirmed means
// one delete and, on success, one reload. A failure leaves the rows as they
// are and shows the error.
func (s *Screen[T, D]) Delete(ctx context.Context, id int64, c Confirmer) (bool, error) {
	if !c.Confirm(s.res.Messages.ConfirmDelete) {
		return false, nil
	}

	if err := s.res.Delete(ctx, id); err != nil {
		slogx.FromContext(ctx).Warn("backend operation failed", "entity", s.res.Name, "operation", "delete", "error", err)
		s.banner.Set(ErrorMessage(err, s.res.Messages.DeleteFailed))
		return true, err
	}

	s.banner.Clear()
	_ = s.List.Load(ctx)
	return true, nil
}

// View snapshots the screen for rendering.
func (s *Screen[T, D]) View() View[T, D] {
	list := s.List.View()
	return View[T, D]{
		List:      list,
		Mode:      s.Form.Mode(),
		Draft:     s.Form.Draft(),
		EditingID: s.Form.EditingID(),
		Banner:    list.Error,
	}
}
