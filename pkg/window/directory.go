// Package window finds top-level windows, waits for new ones and forwards
// show/focus/close requests to the window system.
package window

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/apperr"
)

// Filter narrows a window query. The zero value matches every visible window.
type Filter struct {
	// TitlesOnly drops windows with an empty title
	TitlesOnly bool
	// OwnerPID keeps only windows owned by this process, when non-zero
	OwnerPID int
	// TitleContains keeps only windows whose title contains this text
	TitleContains string
}

func (f Filter) matches(p Properties) bool {
	if !p.Visible {
		return false
	}
	if f.TitlesOnly && p.Title == "" {
		return false
	}
	if f.OwnerPID != 0 && p.OwnerPID != f.OwnerPID {
		return false
	}
	if f.TitleContains != "" && !strings.Contains(p.Title, f.TitleContains) {
		return false
	}
	return true
}

// Directory queries and controls windows through a Table.
type Directory struct {
	table  Table
	logger zerolog.Logger
}

// NewDirectory creates a Directory over table.
func NewDirectory(table Table, logger zerolog.Logger) *Directory {
	return &Directory{table: table, logger: logger}
}

// Table returns the underlying window table.
func (d *Directory) Table() Table {
	return d.table
}

// Find returns visible windows matching f, ordered by id.
// Windows that vanish while being inspected are skipped.
func (d *Directory) Find(ctx context.Context, f Filter) ([]Handle, error) {
	ids, err := d.table.Windows(ctx)
	if err != nil {
		return nil, apperr.Wrap("find windows", apperr.CodePlatform, err)
	}

	found := make([]Handle, 0, 4)
	for _, id := range ids {
		props, err := d.table.Properties(ctx, id)
		if err != nil {
			d.logger.Debug().Uint64("window", uint64(id)).Err(err).Msg("skipping window")
			continue
		}
		if !f.matches(props) {
			continue
		}
		found = append(found, Handle{ID: id, Title: props.Title, OwnerPID: props.OwnerPID})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

// All returns every visible window, optionally only those with a title.
func (d *Directory) All(ctx context.Context, withTitlesOnly bool) ([]Handle, error) {
	return d.Find(ctx, Filter{TitlesOnly: withTitlesOnly})
}

// ForProcess returns every visible window owned by pid.
func (d *Directory) ForProcess(ctx context.Context, pid int) ([]Handle, error) {
	return d.Find(ctx, Filter{OwnerPID: pid})
}

// Focus makes the window active and brings it to the front.
func (d *Directory) Focus(h Handle) error {
	return d.control("focus", h, d.table.SetForeground)
}

// Minimize minimizes the window.
func (d *Directory) Minimize(h Handle) error {
	return d.control("minimize", h, func(id ID) error { return d.table.Show(id, ShowMinimize) })
}

// Maximize maximizes the window.
func (d *Directory) Maximize(h Handle) error {
	return d.control("maximize", h, func(id ID) error { return d.table.Show(id, ShowMaximize) })
}

// Close posts a close request to the window. The owning application decides
// whether and when to close it.
func (d *Directory) Close(h Handle) error {
	return d.control("close", h, d.table.PostClose)
}

// IsForeground reports whether the window is the active one.
func (d *Directory) IsForeground(h Handle) (bool, error) {
	id, err := d.table.Foreground()
	if err != nil {
		return false, apperr.Wrap("foreground", apperr.CodePlatform, err)
	}
	return id == h.ID, nil
}

func (d *Directory) control(op string, h Handle, fn func(ID) error) error {
	if err := fn(h.ID); err != nil {
		return &apperr.Error{Op: op, Code: apperr.CodePlatform, PID: h.OwnerPID, Err: err}
	}
	d.logger.Debug().Str("op", op).Uint64("window", uint64(h.ID)).Str("title", h.Title).Msg("window request sent")
	return nil
}
