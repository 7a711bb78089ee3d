package window

import (
	"context"
	"fmt"
)

// ID identifies a top-level window (HWND on Windows, XID on X11).
type ID uint64

// Handle represents one top-level window at query time
type Handle struct {
	ID       ID
	Title    string
	OwnerPID int
}

func (h Handle) String() string {
	return fmt.Sprintf("Window (title='%s', id=0x%x, pid=%d)", h.Title, uint64(h.ID), h.OwnerPID)
}

// Properties are the attributes read for a single window
type Properties struct {
	Title    string
	Visible  bool
	OwnerPID int
}

// ShowMode selects the show state applied by Table.Show
type ShowMode int

const (
	ShowMaximize ShowMode = iota + 1
	ShowMinimize
)

func (m ShowMode) String() string {
	switch m {
	case ShowMaximize:
		return "maximize"
	case ShowMinimize:
		return "minimize"
	default:
		return "unknown"
	}
}

// Table is the interface that every window system integration must satisfy
type Table interface {
	// Windows lists the ids of all top-level windows
	Windows(ctx context.Context) ([]ID, error)

	// Properties reads one window. It fails if the window no longer exists.
	Properties(ctx context.Context, id ID) (Properties, error)

	// SetForeground activates the window and raises it above the others
	SetForeground(id ID) error

	// Show applies a maximize or minimize state
	Show(id ID, mode ShowMode) error

	// PostClose asks the window to close, as if the user clicked its close button
	PostClose(id ID) error

	// Foreground returns the currently active window, 0 if none
	Foreground() (ID, error)

	// Name returns the window system name, e.g. "x11" or "win32"
	Name() string

	// Close releases resources held by the table
	Close() error
}
