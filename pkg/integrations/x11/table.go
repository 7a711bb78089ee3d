// Package x11 implements the window table for X11 window managers that
// follow EWMH, XWayland sessions included.
package x11

import (
	"context"
	"encoding/binary"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/window"
)

const (
	// property read length, in 32-bit units
	titleLength  = 256
	clientLength = 1 << 14

	// EWMH source indication: pager, so window managers honour the request
	sourcePager = 2

	wmStateAdd  = 1
	iconicState = 3
)

var atomNames = []string{
	"_NET_CLIENT_LIST",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLOSE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"_NET_WM_STATE",
	"_NET_WM_STATE_HIDDEN",
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_STATE_MAXIMIZED_HORZ",
	"WM_CHANGE_STATE",
	"WM_NAME",
	"UTF8_STRING",
}

// Table lists and controls X11 top-level windows through the window manager.
type Table struct {
	conn   *xgb.Conn
	root   xproto.Window
	atoms  map[string]xproto.Atom
	logger zerolog.Logger
}

var _ window.Table = (*Table)(nil)

// NewTable connects to display, or $DISPLAY when display is empty.
func NewTable(display string, logger zerolog.Logger) (*Table, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	t := &Table{
		conn:   conn,
		root:   xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms:  make(map[string]xproto.Atom, len(atomNames)),
		logger: logger,
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		t.atoms[name] = reply.Atom
	}

	return t, nil
}

func (t *Table) Name() string {
	return "x11"
}

func (t *Table) Close() error {
	t.conn.Close()
	return nil
}

func (t *Table) getProperty(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(t.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

// Windows returns the clients managed by the window manager.
func (t *Table) Windows(ctx context.Context) ([]window.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := t.getProperty(t.root, t.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, clientLength)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read _NET_CLIENT_LIST")
	}
	return decodeIDs(data), nil
}

// Properties reads title, owner and visibility. An unmapped window that the
// window manager marks hidden is minimized and still counts as visible.
func (t *Table) Properties(ctx context.Context, id window.ID) (window.Properties, error) {
	if err := ctx.Err(); err != nil {
		return window.Properties{}, err
	}
	win := xproto.Window(id)

	attrs, err := xproto.GetWindowAttributes(t.conn, win).Reply()
	if err != nil {
		return window.Properties{}, errors.Wrapf(err, "failed to read window 0x%x", uint64(id))
	}

	props := window.Properties{
		Title:    t.title(win),
		OwnerPID: t.pid(win),
		Visible:  attrs.MapState == xproto.MapStateViewable,
	}
	if !props.Visible {
		props.Visible = t.hasState(win, t.atoms["_NET_WM_STATE_HIDDEN"])
	}
	return props, nil
}

func (t *Table) title(win xproto.Window) string {
	data, err := t.getProperty(win, t.atoms["_NET_WM_NAME"], t.atoms["UTF8_STRING"], titleLength)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = t.getProperty(win, t.atoms["WM_NAME"], xproto.AtomString, titleLength)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

func (t *Table) pid(win xproto.Window) int {
	data, err := t.getProperty(win, t.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(data))
}

func (t *Table) hasState(win xproto.Window, state xproto.Atom) bool {
	data, err := t.getProperty(win, t.atoms["_NET_WM_STATE"], xproto.AtomAtom, 32)
	if err != nil {
		return false
	}
	for _, a := range decodeIDs(data) {
		if xproto.Atom(a) == state {
			return true
		}
	}
	return false
}

func (t *Table) SetForeground(id window.ID) error {
	return t.send(id, "_NET_ACTIVE_WINDOW", sourcePager, xproto.TimeCurrentTime, 0)
}

func (t *Table) Show(id window.ID, mode window.ShowMode) error {
	switch mode {
	case window.ShowMaximize:
		return t.send(id, "_NET_WM_STATE", wmStateAdd,
			uint32(t.atoms["_NET_WM_STATE_MAXIMIZED_VERT"]),
			uint32(t.atoms["_NET_WM_STATE_MAXIMIZED_HORZ"]),
			sourcePager)
	case window.ShowMinimize:
		return t.send(id, "WM_CHANGE_STATE", iconicState)
	default:
		return errors.Errorf("unsupported show mode %d", mode)
	}
}

func (t *Table) PostClose(id window.ID) error {
	return t.send(id, "_NET_CLOSE_WINDOW", xproto.TimeCurrentTime, sourcePager)
}

func (t *Table) Foreground() (window.ID, error) {
	data, err := t.getProperty(t.root, t.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read _NET_ACTIVE_WINDOW")
	}
	ids := decodeIDs(data)
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// send delivers a client message to the root window, where the window
// manager picks it up.
func (t *Table) send(id window.ID, msgType string, data ...uint32) error {
	ev := clientMessage(xproto.Window(id), t.atoms[msgType], data...)
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)

	if err := xproto.SendEventChecked(t.conn, false, t.root, mask, string(ev.Bytes())).Check(); err != nil {
		return errors.Wrapf(err, "failed to send %s to window 0x%x", msgType, uint64(id))
	}
	t.logger.Debug().Str("message", msgType).Uint64("window", uint64(id)).Msg("client message sent")
	return nil
}

func clientMessage(win xproto.Window, msgType xproto.Atom, data ...uint32) xproto.ClientMessageEvent {
	payload := make([]uint32, 5)
	copy(payload, data)
	return xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   msgType,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}
}

func decodeIDs(data []byte) []window.ID {
	ids := make([]window.ID, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		ids = append(ids, window.ID(binary.LittleEndian.Uint32(data[i:])))
	}
	return ids
}
