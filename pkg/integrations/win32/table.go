//go:build windows

package win32

import (
	"context"
	"sync"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"

	"github.com/actionsum/appctl/pkg/window"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procPostMessageW             = user32.NewProc("PostMessageW")
)

// The runtime never frees callbacks and caps their number, so every
// enumeration shares one. enumMu guards enumIDs for the duration of a call.
var (
	enumMu       sync.Mutex
	enumIDs      []window.ID
	enumCallback = windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		enumIDs = append(enumIDs, window.ID(hwnd))
		return 1
	})
)

const (
	swMaximize = 3
	swMinimize = 6
	swRestore  = 9

	wmClose = 0x0010
)

// Table lists and controls top-level windows of the current desktop.
type Table struct {
	logger zerolog.Logger
}

var _ window.Table = (*Table)(nil)

func NewTable(logger zerolog.Logger) *Table {
	return &Table{logger: logger}
}

func (t *Table) Name() string {
	return "win32"
}

func (t *Table) Close() error {
	return nil
}

func (t *Table) Windows(ctx context.Context) ([]window.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enumMu.Lock()
	defer enumMu.Unlock()

	enumIDs = nil
	ret, _, err := procEnumWindows.Call(enumCallback, 0)
	ids := enumIDs
	enumIDs = nil
	if ret == 0 {
		return nil, errors.Wrap(err, "EnumWindows failed")
	}
	return ids, nil
}

func (t *Table) Properties(ctx context.Context, id window.ID) (window.Properties, error) {
	if err := ctx.Err(); err != nil {
		return window.Properties{}, err
	}
	hwnd := uintptr(id)

	if ret, _, _ := procIsWindow.Call(hwnd); ret == 0 {
		return window.Properties{}, errors.Errorf("window 0x%x no longer exists", uint64(id))
	}

	var pid uint32
	if tid, _, err := procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid))); tid == 0 {
		return window.Properties{}, errors.Wrapf(err, "failed to read owner of window 0x%x", uint64(id))
	}

	visible, _, _ := procIsWindowVisible.Call(hwnd)
	return window.Properties{
		Title:    windowText(hwnd),
		Visible:  visible != 0,
		OwnerPID: int(pid),
	}, nil
}

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

// SetForeground restores a minimized window before activating it.
func (t *Table) SetForeground(id window.ID) error {
	procShowWindow.Call(uintptr(id), swRestore)
	if ret, _, err := procSetForegroundWindow.Call(uintptr(id)); ret == 0 {
		return errors.Wrapf(errnoOr(err), "SetForegroundWindow 0x%x refused", uint64(id))
	}
	return nil
}

func (t *Table) Show(id window.ID, mode window.ShowMode) error {
	var cmd uintptr
	switch mode {
	case window.ShowMaximize:
		cmd = swMaximize
	case window.ShowMinimize:
		cmd = swMinimize
	default:
		return errors.Errorf("unsupported show mode %d", mode)
	}
	// ShowWindow returns the previous visibility, not success
	procShowWindow.Call(uintptr(id), cmd)
	return nil
}

func (t *Table) PostClose(id window.ID) error {
	if ret, _, err := procPostMessageW.Call(uintptr(id), wmClose, 0, 0); ret == 0 {
		return errors.Wrapf(errnoOr(err), "failed to post WM_CLOSE to 0x%x", uint64(id))
	}
	t.logger.Debug().Uint64("window", uint64(id)).Msg("WM_CLOSE posted")
	return nil
}

func (t *Table) Foreground() (window.ID, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return window.ID(hwnd), nil
}

// errnoOr drops the "operation completed successfully" errno some calls report.
func errnoOr(err error) error {
	if errno, ok := err.(syscall.Errno); ok && errno == 0 {
		return errors.New("call failed")
	}
	return err
}
