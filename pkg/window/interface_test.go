package window

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/apperr"
)

type fakeWindow struct {
	props Properties
	gone  bool
}

type MockTable struct {
	mu         sync.Mutex
	windows    map[ID]*fakeWindow
	listed     int
	onList     func(call int, m *MockTable)
	listErr    error
	controlErr error
	foreground ID
	calls      []string
}

var _ Table = (*MockTable)(nil)

func newMockTable() *MockTable {
	return &MockTable{windows: make(map[ID]*fakeWindow)}
}

func (m *MockTable) put(id ID, title string, pid int, visible bool) {
	m.windows[id] = &fakeWindow{props: Properties{Title: title, Visible: visible, OwnerPID: pid}}
}

func (m *MockTable) Windows(ctx context.Context) ([]ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed++
	if m.onList != nil {
		m.onList(m.listed, m)
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]ID, 0, len(m.windows))
	for id := range m.windows {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockTable) Properties(ctx context.Context, id ID) (Properties, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[id]
	if !ok || w.gone {
		return Properties{}, errors.New("bad window")
	}
	return w.props, nil
}

func (m *MockTable) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.controlErr
}

func (m *MockTable) SetForeground(id ID) error {
	return m.record("foreground")
}

func (m *MockTable) Show(id ID, mode ShowMode) error {
	return m.record(mode.String())
}

func (m *MockTable) PostClose(id ID) error {
	return m.record("close")
}

func (m *MockTable) Foreground() (ID, error) {
	return m.foreground, nil
}

func (m *MockTable) Name() string { return "mock" }

func (m *MockTable) Close() error { return nil }

func TestFind(t *testing.T) {
	table := newMockTable()
	table.put(5, "Untitled - Notepad", 100, true)
	table.put(3, "Notepad Help", 100, true)
	table.put(9, "", 100, true)
	table.put(7, "hidden Notepad", 100, false)
	table.put(4, "Calculator", 200, true)
	dir := NewDirectory(table, zerolog.Nop())

	tests := []struct {
		name   string
		filter Filter
		want   []ID
	}{
		{name: "all visible", filter: Filter{}, want: []ID{3, 4, 5, 9}},
		{name: "titles only", filter: Filter{TitlesOnly: true}, want: []ID{3, 4, 5}},
		{name: "by owner", filter: Filter{OwnerPID: 200}, want: []ID{4}},
		{name: "owner and title", filter: Filter{OwnerPID: 100, TitleContains: "Notepad"}, want: []ID{3, 5}},
		{name: "title is case sensitive", filter: Filter{TitleContains: "notepad"}, want: []ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.Find(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("Find() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Find() = %v, want ids %v", got, tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Find()[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFindSkipsVanishedWindows(t *testing.T) {
	table := newMockTable()
	table.put(1, "Editor", 10, true)
	table.put(2, "Editor", 10, true)
	table.windows[2].gone = true

	got, err := NewDirectory(table, zerolog.Nop()).ForProcess(context.Background(), 10)
	if err != nil {
		t.Fatalf("ForProcess() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("ForProcess() = %v, want only window 1", got)
	}
}

func TestFindEnumerationError(t *testing.T) {
	table := newMockTable()
	table.listErr = errors.New("connection closed")

	_, err := NewDirectory(table, zerolog.Nop()).All(context.Background(), true)
	if !errors.Is(err, apperr.ErrPlatform) {
		t.Errorf("All() error = %v, want Platform", err)
	}
}

func TestControls(t *testing.T) {
	table := newMockTable()
	dir := NewDirectory(table, zerolog.Nop())
	h := Handle{ID: 42, Title: "Notepad", OwnerPID: 1}

	for _, fn := range []func(Handle) error{dir.Focus, dir.Minimize, dir.Maximize, dir.Close} {
		if err := fn(h); err != nil {
			t.Fatalf("control error: %v", err)
		}
	}

	want := []string{"foreground", "minimize", "maximize", "close"}
	if len(table.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", table.calls, want)
	}
	for i := range want {
		if table.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, table.calls[i], want[i])
		}
	}

	table.controlErr = errors.New("BadWindow")
	if err := dir.Focus(h); apperr.CodeOf(err) != apperr.CodePlatform {
		t.Errorf("Focus() error = %v, want Platform", err)
	}
}

func TestIsForeground(t *testing.T) {
	table := newMockTable()
	table.foreground = 8
	dir := NewDirectory(table, zerolog.Nop())

	if ok, _ := dir.IsForeground(Handle{ID: 8}); !ok {
		t.Error("IsForeground(8) = false, want true")
	}
	if ok, _ := dir.IsForeground(Handle{ID: 9}); ok {
		t.Error("IsForeground(9) = true, want false")
	}
}

func newTestWaiter(table *MockTable) *Waiter {
	return NewWaiter(NewDirectory(table, zerolog.Nop()), 5*time.Millisecond, zerolog.Nop())
}

func TestWaitReturnsNewWindow(t *testing.T) {
	table := newMockTable()
	table.put(10, "Old - Notepad", 500, true)
	table.onList = func(call int, m *MockTable) {
		if call == 3 {
			m.put(20, "Untitled - Notepad", 500, true)
			m.put(30, "Untitled - Notepad", 999, true)
		}
	}

	h, err := newTestWaiter(table).Wait(context.Background(), 500, "Notepad", time.Second)
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if h.ID != 20 || h.OwnerPID != 500 {
		t.Errorf("Wait() = %v, want window 20 owned by 500", h)
	}
}

func TestWaitPicksLowestNewID(t *testing.T) {
	table := newMockTable()
	table.onList = func(call int, m *MockTable) {
		if call == 2 {
			m.put(0x3c00007, "Document - Writer", 1, true)
			m.put(0x3c00003, "Document - Writer", 1, true)
		}
	}

	h, err := newTestWaiter(table).Wait(context.Background(), 1, "Writer", time.Second)
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if h.ID != 0x3c00003 {
		t.Errorf("Wait() id = 0x%x, want 0x3c00003", uint64(h.ID))
	}
}

func TestWaitTimeout(t *testing.T) {
	table := newMockTable()
	table.put(1, "Notepad", 7, true)

	_, err := newTestWaiter(table).Wait(context.Background(), 7, "Notepad", 20*time.Millisecond)
	if !apperr.IsWindowWaitTimeout(err) {
		t.Fatalf("Wait() error = %v, want WindowWaitTimeout", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.PID != 7 {
		t.Errorf("WindowWaitTimeout pid = %+v, want 7", appErr)
	}
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestWaiter(newMockTable()).Wait(ctx, 1, "x", time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestHandleString(t *testing.T) {
	h := Handle{ID: 0x1a, Title: "Notepad", OwnerPID: 3}
	want := "Window (title='Notepad', id=0x1a, pid=3)"
	if h.String() != want {
		t.Errorf("String() = %s, want %s", h.String(), want)
	}
}
