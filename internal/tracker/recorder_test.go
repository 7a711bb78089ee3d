package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/internal/database"
	"github.com/actionsum/appctl/internal/models"
	"github.com/actionsum/appctl/pkg/app"
	"github.com/actionsum/appctl/pkg/apperr"
)

func newRepo(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "appctl.db"))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return database.NewRepository(db)
}

func TestRecorderObserve(t *testing.T) {
	repo := newRepo(t)
	rec := NewRecorder(repo, "x11", zerolog.Nop())
	now := time.Now()

	rec.Observe(app.Event{
		Kind: app.EventLaunched, Time: now, SessionID: "s1", App: "gedit",
		Path: "/usr/bin/gedit", Version: "44.2", PID: 100, Elapsed: 1500 * time.Millisecond,
	})
	rec.Observe(app.Event{
		Kind: app.EventWindowFound, Time: now, SessionID: "s1", App: "gedit",
		Path: "/usr/bin/gedit", PID: 100, WindowID: 0x3a00004, WindowTitle: "Untitled Document 1 - gedit",
	})

	events, err := repo.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("GetSession() = %d events, want 2", len(events))
	}
	if events[0].Kind != models.KindLaunched || events[0].ElapsedMs != 1500 || events[0].DisplayServer != "x11" {
		t.Errorf("launched event = %+v", events[0])
	}
	if events[1].WindowID != 0x3a00004 || events[1].WindowTitle != "Untitled Document 1 - gedit" {
		t.Errorf("window event = %+v", events[1])
	}
}

func TestRecorderStoresFailures(t *testing.T) {
	repo := newRepo(t)
	rec := NewRecorder(repo, "win32", zerolog.Nop())
	since := time.Now().Add(-time.Minute)

	err := apperr.Newf("launch", apperr.CodeLaunchTimeout, "application did not start").WithPath("C:\\app.exe")
	rec.Observe(app.Event{Kind: app.EventFailed, Time: time.Now(), SessionID: "s2", App: "app.exe", Path: "C:\\app.exe", Err: err})

	logs, dbErr := repo.GetErrorsSince(since)
	if dbErr != nil {
		t.Fatalf("GetErrorsSince() error: %v", dbErr)
	}
	if len(logs) != 1 {
		t.Fatalf("GetErrorsSince() = %d logs, want 1", len(logs))
	}
	if logs[0].Code != "LAUNCH_TIMEOUT" || logs[0].Op != "launch" || logs[0].SessionID != "s2" {
		t.Errorf("error log = %+v", logs[0])
	}

	events, _ := repo.GetSession("s2")
	if len(events) != 1 || events[0].Kind != models.KindFailed {
		t.Errorf("GetSession() = %+v, want one failed event", events)
	}
}
