package process

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gopsproc "github.com/shirou/gopsutil/v4/process"

	"github.com/actionsum/appctl/pkg/process"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   []string
		want process.Status
	}{
		{in: []string{gopsproc.Running}, want: process.StatusRunning},
		{in: []string{gopsproc.Sleep}, want: process.StatusRunning},
		{in: []string{gopsproc.Idle}, want: process.StatusRunning},
		{in: []string{gopsproc.Stop}, want: process.StatusStopped},
		{in: []string{gopsproc.Zombie}, want: process.StatusZombie},
		{in: []string{"weird"}, want: process.StatusUnknown},
		{in: nil, want: process.StatusUnknown},
	}

	for _, tt := range tests {
		if got := mapStatus(tt.in); got != tt.want {
			t.Errorf("mapStatus(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatusOf(t *testing.T) {
	notImplemented := errors.New("not implemented yet")

	tests := []struct {
		name     string
		statuses []string
		err      error
		want     process.Status
	}{
		{name: "windows", statuses: []string{""}, err: notImplemented, want: process.StatusRunning},
		{name: "empty state", statuses: []string{""}, want: process.StatusRunning},
		{name: "sleeping", statuses: []string{gopsproc.Sleep}, want: process.StatusRunning},
		{name: "zombie", statuses: []string{gopsproc.Zombie}, want: process.StatusZombie},
		{name: "read failed", err: errors.New("permission denied"), want: process.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusOf(tt.statuses, tt.err); got != tt.want {
				t.Errorf("statusOf(%q, %v) = %v, want %v", tt.statuses, tt.err, got, tt.want)
			}
		})
	}
}

func TestEnumerateIncludesSelf(t *testing.T) {
	handles, err := NewTable(zerolog.Nop()).Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate() error: %v", err)
	}

	self := os.Getpid()
	for _, h := range handles {
		if h.PID != self {
			continue
		}
		if h.Status != process.StatusRunning {
			t.Errorf("own process status = %v, want running", h.Status)
		}
		if h.CreateTime.IsZero() {
			t.Error("own process has no creation time")
		}
		return
	}
	t.Errorf("Enumerate() did not list the test process (pid %d)", self)
}

func TestTerminateAndWait(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep(1)")
	}
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}

	cmd := exec.Command(sleep, "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start sleep: %v", err)
	}
	reaped := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(reaped)
	}()

	table := NewTable(zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := table.Terminate(ctx, cmd.Process.Pid); err != nil {
		t.Fatalf("Terminate() error: %v", err)
	}
	if err := table.WaitForExit(ctx, cmd.Process.Pid); err != nil {
		t.Fatalf("WaitForExit() error: %v", err)
	}
	<-reaped

	// a second request against the gone pid succeeds
	if err := table.Terminate(ctx, cmd.Process.Pid); err != nil {
		t.Errorf("Terminate() on exited process error: %v", err)
	}
}
