// Package wayland implements the window table for wlroots compositors that
// speak the sway IPC protocol, through swaymsg.
package wayland

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/window"
)

// Runner executes swaymsg with args and returns its standard output.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

func swaymsg(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "swaymsg", args...).Output()
	if err != nil {
		return nil, errors.Wrapf(err, "swaymsg %v", args)
	}
	return out, nil
}

// Available reports whether a sway IPC socket and swaymsg are present.
func Available() bool {
	if os.Getenv("SWAYSOCK") == "" {
		return false
	}
	_, err := exec.LookPath("swaymsg")
	return err == nil
}

type node struct {
	ID            uint64  `json:"id"`
	Type          string  `json:"type"`
	Name          *string `json:"name"`
	PID           int     `json:"pid"`
	Focused       bool    `json:"focused"`
	Nodes         []node  `json:"nodes"`
	FloatingNodes []node  `json:"floating_nodes"`
}

// Table lists and controls the views of the compositor's layout tree. The
// tree read by Windows serves the Properties calls that follow it.
type Table struct {
	run    Runner
	logger zerolog.Logger

	mu    sync.Mutex
	views map[window.ID]node
}

var _ window.Table = (*Table)(nil)

func NewTable(logger zerolog.Logger) *Table {
	return NewTableWithRunner(swaymsg, logger)
}

func NewTableWithRunner(run Runner, logger zerolog.Logger) *Table {
	return &Table{
		run:    run,
		logger: logger.With().Str("display", "wayland").Logger(),
		views:  make(map[window.ID]node),
	}
}

func (t *Table) Name() string { return "wayland" }

func (t *Table) Close() error { return nil }

func (t *Table) tree(ctx context.Context) (map[window.ID]node, error) {
	out, err := t.run(ctx, "-t", "get_tree", "-r")
	if err != nil {
		return nil, err
	}
	var root node
	if err := json.Unmarshal(out, &root); err != nil {
		return nil, errors.Wrap(err, "failed to decode layout tree")
	}

	views := make(map[window.ID]node)
	collectViews(root, views)
	return views, nil
}

// collectViews gathers the leaves that belong to a client. Scratchpad views
// are included; they are hidden, not closed.
func collectViews(n node, views map[window.ID]node) {
	if (n.Type == "con" || n.Type == "floating_con") && n.PID > 0 && len(n.Nodes) == 0 {
		views[window.ID(n.ID)] = n
	}
	for _, c := range n.Nodes {
		collectViews(c, views)
	}
	for _, c := range n.FloatingNodes {
		collectViews(c, views)
	}
}

func (t *Table) Windows(ctx context.Context) ([]window.ID, error) {
	views, err := t.tree(ctx)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.views = views
	t.mu.Unlock()

	ids := make([]window.ID, 0, len(views))
	for id := range views {
		ids = append(ids, id)
	}
	return ids, nil
}

func (t *Table) Properties(ctx context.Context, id window.ID) (window.Properties, error) {
	t.mu.Lock()
	n, ok := t.views[id]
	t.mu.Unlock()
	if !ok {
		return window.Properties{}, errors.Errorf("no view with id %d", id)
	}

	props := window.Properties{Visible: true, OwnerPID: n.PID}
	if n.Name != nil {
		props.Title = *n.Name
	}
	return props, nil
}

func (t *Table) command(id window.ID, cmd string) error {
	out, err := t.run(context.Background(), fmt.Sprintf("[con_id=%d]", id), cmd)
	if err != nil {
		return err
	}

	var results []struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(out, &results); err != nil {
		return errors.Wrap(err, "failed to decode command reply")
	}
	for _, r := range results {
		if !r.Success {
			return errors.Errorf("%s: %s", cmd, r.Error)
		}
	}
	t.logger.Debug().Uint64("window", uint64(id)).Str("command", cmd).Msg("command sent")
	return nil
}

func (t *Table) SetForeground(id window.ID) error {
	return t.command(id, "focus")
}

func (t *Table) Show(id window.ID, mode window.ShowMode) error {
	switch mode {
	case window.ShowMaximize:
		return t.command(id, "fullscreen enable")
	case window.ShowMinimize:
		return t.command(id, "move scratchpad")
	default:
		return errors.Errorf("unsupported show mode %d", mode)
	}
}

func (t *Table) PostClose(id window.ID) error {
	return t.command(id, "kill")
}

func (t *Table) Foreground() (window.ID, error) {
	views, err := t.tree(context.Background())
	if err != nil {
		return 0, err
	}
	for id, n := range views {
		if n.Focused {
			return id, nil
		}
	}
	return 0, nil
}
