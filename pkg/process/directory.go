package process

import (
	"context"
	"sort"
	"strings"

	"github.com/actionsum/appctl/pkg/apperr"
)

// Directory answers name queries against a Table.
type Directory struct {
	table Table
}

// NewDirectory creates a Directory over table.
func NewDirectory(table Table) *Directory {
	return &Directory{table: table}
}

// Table returns the underlying process table.
func (d *Directory) Table() Table {
	return d.table
}

// FindByName returns running processes whose name contains substring,
// ignoring case, oldest first. The most recently started match is last.
func (d *Directory) FindByName(ctx context.Context, substring string) ([]Handle, error) {
	all, err := d.table.Enumerate(ctx)
	if err != nil {
		return nil, apperr.Wrap("find processes", apperr.CodePlatform, err)
	}

	needle := strings.ToLower(substring)
	matches := make([]Handle, 0, 4)
	for _, h := range all {
		if h.Status != StatusRunning {
			continue
		}
		if !strings.Contains(strings.ToLower(h.Name), needle) {
			continue
		}
		matches = append(matches, h)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CreateTime.Equal(matches[j].CreateTime) {
			return matches[i].PID < matches[j].PID
		}
		return matches[i].CreateTime.Before(matches[j].CreateTime)
	})

	return matches, nil
}

// Find returns the running process with the given pid, if any.
func (d *Directory) Find(ctx context.Context, pid int) (Handle, bool, error) {
	all, err := d.table.Enumerate(ctx)
	if err != nil {
		return Handle{}, false, apperr.Wrap("find process", apperr.CodePlatform, err)
	}
	for _, h := range all {
		if h.PID == pid && h.Status == StatusRunning {
			return h, true, nil
		}
	}
	return Handle{}, false, nil
}
