// Package detector picks the process, window and version capabilities for
// the running platform.
package detector

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"

	procint "github.com/actionsum/appctl/pkg/integrations/process"
	"github.com/actionsum/appctl/pkg/process"
	"github.com/actionsum/appctl/pkg/version"
)

const (
	DisplayWayland = "wayland"
	DisplayX11     = "x11"
	DisplayWin32   = "win32"
	DisplayUnknown = "unknown"
)

func DetectDisplayServer() string {
	if runtime.GOOS == "windows" {
		return DisplayWin32
	}

	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return DisplayWayland
	}

	if sessionType == "x11" || x11Display != "" {
		return DisplayX11
	}

	return DisplayUnknown
}

// NewProcessTable returns the OS process table.
func NewProcessTable(logger zerolog.Logger) process.Table {
	return procint.NewTable(logger)
}

// NewMetadataReader returns the version sources for this platform, with the
// configured manifest consulted first.
func NewMetadataReader(manifest map[string]string) version.MetadataReader {
	chain := version.Chain{version.Manifest(manifest)}
	chain = append(chain, platformVersionSources()...)
	return append(chain, version.BuildInfo{})
}
