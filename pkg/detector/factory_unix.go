//go:build !windows

package detector

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/apperr"
	"github.com/actionsum/appctl/pkg/integrations/wayland"
	"github.com/actionsum/appctl/pkg/integrations/x11"
	"github.com/actionsum/appctl/pkg/version"
	"github.com/actionsum/appctl/pkg/window"
)

// NewWindowTable returns the window table for the session. Wayland sessions
// use the sway IPC when the compositor offers it and fall back to XWayland;
// other Wayland compositors have no global window enumeration.
func NewWindowTable(logger zerolog.Logger) (window.Table, error) {
	server := DetectDisplayServer()
	if server == DisplayWayland && wayland.Available() {
		return wayland.NewTable(logger), nil
	}

	if os.Getenv("DISPLAY") == "" {
		return nil, apperr.Newf("window table", apperr.CodePlatform,
			"no X display available (display server: %s)", server)
	}

	table, err := x11.NewTable("", logger)
	if err != nil {
		return nil, apperr.Wrap("window table", apperr.CodePlatform, err)
	}
	if server == DisplayWayland {
		logger.Debug().Msg("wayland session, using XWayland window table")
	}
	return table, nil
}

func platformVersionSources() []version.MetadataReader {
	return []version.MetadataReader{version.ELFPackageNote{}}
}
