//go:build windows

package detector

import (
	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/integrations/win32"
	"github.com/actionsum/appctl/pkg/version"
	"github.com/actionsum/appctl/pkg/window"
)

func NewWindowTable(logger zerolog.Logger) (window.Table, error) {
	return win32.NewTable(logger), nil
}

func platformVersionSources() []version.MetadataReader {
	return []version.MetadataReader{win32.FileVersion{}}
}
