//go:build windows

package win32

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/actionsum/appctl/pkg/version"
)

// FileVersion reads the fixed file version from the executable's version
// resource, formatted as "major.minor.build.revision".
type FileVersion struct{}

var _ version.MetadataReader = FileVersion{}

func (FileVersion) ReadVersion(path string) (string, error) {
	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil || size == 0 {
		return "", version.ErrNoMetadata
	}

	buf := make([]byte, size)
	if err := windows.GetFileVersionInfo(path, 0, size, unsafe.Pointer(&buf[0])); err != nil {
		return "", errors.Wrapf(err, "failed to read version resource of %s", path)
	}

	var fixed *windows.VS_FIXEDFILEINFO
	var fixedLen uint32
	if err := windows.VerQueryValue(unsafe.Pointer(&buf[0]), `\`, unsafe.Pointer(&fixed), &fixedLen); err != nil {
		return "", version.ErrNoMetadata
	}
	if fixedLen == 0 || fixed == nil {
		return "", version.ErrNoMetadata
	}

	return fmt.Sprintf("%d.%d.%d.%d",
		fixed.FileVersionMS>>16, fixed.FileVersionMS&0xffff,
		fixed.FileVersionLS>>16, fixed.FileVersionLS&0xffff), nil
}
