package version

import (
	"bytes"
	"debug/buildinfo"
	"debug/elf"
	"encoding/binary"
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"
)

// Manifest maps an executable path, or its base name, to a fixed version.
// Full paths take precedence over base names.
type Manifest map[string]string

func (m Manifest) ReadVersion(path string) (string, error) {
	if v, ok := m[path]; ok {
		return v, nil
	}
	if abs, err := filepath.Abs(path); err == nil {
		if v, ok := m[abs]; ok {
			return v, nil
		}
	}
	if v, ok := m[filepath.Base(path)]; ok {
		return v, nil
	}
	return "", ErrNoMetadata
}

// BuildInfo reads the main module version embedded in Go binaries.
type BuildInfo struct{}

func (BuildInfo) ReadVersion(path string) (string, error) {
	info, err := buildinfo.ReadFile(path)
	if err != nil {
		return "", ErrNoMetadata
	}
	v := info.Main.Version
	if v == "" || v == "(devel)" {
		return "", ErrNoMetadata
	}
	return v, nil
}

const (
	packageNoteSection = ".note.package"
	// FDO packaging metadata note type, "FDO" as little-endian bytes
	packageNoteType = 0xcafe1a7e
)

type packageNote struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ELFPackageNote reads the version from the packaging metadata note that
// distributions embed into ELF binaries.
type ELFPackageNote struct{}

func (ELFPackageNote) ReadVersion(path string) (string, error) {
	f, err := elf.Open(path)
	if err != nil {
		return "", ErrNoMetadata
	}
	defer f.Close()

	sec := f.Section(packageNoteSection)
	if sec == nil {
		return "", ErrNoMetadata
	}
	data, err := sec.Data()
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", packageNoteSection)
	}

	payload, err := parseNote(data, f.ByteOrder)
	if err != nil {
		return "", err
	}

	var note packageNote
	if err := json.Unmarshal(payload, &note); err != nil {
		return "", errors.Wrap(err, "failed to decode package note")
	}
	if note.Version == "" {
		return "", ErrNoMetadata
	}
	return note.Version, nil
}

// parseNote returns the descriptor of the first FDO note in data.
func parseNote(data []byte, order binary.ByteOrder) ([]byte, error) {
	align := func(n uint32) uint32 { return (n + 3) &^ 3 }

	for len(data) >= 12 {
		namesz := order.Uint32(data[0:4])
		descsz := order.Uint32(data[4:8])
		typ := order.Uint32(data[8:12])
		data = data[12:]

		nameEnd := align(namesz)
		descEnd := nameEnd + align(descsz)
		if uint32(len(data)) < nameEnd+descsz {
			return nil, errors.New("truncated package note")
		}
		name := bytes.TrimRight(data[:namesz], "\x00")
		desc := bytes.TrimRight(data[nameEnd:nameEnd+descsz], "\x00")

		if typ == packageNoteType && string(name) == "FDO" {
			return desc, nil
		}
		if uint32(len(data)) < descEnd {
			break
		}
		data = data[descEnd:]
	}
	return nil, ErrNoMetadata
}
