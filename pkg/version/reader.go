package version

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/apperr"
)

// ErrNoMetadata is returned by a MetadataReader when the file carries no
// version information it understands.
var ErrNoMetadata = errors.New("no version metadata")

// MetadataReader extracts the raw version string of an executable.
type MetadataReader interface {
	ReadVersion(path string) (string, error)
}

// MetadataReaderFunc adapts a function to MetadataReader.
type MetadataReaderFunc func(path string) (string, error)

func (f MetadataReaderFunc) ReadVersion(path string) (string, error) {
	return f(path)
}

// Reader turns executable metadata into a SemanticVersion.
type Reader struct {
	meta   MetadataReader
	logger zerolog.Logger
}

// NewReader creates a Reader over meta.
func NewReader(meta MetadataReader, logger zerolog.Logger) *Reader {
	return &Reader{meta: meta, logger: logger}
}

// Read returns the version of the executable at path. Missing or
// unparseable metadata fails with VersionUnavailable.
func (r *Reader) Read(path string) (*SemanticVersion, error) {
	raw, err := r.meta.ReadVersion(path)
	if err != nil {
		return nil, &apperr.Error{Op: "read version", Code: apperr.CodeVersionUnavailable, Path: path, Err: err}
	}

	raw = strings.TrimSpace(raw)
	v, err := Parse(raw)
	if err != nil {
		return nil, &apperr.Error{Op: "read version", Code: apperr.CodeVersionUnavailable, Path: path, Msg: raw, Err: err}
	}

	r.logger.Debug().Str("exe", path).Str("version", v.String()).Msg("version read")
	return v, nil
}

// Chain tries each reader in turn and returns the first version found.
type Chain []MetadataReader

func (c Chain) ReadVersion(path string) (string, error) {
	var errs []string
	for _, r := range c {
		v, err := r.ReadVersion(path)
		if err == nil && v != "" {
			return v, nil
		}
		if err != nil && !errors.Is(err, ErrNoMetadata) {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return "", errors.Wrap(ErrNoMetadata, strings.Join(errs, "; "))
	}
	return "", ErrNoMetadata
}
