package version

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/actionsum/appctl/pkg/apperr"
)

func TestCompareStrings(t *testing.T) {
	v := MustParse("2.14.3")

	if ok, err := v.GreaterThan("2.14.2"); err != nil || !ok {
		t.Errorf("2.14.3 > 2.14.2 = %v, %v; want true", ok, err)
	}
	if ok, err := v.LessThan("2.15.0"); err != nil || !ok {
		t.Errorf("2.14.3 < 2.15.0 = %v, %v; want true", ok, err)
	}
	if ok, _ := v.Equal("2.14.3.0"); !ok {
		t.Error("2.14.3 == 2.14.3.0 = false, want true")
	}
	if ok, _ := v.NotEqual("2.14.3"); ok {
		t.Error("2.14.3 != 2.14.3 = true, want false")
	}
	if ok, _ := v.LessOrEqual("2.14.3"); !ok {
		t.Error("2.14.3 <= 2.14.3 = false, want true")
	}
	if ok, _ := v.GreaterOrEqual("3"); ok {
		t.Error("2.14.3 >= 3 = true, want false")
	}
}

func TestCompareMalformed(t *testing.T) {
	v := MustParse("1.0.0")

	ok, err := v.GreaterThan("not a version")
	if !apperr.IsParse(err) {
		t.Fatalf("GreaterThan(malformed) error = %v, want ParseError", err)
	}
	if ok {
		t.Error("GreaterThan(malformed) = true, want false")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in                  string
		major, minor, patch int
		prerelease          string
		wantErr             bool
	}{
		{in: "2.14.3", major: 2, minor: 14, patch: 3},
		{in: "10.0.19041.1", major: 10, minor: 0, patch: 19041},
		{in: "v1.2", major: 1, minor: 2, patch: 0},
		{in: "1.2.0-beta1", major: 1, minor: 2, patch: 0, prerelease: "beta1"},
		{in: "", wantErr: true},
		{in: "x.y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if tt.wantErr {
				if !apperr.IsParse(err) {
					t.Errorf("Parse(%q) error = %v, want ParseError", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if v.Major() != tt.major || v.Minor() != tt.minor || v.Patch() != tt.patch {
				t.Errorf("Parse(%q) = %d.%d.%d, want %d.%d.%d", tt.in,
					v.Major(), v.Minor(), v.Patch(), tt.major, tt.minor, tt.patch)
			}
			if v.Prerelease() != tt.prerelease {
				t.Errorf("Prerelease() = %q, want %q", v.Prerelease(), tt.prerelease)
			}
			if v.String() != tt.in {
				t.Errorf("String() = %q, want %q", v.String(), tt.in)
			}
		})
	}
}

func TestMultiSegmentOrdering(t *testing.T) {
	a := MustParse("10.0.19041.1")
	b := MustParse("10.0.19041.2")
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("four segment versions are not ordered by the last segment")
	}
}

func TestSatisfies(t *testing.T) {
	v := MustParse("2.14.3")

	if ok, err := v.Satisfies(">= 2.0, < 3"); err != nil || !ok {
		t.Errorf("Satisfies(>= 2.0, < 3) = %v, %v; want true", ok, err)
	}
	if ok, _ := v.Satisfies("~> 2.15"); ok {
		t.Error("Satisfies(~> 2.15) = true, want false")
	}
	if _, err := v.Satisfies("=>> nonsense"); !apperr.IsParse(err) {
		t.Errorf("Satisfies(bad) error = %v, want ParseError", err)
	}
}

func TestReaderRead(t *testing.T) {
	r := NewReader(Manifest{"notepad.exe": " 10.0.19041.1 "}, zerolog.Nop())

	v, err := r.Read("/opt/tools/notepad.exe")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if v.String() != "10.0.19041.1" {
		t.Errorf("Read() = %s, want 10.0.19041.1", v)
	}
}

func TestReaderUnavailable(t *testing.T) {
	tests := []struct {
		name string
		meta MetadataReader
	}{
		{name: "no metadata", meta: Manifest{}},
		{name: "malformed", meta: Manifest{"app": "build-unknown"}},
		{name: "reader failure", meta: MetadataReaderFunc(func(string) (string, error) {
			return "", errors.New("access denied")
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(tt.meta, zerolog.Nop()).Read("/usr/bin/app")
			if !apperr.IsVersionUnavailable(err) {
				t.Errorf("Read() error = %v, want VersionUnavailable", err)
			}
		})
	}
}

func TestChain(t *testing.T) {
	chain := Chain{
		Manifest{},
		MetadataReaderFunc(func(string) (string, error) { return "", errors.New("corrupt header") }),
		Manifest{"app": "3.1.0"},
	}

	got, err := chain.ReadVersion("/usr/bin/app")
	if err != nil || got != "3.1.0" {
		t.Errorf("Chain.ReadVersion() = %q, %v; want 3.1.0", got, err)
	}

	_, err = Chain{Manifest{}}.ReadVersion("/usr/bin/other")
	if !errors.Is(err, ErrNoMetadata) {
		t.Errorf("Chain.ReadVersion() error = %v, want ErrNoMetadata", err)
	}
}

func TestSourcesOnNonBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	for _, src := range []MetadataReader{BuildInfo{}, ELFPackageNote{}} {
		if _, err := src.ReadVersion(path); !errors.Is(err, ErrNoMetadata) {
			t.Errorf("%T.ReadVersion() error = %v, want ErrNoMetadata", src, err)
		}
	}
}

func buildNote(order binary.ByteOrder, name string, typ uint32, desc string) []byte {
	pad := func(b []byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, 0)
		}
		return b
	}
	nameBytes := append([]byte(name), 0)
	descBytes := append([]byte(desc), 0)

	hdr := make([]byte, 12)
	order.PutUint32(hdr[0:4], uint32(len(nameBytes)))
	order.PutUint32(hdr[4:8], uint32(len(descBytes)))
	order.PutUint32(hdr[8:12], typ)

	out := append(hdr, pad(nameBytes)...)
	return append(out, pad(descBytes)...)
}

func TestParseNote(t *testing.T) {
	order := binary.LittleEndian
	data := append(
		buildNote(order, "GNU", 3, "abcd"),
		buildNote(order, "FDO", packageNoteType, `{"type":"deb","name":"gedit","version":"44.2"}`)...,
	)

	payload, err := parseNote(data, order)
	if err != nil {
		t.Fatalf("parseNote() error: %v", err)
	}
	if string(payload) != `{"type":"deb","name":"gedit","version":"44.2"}` {
		t.Errorf("parseNote() = %s", payload)
	}

	if _, err := parseNote(buildNote(order, "GNU", 3, "x"), order); !errors.Is(err, ErrNoMetadata) {
		t.Errorf("parseNote() without FDO note error = %v, want ErrNoMetadata", err)
	}
}
