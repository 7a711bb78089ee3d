// Package version reads executable version metadata and compares versions.
package version

import (
	goversion "github.com/hashicorp/go-version"

	"github.com/actionsum/appctl/pkg/apperr"
)

// SemanticVersion is an immutable, totally ordered version value.
// Any number of numeric segments is accepted, so "10.0.19041.1" parses too.
type SemanticVersion struct {
	v *goversion.Version
}

// Parse parses s, failing with ParseError when it is malformed.
func Parse(s string) (*SemanticVersion, error) {
	v, err := goversion.NewVersion(s)
	if err != nil {
		return nil, &apperr.Error{Op: "parse version", Code: apperr.CodeParse, Msg: s, Err: err}
	}
	return &SemanticVersion{v: v}, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) *SemanticVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 as v is less than, equal to or greater than o.
func (v *SemanticVersion) Compare(o *SemanticVersion) int {
	return v.v.Compare(o.v)
}

// CompareString parses s and compares v against it.
func (v *SemanticVersion) CompareString(s string) (int, error) {
	o, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return v.Compare(o), nil
}

func (v *SemanticVersion) Equal(s string) (bool, error) {
	c, err := v.CompareString(s)
	return err == nil && c == 0, err
}

func (v *SemanticVersion) NotEqual(s string) (bool, error) {
	c, err := v.CompareString(s)
	return err == nil && c != 0, err
}

func (v *SemanticVersion) LessThan(s string) (bool, error) {
	c, err := v.CompareString(s)
	return err == nil && c < 0, err
}

func (v *SemanticVersion) LessOrEqual(s string) (bool, error) {
	c, err := v.CompareString(s)
	return err == nil && c <= 0, err
}

func (v *SemanticVersion) GreaterThan(s string) (bool, error) {
	c, err := v.CompareString(s)
	return err == nil && c > 0, err
}

func (v *SemanticVersion) GreaterOrEqual(s string) (bool, error) {
	c, err := v.CompareString(s)
	return err == nil && c >= 0, err
}

// Satisfies checks v against a constraint list such as ">= 2.0, < 3".
func (v *SemanticVersion) Satisfies(constraint string) (bool, error) {
	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return false, &apperr.Error{Op: "parse constraint", Code: apperr.CodeParse, Msg: constraint, Err: err}
	}
	return c.Check(v.v), nil
}

// Segments returns the numeric segments, padded to at least three.
func (v *SemanticVersion) Segments() []int {
	return v.v.Segments()
}

func (v *SemanticVersion) Major() int { return v.Segments()[0] }

func (v *SemanticVersion) Minor() int { return v.Segments()[1] }

func (v *SemanticVersion) Patch() int { return v.Segments()[2] }

// Prerelease returns the prerelease part, e.g. "beta1" for "1.2.0-beta1".
func (v *SemanticVersion) Prerelease() string {
	return v.v.Prerelease()
}

// String returns the version as it was parsed.
func (v *SemanticVersion) String() string {
	return v.v.Original()
}
