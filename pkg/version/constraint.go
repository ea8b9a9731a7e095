package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Constraint is a runtime requirement such as ">=21". The zero value accepts any version.
type Constraint struct {
	expr     *semver.Constraints
	original string
}

// ParseConstraint parses a constraint string; "", "*" and "any" accept every version
func ParseConstraint(constraint string) (*Constraint, error) {
	constraint = strings.TrimSpace(constraint)
	switch constraint {
	case "", "*", "any":
		return &Constraint{}, nil
	}

	expr, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %s: %w", constraint, err)
	}
	return &Constraint{expr: expr, original: constraint}, nil
}

// Check reports whether version satisfies the constraint. Legacy 1.x runtime
// versions are compared by their real major, so 1.8.0_292 is 8.0.
func (c *Constraint) Check(version string) bool {
	if c.expr == nil {
		return true
	}
	v, err := semver.NewVersion(Normalize(legacyMajor(version)))
	if err != nil {
		return false
	}
	return c.expr.Check(v)
}

func (c *Constraint) String() string {
	if c.expr == nil {
		return "*"
	}
	return c.original
}

func legacyMajor(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "1.") && len(version) > 2 {
		return version[2:]
	}
	return version
}
