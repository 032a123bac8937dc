package config

import (
	"fmt"
	"strings"
)

// RuntimeMode selects between the packaged build and the dev-server build.
// It is resolved once at startup and passed to the components that need it.
type RuntimeMode int

// Runtime modes.
const (
	Development RuntimeMode = iota
	Production
	Test
)

// String returns the canonical APP_ENV spelling of the mode.
func (m RuntimeMode) String() string {
	switch m {
	case Development:
		return "development"
	case Production:
		return "production"
	case Test:
		return "test"
	default:
		return fmt.Sprintf("RuntimeMode(%d)", int(m))
	}
}

// IsProduction reports whether assets are served from the packaged bundle.
func (m RuntimeMode) IsProduction() bool {
	return m == Production
}

// ParseMode parses an APP_ENV value. Matching is case-insensitive and
// accepts the short forms "dev" and "prod".
func ParseMode(s string) (RuntimeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return Development, nil
	case "production", "prod":
		return Production, nil
	case "test":
		return Test, nil
	default:
		return Development, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}
