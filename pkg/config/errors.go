package config

import (
	"errors"
	"fmt"
)

// Configuration errors. They are fatal at startup: the asset protocol is
// never registered with an invalid configuration.
var (
	// ErrMissingEnv is returned when APP_ENV is not set.
	ErrMissingEnv = errors.New("runtime mode is required")

	// ErrInvalidMode is returned for an unrecognised APP_ENV value.
	ErrInvalidMode = errors.New("invalid runtime mode")

	// ErrMissingProtocol is returned when APP_PROTOCOL is unset in production.
	ErrMissingProtocol = errors.New("app protocol is required in production")

	// ErrMissingHost is returned when APP_HOST is unset in production.
	ErrMissingHost = errors.New("app host is required in production")

	// ErrHostSchemeMismatch is returned when APP_HOST is not under APP_PROTOCOL.
	ErrHostSchemeMismatch = errors.New("app host must use the app protocol scheme")

	// ErrInvalidBundleRoot is returned when the bundle root is not an absolute path.
	ErrInvalidBundleRoot = errors.New("bundle root must be an absolute path")

	// ErrMissingDevServer is returned when no dev server is given in development.
	ErrMissingDevServer = errors.New("dev server is required in development")

	// ErrInvalidTransport is returned for an unknown server transport.
	ErrInvalidTransport = errors.New("invalid transport")

	// ErrTransportRequiresProduction is returned when the stdio transport is
	// selected outside production; there is no bundle to serve.
	ErrTransportRequiresProduction = errors.New("stdio transport requires production mode")
)

// Error is a configuration error tied to the setting that caused it.
type Error struct {
	// Key is the environment variable or config key at fault.
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
