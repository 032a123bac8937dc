package assetproto

import "errors"

// Resolution errors. Every one of them fails the single request it belongs
// to; none of them affect other in-flight requests.
var (
	// ErrHostPrefixMismatch is returned when the request URL does not start
	// with the configured host prefix.
	ErrHostPrefixMismatch = errors.New("request url does not match host prefix")

	// ErrEmptyHostPrefix is returned when a resolver is built without a host prefix.
	ErrEmptyHostPrefix = errors.New("host prefix is required")

	// ErrMissingBundleRoot is returned when a resolver is built without a bundle root.
	ErrMissingBundleRoot = errors.New("bundle root is required")

	// ErrBundleRootNotAbsolute is returned when the bundle root is a relative path.
	ErrBundleRootNotAbsolute = errors.New("bundle root must be absolute")

	// ErrPathTraversal is returned when the resolved path escapes the bundle root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrAssetNotFound is returned when the requested file does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidRequestURL is returned when the path part of a request URL
	// cannot be decoded.
	ErrInvalidRequestURL = errors.New("invalid request url")
)
