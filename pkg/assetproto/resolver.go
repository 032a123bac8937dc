package assetproto

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps custom-scheme URLs under HostPrefix to files under BundleRoot.
// A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	hostPrefix string
	bundleRoot string
	realRoot   string // bundleRoot with symlinks resolved
}

// NewResolver creates a resolver for the given host prefix (e.g. "app://local")
// and absolute bundle root directory.
func NewResolver(hostPrefix, bundleRoot string) (*Resolver, error) {
	if hostPrefix == "" {
		return nil, ErrEmptyHostPrefix
	}
	if bundleRoot == "" {
		return nil, ErrMissingBundleRoot
	}
	if !filepath.IsAbs(bundleRoot) {
		return nil, fmt.Errorf("%w: %s", ErrBundleRootNotAbsolute, bundleRoot)
	}
	root := filepath.Clean(bundleRoot)
	realRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		realRoot = resolved
	}
	return &Resolver{
		hostPrefix: hostPrefix,
		bundleRoot: root,
		realRoot:   realRoot,
	}, nil
}

// Resolve is a one-shot form of Resolver.Resolve.
func Resolve(requestURL, hostPrefix, bundleRoot string) (*ResolvedAsset, error) {
	r, err := NewResolver(hostPrefix, bundleRoot)
	if err != nil {
		return nil, err
	}
	return r.Resolve(context.Background(), requestURL)
}

// HostPrefix returns the origin this resolver accepts.
func (r *Resolver) HostPrefix() string {
	return r.hostPrefix
}

// BundleRoot returns the cleaned bundle root directory.
func (r *Resolver) BundleRoot() string {
	return r.bundleRoot
}

// Handle adapts the resolver to the ProtocolHandler signature.
func (r *Resolver) Handle(ctx context.Context, req Request) (*ResolvedAsset, error) {
	return r.Resolve(ctx, req.URL)
}

// Resolve reads the bundle file addressed by requestURL and returns its
// content and MIME type. The file is read fresh on every call.
func (r *Resolver) Resolve(ctx context.Context, requestURL string) (*ResolvedAsset, error) {
	rel, err := r.relativePath(requestURL)
	if err != nil {
		return nil, err
	}

	filePath, inside, err := r.filePath(rel)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", requestURL, err)
	}

	data, err := r.readFile(inside)
	if err != nil {
		return nil, r.readError(rel, filePath, err)
	}

	return &ResolvedAsset{
		Data:     data,
		MIMEType: MIMETypeForExt(filepath.Ext(filePath)),
		Path:     filePath,
	}, nil
}

// relativePath strips the host prefix plus any query or fragment and returns
// the decoded, slash-separated remainder.
func (r *Resolver) relativePath(requestURL string) (string, error) {
	if !strings.HasPrefix(requestURL, r.hostPrefix) {
		return "", fmt.Errorf("%w: %q does not start with %q", ErrHostPrefixMismatch, requestURL, r.hostPrefix)
	}
	rest := requestURL[len(r.hostPrefix):]

	// "app://local" must not match "app://localhost/...".
	if !strings.HasSuffix(r.hostPrefix, "/") && rest != "" && !strings.ContainsRune("/?#", rune(rest[0])) {
		return "", fmt.Errorf("%w: %q does not start with %q", ErrHostPrefixMismatch, requestURL, r.hostPrefix)
	}

	if idx := strings.IndexAny(rest, "?#"); idx != -1 {
		rest = rest[:idx]
	}

	decoded, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequestURL, err)
	}
	if strings.ContainsRune(decoded, 0) {
		return "", fmt.Errorf("%w: path contains NUL byte", ErrInvalidRequestURL)
	}
	return decoded, nil
}

// filePath joins rel onto the bundle root and rejects results outside it.
// It returns the joined path and the same path relative to the root.
func (r *Resolver) filePath(rel string) (string, string, error) {
	joined := filepath.Join(r.bundleRoot, filepath.FromSlash(rel))

	inside, err := filepath.Rel(r.bundleRoot, joined)
	if err != nil || isOutside(inside) {
		return "", "", fmt.Errorf("%w: %s", ErrPathTraversal, rel)
	}
	return joined, inside, nil
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// readFile reads inside through an os.Root, so symlinks cannot lead out of
// the bundle.
func (r *Resolver) readFile(inside string) ([]byte, error) {
	root, err := os.OpenRoot(r.bundleRoot)
	if err != nil {
		return nil, err
	}
	defer func() { _ = root.Close() }()
	return root.ReadFile(inside)
}

// escapes reports whether filePath resolves, through symlinks, to a location
// outside the bundle root.
func (r *Resolver) escapes(filePath string) bool {
	resolved, err := filepath.EvalSymlinks(filePath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(r.realRoot, resolved)
	return err != nil || isOutside(rel)
}

// readError classifies a failed read. Directories count as missing assets.
func (r *Resolver) readError(rel, filePath string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrAssetNotFound, rel, err)
	}
	if r.escapes(filePath) {
		return fmt.Errorf("%w: %s: %w", ErrPathTraversal, rel, err)
	}
	if info, statErr := os.Stat(filePath); statErr == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrAssetNotFound, rel)
	}
	return fmt.Errorf("reading asset %s: %w", rel, err)
}
