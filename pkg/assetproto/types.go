// Package assetproto resolves requests made under a custom application
// scheme (for example app://local/index.html) to files inside the packaged
// front-end bundle.
//
// The resolver is the leaf of the desktop shell: the host runtime intercepts
// a custom-scheme request, hands the URL to a Resolver and delivers the
// returned bytes and MIME type back to the renderer. Nothing is cached and no
// state survives a request, so one Resolver may serve any number of
// concurrent requests.
package assetproto

import "context"

// Request is an intercepted custom-scheme request.
type Request struct {
	// URL is the full request URL, e.g. "app://local/index.html".
	URL string
}

// ResolvedAsset is the response handed back to the host runtime.
type ResolvedAsset struct {
	// Data is the byte-exact file content.
	Data []byte

	// MIMEType is derived from the file extension only.
	MIMEType string

	// Path is the absolute file path that was read.
	Path string
}

// ProtocolHandler serves one intercepted request. Host runtimes register a
// ProtocolHandler per custom scheme.
type ProtocolHandler func(ctx context.Context, req Request) (*ResolvedAsset, error)
