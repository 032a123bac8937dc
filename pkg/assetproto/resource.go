package assetproto

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

// resourceTemplate returns the MCP resource template covering every asset
// under hostPrefix.
func resourceTemplate(hostPrefix string) string {
	return strings.TrimSuffix(hostPrefix, "/") + "/{+path}"
}

// RegisterResources exposes the bundle as an MCP resource template, so MCP
// clients can read assets through the same custom-scheme URLs the desktop
// runtime uses.
func RegisterResources(server *mcp.Server, r *Resolver) error {
	tmplStr := resourceTemplate(r.hostPrefix)
	tmpl, err := uritemplate.New(tmplStr)
	if err != nil {
		return fmt.Errorf("invalid resource template %q: %w", tmplStr, err)
	}

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: tmplStr,
		Name:        "bundle-assets",
		Description: fmt.Sprintf("Packaged application assets served under %s", r.hostPrefix),
	}, createResourceHandler(r, tmpl))
	return nil
}

// createResourceHandler creates a ResourceHandler backed by the resolver.
func createResourceHandler(r *Resolver, tmpl *uritemplate.Template) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		base := strings.TrimSuffix(r.hostPrefix, "/")

		target := uri
		switch {
		case uri == base || uri == base+"/":
			target = base + "/" + indexFile
		case tmpl.Match(uri) == nil:
			return nil, mcp.ResourceNotFoundError(uri) //nolint:wrapcheck // MCP protocol error returned as-is for SDK type matching
		}

		asset, err := r.Resolve(ctx, target)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri) //nolint:wrapcheck // MCP protocol error returned as-is for SDK type matching
		}

		contents := &mcp.ResourceContents{
			URI:      uri,
			MIMEType: asset.MIMEType,
		}
		if isBinaryMIME(asset.MIMEType) {
			contents.Blob = asset.Data
		} else {
			contents.Text = string(asset.Data)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{contents},
		}, nil
	}
}
