package shell

import (
	"fmt"
	"path"
	"strings"

	"github.com/yosida95/uritemplate/v3"

	"github.com/txn2/appshell/pkg/config"
)

// assetURLTemplate joins an origin and an asset path. Reserved expansion
// keeps the origin's scheme separator and the path's slashes intact.
var assetURLTemplate = uritemplate.MustNew("{+base}/{+path}")

// AssetURL returns the URL the renderer uses for assetPath, relative to the
// bundle. Production URLs use the custom-scheme host; every other mode points
// at the development server.
func AssetURL(cfg *config.Config, assetPath string) (string, error) {
	base := cfg.DevServer
	if cfg.Mode.IsProduction() {
		base = cfg.Host
	}
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		return "", fmt.Errorf("no asset origin configured for %s mode", cfg.Mode)
	}

	values := uritemplate.Values{}
	values.Set("base", uritemplate.String(base))
	values.Set("path", uritemplate.String(strings.TrimPrefix(path.Clean("/"+assetPath), "/")))

	u, err := assetURLTemplate.Expand(values)
	if err != nil {
		return "", fmt.Errorf("expanding asset url for %q: %w", assetPath, err)
	}
	return u, nil
}
