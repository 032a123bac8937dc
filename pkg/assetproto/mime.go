package assetproto

import (
	"path/filepath"
	"strings"
)

// DefaultMIMEType is used for any extension missing from the table.
const DefaultMIMEType = "text/plain"

// mimeTypes maps lower-cased file extensions to MIME types.
var mimeTypes = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".js":    "application/javascript",
	".mjs":   "application/javascript",
	".json":  "application/json",
	".map":   "application/json",
	".xml":   "application/xml",
	".txt":   "text/plain",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".wasm":  "application/wasm",
}

// MIMETypeForExt returns the MIME type for a file extension including its
// leading dot. Unknown or empty extensions are treated as plain text.
func MIMETypeForExt(ext string) string {
	if mime, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return DefaultMIMEType
}

// MIMEType returns the MIME type for a file based on its extension.
func MIMEType(filename string) string {
	return MIMETypeForExt(filepath.Ext(filename))
}

// isBinaryMIME returns true if the MIME type indicates binary content.
func isBinaryMIME(mimeType string) bool {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	mimeType = strings.TrimSpace(mimeType)

	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return false
	case mimeType == "application/json",
		mimeType == "application/javascript",
		mimeType == "application/xml",
		mimeType == "image/svg+xml":
		return false
	default:
		return true
	}
}
