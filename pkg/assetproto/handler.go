package assetproto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// indexFile is served for directory-style request paths.
const indexFile = "index.html"

// RequestIDHeader carries the id under which a request was logged.
const RequestIDHeader = "X-Request-Id"

// NewHTTPHandler adapts a ProtocolHandler to net/http, for host runtimes whose
// custom-scheme hook is an HTTP asset server. Requests that arrive without a
// scheme and host (plain loopback HTTP) are treated as if sent to origin.
func NewHTTPHandler(origin string, h ProtocolHandler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &httpHandler{
		origin: strings.TrimSuffix(origin, "/"),
		handle: h,
		logger: logger,
	}
}

type httpHandler struct {
	origin string
	handle ProtocolHandler
	logger *slog.Logger
}

var _ http.Handler = (*httpHandler)(nil)

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	requestURL := h.requestURL(r)
	asset, err := h.handle(r.Context(), Request{URL: requestURL})
	if err != nil {
		status := statusForError(err)
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "asset request failed",
			"request_id", requestID, "url", requestURL, "status", status, "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	h.logger.Debug("asset served",
		"request_id", requestID, "url", requestURL, "mime_type", asset.MIMEType, "bytes", len(asset.Data))

	w.Header().Set("Content-Type", asset.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(asset.Data)
}

// requestURL rebuilds the custom-scheme URL for r.
func (h *httpHandler) requestURL(r *http.Request) string {
	p := r.URL.EscapedPath()
	if p == "" || strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/") + "/" + indexFile
	}
	if r.URL.Scheme != "" && r.URL.Host != "" {
		return r.URL.Scheme + "://" + r.URL.Host + p
	}
	return h.origin + p
}

// statusForError maps resolution errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrHostPrefixMismatch), errors.Is(err, ErrInvalidRequestURL):
		return http.StatusBadRequest
	case errors.Is(err, ErrPathTraversal):
		return http.StatusForbidden
	case errors.Is(err, ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
