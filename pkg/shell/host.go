// Package shell is the application-lifecycle controller of the desktop shell.
//
// The host runtime (the native window toolkit) is an external collaborator
// reached through the Host and Window interfaces. The Controller owns the
// main window, registers the custom asset protocol in production and decides
// which URL the window loads.
package shell

import "github.com/txn2/appshell/pkg/assetproto"

// Host is the native runtime the shell drives.
type Host interface {
	// RegisterProtocol routes every request under scheme:// to h.
	RegisterProtocol(scheme string, h assetproto.ProtocolHandler) error

	// NewWindow creates a browser window.
	NewWindow(opts WindowOptions) (Window, error)

	// Quit terminates the application.
	Quit()

	// Platform reports the operating system, in runtime.GOOS spelling.
	Platform() string
}

// Window is a browser window owned by the host runtime.
type Window interface {
	Load(url string) error
	Show()
	OpenDevTools()
	Maximize()
	Close() error

	// OnClosed registers a callback run once the window has closed.
	OnClosed(fn func())

	// OnReadyToShow registers a callback run once the first paint is ready.
	OnReadyToShow(fn func())
}

// Title bar styles.
const (
	TitleBarDefault = "default"
	TitleBarHidden  = "hidden"
)

// WindowOptions configures a new window.
type WindowOptions struct {
	Width         int
	Height        int
	Show          bool
	TitleBarStyle string
}

// mainWindowOptions starts the main window hidden; it is shown on ready-to-show.
var mainWindowOptions = WindowOptions{
	Width:         800,
	Height:        600,
	Show:          false,
	TitleBarStyle: TitleBarHidden,
}
