package browser

import (
	"errors"
	"time"
)

// Default values for browser sessions
const (
	DefaultTimeout        = 30 * time.Second
	DefaultProbeTimeout   = 2 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// ErrNotStarted is returned when a session is requested before Start.
var ErrNotStarted = errors.New("browser manager not started")

// Options configures the browser shared by all sessions.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Install downloads the Playwright driver and Chromium before starting
	Install bool

	// Viewport sets the page size of every session
	Viewport Viewport

	// Timeout is the default for page operations without an explicit timeout
	Timeout time.Duration

	// ProbeTimeout bounds best-effort reads such as an error message's text
	ProbeTimeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// DefaultOptions returns headless options with the standard viewport.
func DefaultOptions() Options {
	return Options{
		Headless:     true,
		Install:      true,
		Viewport:     Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		Timeout:      DefaultTimeout,
		ProbeTimeout: DefaultProbeTimeout,
	}
}

// withDefaults fills zero fields.
func (o Options) withDefaults() Options {
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
	return o
}

// millis converts a duration to the float milliseconds Playwright expects.
func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
