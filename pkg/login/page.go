package login

import "time"

// Page is the browser capability the login ritual drives. Every call blocks
// until it completes, times out, or the transport fails.
type Page interface {
	Navigate(url string, timeout time.Duration) error
	WaitVisible(selector string, timeout time.Duration) error
	Fill(selector, value string) error
	Click(selector string) error
	Press(selector, key string) error
	WaitForNetworkIdle(timeout time.Duration) error
	Content() (string, error)
	Title() (string, error)
	IsVisible(selector string) (bool, error)
	Text(selector string) (string, error)
	Screenshot(path string) error
}

// Logger is the logging surface used by the state machine.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
