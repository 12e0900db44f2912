package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is one isolated browser context with a single page.
type Session struct {
	// Context is the browser context (isolated cookies and storage)
	Context playwright.BrowserContext

	// Page is the only page in the context
	Page playwright.Page

	manager   *Manager
	closeOnce sync.Once
	closeErr  error
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	opts := playwright.PageGotoOptions{}
	if timeout > 0 {
		ms := millis(timeout)
		opts.Timeout = &ms
	}

	if _, err := s.Page.Goto(url, opts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitVisible waits until selector matches a visible element.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	state := playwright.WaitForSelectorState("visible")
	opts := playwright.PageWaitForSelectorOptions{State: &state}
	if timeout > 0 {
		ms := millis(timeout)
		opts.Timeout = &ms
	}

	if _, err := s.Page.WaitForSelector(selector, opts); err != nil {
		return fmt.Errorf("wait for %s failed: %w", selector, err)
	}
	return nil
}

// Fill fills an input element with value.
func (s *Session) Fill(selector, value string) error {
	if err := s.Page.Fill(selector, value); err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	return nil
}

// Click clicks the element matching selector.
func (s *Session) Click(selector string) error {
	if err := s.Page.Click(selector); err != nil {
		return fmt.Errorf("click %s failed: %w", selector, err)
	}
	return nil
}

// Press sends key to the element matching selector.
func (s *Session) Press(selector, key string) error {
	if err := s.Page.Press(selector, key); err != nil {
		return fmt.Errorf("press %s on %s failed: %w", key, selector, err)
	}
	return nil
}

// WaitForNetworkIdle waits until the page has no network activity.
func (s *Session) WaitForNetworkIdle(timeout time.Duration) error {
	state := playwright.LoadState("networkidle")
	opts := playwright.PageWaitForLoadStateOptions{State: &state}
	if timeout > 0 {
		ms := millis(timeout)
		opts.Timeout = &ms
	}

	if err := s.Page.WaitForLoadState(opts); err != nil {
		return fmt.Errorf("wait for network idle failed: %w", err)
	}
	return nil
}

// Content returns the full HTML of the page.
func (s *Session) Content() (string, error) {
	return s.Page.Content()
}

// Title returns the page title.
func (s *Session) Title() (string, error) {
	return s.Page.Title()
}

// IsVisible reports whether selector matches a visible element right now.
func (s *Session) IsVisible(selector string) (bool, error) {
	return s.Page.IsVisible(selector)
}

// Text returns the text content of the element matching selector.
func (s *Session) Text(selector string) (string, error) {
	ms := millis(s.manager.opts.ProbeTimeout)
	return s.Page.TextContent(selector, playwright.PageTextContentOptions{Timeout: &ms})
}

// Screenshot writes a PNG of the viewport to path.
func (s *Session) Screenshot(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	if _, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	}); err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return nil
}

// Close releases the context. Calling it more than once is safe.
func (s *Session) Close() error {
	err := s.release()
	if s.manager != nil {
		s.manager.forget(s)
	}
	return err
}

func (s *Session) release() error {
	s.closeOnce.Do(func() {
		if s.Page != nil {
			_ = s.Page.Close() // Ignore errors, continue cleanup
		}
		if s.Context != nil {
			s.closeErr = s.Context.Close()
		}
	})
	return s.closeErr
}
