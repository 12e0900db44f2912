// Package browser provides the Playwright-backed sessions the login machine
// drives.
//
// A Manager owns one Playwright driver and one Chromium process for the whole
// run. Each instance gets its own Session: a fresh browser context with a
// single page, so cookies and storage never leak between instances.
//
// # Lifecycle
//
//  1. Start: install the driver if requested, run Playwright, launch Chromium
//  2. NewSession: open a context and page for one instance
//  3. Session.Close: release that context
//  4. Shutdown: close leftover sessions, the browser, and the driver
//
// # Example Usage
//
//	manager := browser.NewManager(browser.DefaultOptions())
//	if err := manager.Start(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.NewSession()
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	err = session.Navigate("https://dev123.service-now.com", 5*time.Minute)
package browser
