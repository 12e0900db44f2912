// Package login drives one browser session through the PDI login ritual:
// hibernation detection, optional wake-up through the identity provider,
// the instance's own login form, and classification of the page reached.
package login

import (
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/pdi-login/pkg/config"
	"github.com/entrhq/pdi-login/pkg/history"
	"github.com/entrhq/pdi-login/pkg/logging"
	"github.com/entrhq/pdi-login/pkg/types"
)

// State names one step of the login ritual.
type State string

const (
	StateNavigateInitial   State = "navigate_initial"
	StateDetectHibernation State = "detect_hibernation"
	StateWakeUp            State = "wake_up"
	StateAwaitLoginForm    State = "await_login_form"
	StateSubmitCredentials State = "submit_credentials"
	StateAwaitPostLogin    State = "await_post_login"
	StateValidate          State = "validate"
)

// StateError is a failure inside one state.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// Result is the terminal outcome of one instance.
type Result struct {
	Outcome    types.Outcome
	Title      string
	TitleKnown bool
	ErrorText  string
	Hibernated bool
	Screenshot string
	Err        error
}

// Machine runs the login ritual. It holds no per-instance state and may be
// reused across instances.
type Machine struct {
	settings *config.Settings
	policy   Policy
	wake     config.Credentials
	logger   Logger
	runID    string
	now      func() time.Time
	sleep    func(time.Duration)
}

// Option configures a Machine.
type Option func(*Machine)

// WithWakeCredentials sets the identity-provider credentials used to wake a
// hibernating instance. Without them the instance's own credentials are used.
func WithWakeCredentials(creds config.Credentials) Option {
	return func(m *Machine) {
		m.wake = creds
	}
}

// WithPolicy replaces the classification policy.
func WithPolicy(p Policy) Option {
	return func(m *Machine) {
		m.policy = p
	}
}

// WithRunID tags every produced history entry.
func WithRunID(id string) Option {
	return func(m *Machine) {
		m.runID = id
	}
}

// WithClock replaces the time source and the sleep used for grace periods.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// NewMachine creates a machine from validated settings.
func NewMachine(settings *config.Settings, logger Logger, opts ...Option) *Machine {
	if logger == nil {
		logger = logging.Discard
	}
	m := &Machine{
		settings: settings,
		policy:   DefaultPolicy(settings.FailureOutcome),
		logger:   logger,
		now:      time.Now,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run drives page to a terminal outcome for inst and returns the history
// entry describing it. It never fails: every error becomes an Error outcome.
func (m *Machine) Run(page Page, inst config.Instance) history.Entry {
	started := m.now()
	res := m.Attempt(page, inst)
	return m.entry(inst, res, started)
}

// Attempt runs the ritual and returns the detailed result.
func (m *Machine) Attempt(page Page, inst config.Instance) *Result {
	res := &Result{}
	outcome, err := m.drive(page, inst, res)
	if err != nil {
		res.Outcome = types.OutcomeError
		res.Err = err
		res.ErrorText = err.Error()
		m.logger.Errorf("%s: %v", inst.URL, err)
		res.Screenshot = m.captureScreenshot(page, ScreenshotPath(m.settings.Artifacts.ScreenshotDir, ErrorPrefix, inst.URL))
		return res
	}

	res.Outcome = outcome
	res.Screenshot = m.captureScreenshot(page, ScreenshotPath(m.settings.Artifacts.ScreenshotDir, ResultPrefix, inst.URL))
	return res
}

// drive walks the states in order. A panic from the browser driver is
// converted into an error at this boundary.
func (m *Machine) drive(page Page, inst config.Instance, res *Result) (outcome types.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = types.OutcomeError
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	if err := m.navigateInitial(page, inst); err != nil {
		return types.OutcomeError, err
	}

	hibernating, err := m.detectHibernation(page)
	if err != nil {
		return types.OutcomeError, err
	}
	if hibernating {
		res.Hibernated = true
		m.logger.Warnf("%s is hibernating, waking it through the identity provider", inst.URL)
		if err := m.wakeUp(page, inst); err != nil {
			return types.OutcomeError, err
		}
	}

	if err := m.awaitLoginForm(page); err != nil {
		return types.OutcomeError, err
	}
	if err := m.submitCredentials(page, inst); err != nil {
		return types.OutcomeError, err
	}
	if err := m.awaitPostLogin(page); err != nil {
		return types.OutcomeError, err
	}

	return m.validate(page, inst, res)
}

func (m *Machine) navigateInitial(page Page, inst config.Instance) error {
	m.logger.Infof("Navigating to %s (timeout %s)", inst.URL, m.settings.Timeouts.Navigation)
	if err := page.Navigate(inst.URL, m.settings.Timeouts.Navigation); err != nil {
		return &StateError{State: StateNavigateInitial, Err: err}
	}
	return nil
}

func (m *Machine) detectHibernation(page Page) (bool, error) {
	content, err := page.Content()
	if err != nil {
		return false, &StateError{State: StateDetectHibernation, Err: fmt.Errorf("failed to read page content: %w", err)}
	}
	return IsHibernating(content), nil
}

func (m *Machine) wakeUp(page Page, inst config.Instance) error {
	idp := m.settings.IdentityProvider
	t := m.settings.Timeouts
	creds := m.wake
	if creds.IsZero() {
		creds = config.Credentials{Username: inst.Username, Password: inst.Password}
	}

	fail := func(step string, err error) error {
		return &StateError{State: StateWakeUp, Err: fmt.Errorf("wake-up failed: %s: %w", step, err)}
	}

	m.logger.Debugf("Opening identity provider %s", idp.URL)
	if err := page.Navigate(idp.URL, t.IDPNavigation); err != nil {
		return fail("navigate to identity provider", err)
	}

	if err := page.WaitVisible(idp.UsernameSelector, t.IDPField); err != nil {
		return fail("wait for username field", err)
	}
	if err := page.Fill(idp.UsernameSelector, creds.Username); err != nil {
		return fail("fill username", err)
	}
	if idp.SubmitSelector != "" {
		if err := page.Click(idp.SubmitSelector); err != nil {
			return fail("submit username", err)
		}
	} else if err := page.Press(idp.UsernameSelector, "Enter"); err != nil {
		return fail("submit username", err)
	}

	if err := page.WaitVisible(idp.PasswordSelector, t.IDPField); err != nil {
		return fail("wait for password field", err)
	}
	if err := page.Fill(idp.PasswordSelector, creds.Password); err != nil {
		return fail("fill password", err)
	}
	if err := page.Press(idp.PasswordSelector, "Enter"); err != nil {
		return fail("submit password", err)
	}

	if err := page.WaitForNetworkIdle(t.IDPNetworkIdle); err != nil {
		return fail("wait for identity provider login", err)
	}

	m.logger.Infof("Identity provider login done, giving %s %s to start waking", inst.URL, m.settings.Delays.WakeGrace)
	if m.settings.Delays.WakeGrace > 0 {
		m.sleep(m.settings.Delays.WakeGrace)
	}

	if err := page.Navigate(inst.URL, t.Navigation); err != nil {
		return fail("navigate back to instance", err)
	}
	return nil
}

func (m *Machine) awaitLoginForm(page Page) error {
	m.logger.Infof("Waiting for login form (timeout %s)", m.settings.Timeouts.LoginForm)
	if err := page.WaitVisible(m.settings.Selectors.Username, m.settings.Timeouts.LoginForm); err != nil {
		return &StateError{State: StateAwaitLoginForm, Err: fmt.Errorf("login form did not appear: %w", err)}
	}
	return nil
}

func (m *Machine) submitCredentials(page Page, inst config.Instance) error {
	sel := m.settings.Selectors
	m.logger.Infof("Login form detected, submitting credentials")

	if err := page.Fill(sel.Username, inst.Username); err != nil {
		return &StateError{State: StateSubmitCredentials, Err: fmt.Errorf("fill username: %w", err)}
	}
	if err := page.Fill(sel.Password, inst.Password); err != nil {
		return &StateError{State: StateSubmitCredentials, Err: fmt.Errorf("fill password: %w", err)}
	}
	if err := page.Click(sel.Submit); err != nil {
		return &StateError{State: StateSubmitCredentials, Err: fmt.Errorf("click submit: %w", err)}
	}
	return nil
}

// awaitPostLogin tolerates a network-idle timeout as long as the page is
// still readable.
func (m *Machine) awaitPostLogin(page Page) error {
	waitErr := page.WaitForNetworkIdle(m.settings.Timeouts.PostLogin)
	if waitErr == nil {
		return nil
	}

	m.logger.Warnf("Page did not settle after login: %v", waitErr)
	if _, err := page.Content(); err != nil {
		return &StateError{State: StateAwaitPostLogin, Err: fmt.Errorf("page unreadable after login: %w (wait: %v)", err, waitErr)}
	}
	return nil
}

func (m *Machine) validate(page Page, inst config.Instance, res *Result) (types.Outcome, error) {
	errorVisible := false
	if sel := m.settings.Selectors.ErrorMessage; sel != "" {
		if visible, err := page.IsVisible(sel); err == nil && visible {
			errorVisible = true
			if text, err := page.Text(sel); err == nil {
				res.ErrorText = strings.TrimSpace(text)
			}
		}
	}

	title, err := page.Title()
	if err != nil {
		return types.OutcomeError, &StateError{State: StateValidate, Err: fmt.Errorf("failed to read page title: %w", err)}
	}
	res.Title = title
	res.TitleKnown = true
	m.logger.Infof("Current page title: %s", title)

	outcome := m.policy.Classify(title, errorVisible, res.ErrorText)
	switch {
	case outcome.IsSuccess():
		m.logger.Infof("Login to %s appears successful", inst.URL)
	case res.ErrorText != "":
		m.logger.Warnf("Login to %s rejected: %s", inst.URL, res.ErrorText)
	default:
		m.logger.Warnf("Title still suggests the login page for %s", inst.URL)
	}
	return outcome, nil
}

// captureScreenshot is best effort; its failure never changes the outcome.
func (m *Machine) captureScreenshot(page Page, path string) string {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Debugf("Screenshot %s failed: %v", path, r)
		}
	}()

	if err := page.Screenshot(path); err != nil {
		m.logger.Debugf("Screenshot %s failed: %v", path, err)
		return ""
	}
	m.logger.Debugf("Screenshot saved to %s", path)
	return path
}

func (m *Machine) entry(inst config.Instance, res *Result, started time.Time) history.Entry {
	finished := m.now()
	e := history.Entry{
		Timestamp:  finished.Format(time.RFC3339),
		URL:        inst.URL,
		Status:     res.Outcome,
		RunID:      m.runID,
		Hibernated: res.Hibernated,
		DurationMS: finished.Sub(started).Milliseconds(),
	}
	if res.TitleKnown {
		title := res.Title
		e.Title = &title
	}
	if res.ErrorText != "" {
		text := res.ErrorText
		e.Error = &text
	}
	return e
}
