// Package config resolves the instances to log into and the settings that
// govern a run.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/pdi-login/pkg/types"
)

// Settings holds every tunable of a login run. Credentials are never part of
// Settings; they come from Resolve.
type Settings struct {
	// Timeouts bound every blocking browser wait
	Timeouts TimeoutConfig `yaml:"timeouts" json:"timeouts"`

	// Delays are fixed pauses that give the backend a moment
	Delays DelayConfig `yaml:"delays" json:"delays"`

	// Selectors identify the instance's own login form
	Selectors SelectorConfig `yaml:"selectors" json:"selectors"`

	// IdentityProvider describes the wake-up login
	IdentityProvider IdentityProviderConfig `yaml:"identity_provider" json:"identity_provider"`

	// History configures the persisted attempt log
	History HistoryConfig `yaml:"history" json:"history"`

	// Artifacts configures the files written at the end of a run
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// Browser configures the shared browser process
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Logging configures console and file logging
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// FailureOutcome is assigned when the page still looks like a login page
	// after submit: "warning" or "error"
	FailureOutcome types.Outcome `yaml:"failure_outcome" json:"failure_outcome"`

	// InstanceFilter optionally restricts processing to instances whose host
	// matches one of these glob patterns
	InstanceFilter []string `yaml:"instance_filter" json:"instance_filter"`
}

// TimeoutConfig bounds each wait of the login ritual.
type TimeoutConfig struct {
	Navigation       time.Duration `yaml:"navigation" json:"navigation"`
	LoginForm        time.Duration `yaml:"login_form" json:"login_form"`
	PostLogin        time.Duration `yaml:"post_login" json:"post_login"`
	IDPNavigation    time.Duration `yaml:"idp_navigation" json:"idp_navigation"`
	IDPField         time.Duration `yaml:"idp_field" json:"idp_field"`
	IDPNetworkIdle   time.Duration `yaml:"idp_network_idle" json:"idp_network_idle"`
	ErrorProbe       time.Duration `yaml:"error_probe" json:"error_probe"`
	DefaultOperation time.Duration `yaml:"default_operation" json:"default_operation"`
}

// DelayConfig holds fixed pauses.
type DelayConfig struct {
	// WakeGrace is the pause after the identity-provider login, before
	// re-navigating to the instance
	WakeGrace time.Duration `yaml:"wake_grace" json:"wake_grace"`

	// BetweenInstances is the pause between two processed instances
	BetweenInstances time.Duration `yaml:"between_instances" json:"between_instances"`
}

// SelectorConfig identifies elements of the instance login page.
type SelectorConfig struct {
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
	Submit       string `yaml:"submit" json:"submit"`
	ErrorMessage string `yaml:"error_message" json:"error_message"`
}

// IdentityProviderConfig describes the secondary login used to wake a
// hibernating instance.
type IdentityProviderConfig struct {
	URL              string `yaml:"url" json:"url"`
	UsernameSelector string `yaml:"username_selector" json:"username_selector"`
	SubmitSelector   string `yaml:"submit_selector" json:"submit_selector"`
	PasswordSelector string `yaml:"password_selector" json:"password_selector"`
}

// HistoryConfig configures the attempt log.
type HistoryConfig struct {
	Path     string `yaml:"path" json:"path"`
	Capacity int    `yaml:"capacity" json:"capacity"`
}

// ArtifactConfig configures the files written for CI.
type ArtifactConfig struct {
	StatusPath    string `yaml:"status_path" json:"status_path"`
	SummaryPath   string `yaml:"summary_path" json:"summary_path"`
	ScreenshotDir string `yaml:"screenshot_dir" json:"screenshot_dir"`
}

// BrowserConfig configures the shared browser process.
type BrowserConfig struct {
	Headless       bool `yaml:"headless" json:"headless"`
	Install        bool `yaml:"install" json:"install"`
	ViewportWidth  int  `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int  `yaml:"viewport_height" json:"viewport_height"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// Dir overrides the run log directory (default ~/.pdi-login/logs)
	Dir string `yaml:"dir" json:"dir"`
}

// DefaultSettings returns settings matching the behavior of the login ritual
// as deployed in CI.
func DefaultSettings() *Settings {
	return &Settings{
		Timeouts: TimeoutConfig{
			Navigation:       5 * time.Minute,
			LoginForm:        5 * time.Minute,
			PostLogin:        1 * time.Minute,
			IDPNavigation:    2 * time.Minute,
			IDPField:         1 * time.Minute,
			IDPNetworkIdle:   2 * time.Minute,
			ErrorProbe:       2 * time.Second,
			DefaultOperation: 30 * time.Second,
		},
		Delays: DelayConfig{
			WakeGrace:        15 * time.Second,
			BetweenInstances: 2 * time.Second,
		},
		Selectors: SelectorConfig{
			Username:     "#user_name",
			Password:     "#user_password",
			Submit:       "#sysverb_login",
			ErrorMessage: ".outputmsg_error",
		},
		IdentityProvider: IdentityProviderConfig{
			URL:              "https://signon.service-now.com/x_snc_sso_auth.do?pageId=username",
			UsernameSelector: "#email",
			SubmitSelector:   "#username_submit_button",
			PasswordSelector: "#password",
		},
		History: HistoryConfig{
			Path:     "login_history.json",
			Capacity: 50,
		},
		Artifacts: ArtifactConfig{
			StatusPath:    "login_status.txt",
			SummaryPath:   "login_summary.json",
			ScreenshotDir: ".",
		},
		Browser: BrowserConfig{
			Headless:       true,
			Install:        true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
		FailureOutcome: types.OutcomeWarning,
	}
}

// LoadSettings returns DefaultSettings overlaid with the YAML file at path.
// An empty path returns the defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return settings, nil
}

// Validate validates the settings
func (s *Settings) Validate() error {
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"navigation", s.Timeouts.Navigation},
		{"login_form", s.Timeouts.LoginForm},
		{"post_login", s.Timeouts.PostLogin},
		{"idp_navigation", s.Timeouts.IDPNavigation},
		{"idp_field", s.Timeouts.IDPField},
		{"idp_network_idle", s.Timeouts.IDPNetworkIdle},
		{"error_probe", s.Timeouts.ErrorProbe},
		{"default_operation", s.Timeouts.DefaultOperation},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			return fmt.Errorf("timeout %s must be positive", t.name)
		}
	}

	if s.Delays.WakeGrace < 0 {
		return fmt.Errorf("wake_grace cannot be negative")
	}
	if s.Delays.BetweenInstances < 0 {
		return fmt.Errorf("between_instances cannot be negative")
	}

	if s.Selectors.Username == "" || s.Selectors.Password == "" || s.Selectors.Submit == "" {
		return fmt.Errorf("username, password and submit selectors are required")
	}

	if s.IdentityProvider.URL == "" {
		return fmt.Errorf("identity provider URL is required")
	}
	if s.IdentityProvider.UsernameSelector == "" || s.IdentityProvider.PasswordSelector == "" {
		return fmt.Errorf("identity provider username and password selectors are required")
	}

	if s.History.Path == "" {
		return fmt.Errorf("history path is required")
	}
	if s.History.Capacity <= 0 {
		return fmt.Errorf("history capacity must be positive")
	}

	if s.FailureOutcome != types.OutcomeWarning && s.FailureOutcome != types.OutcomeError {
		return fmt.Errorf("invalid failure_outcome: %s (must be 'warning' or 'error')", s.FailureOutcome)
	}

	if s.Browser.ViewportWidth < 100 || s.Browser.ViewportWidth > 5000 {
		return fmt.Errorf("viewport width must be between 100 and 5000 pixels")
	}
	if s.Browser.ViewportHeight < 100 || s.Browser.ViewportHeight > 5000 {
		return fmt.Errorf("viewport height must be between 100 and 5000 pixels")
	}

	// Set default verbosity if not specified
	if s.Logging.Verbosity == "" {
		s.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[s.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", s.Logging.Verbosity)
	}

	if _, err := NewFilter(s.InstanceFilter); err != nil {
		return err
	}

	return nil
}
