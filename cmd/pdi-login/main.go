// Package main provides pdi-login, which keeps ServiceNow personal developer
// instances awake by logging into each configured instance, waking it through
// the identity provider first when it is hibernating.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/entrhq/pdi-login/pkg/browser"
	"github.com/entrhq/pdi-login/pkg/config"
	"github.com/entrhq/pdi-login/pkg/history"
	"github.com/entrhq/pdi-login/pkg/logging"
	"github.com/entrhq/pdi-login/pkg/login"
	"github.com/entrhq/pdi-login/pkg/report"
	"github.com/entrhq/pdi-login/pkg/runner"
	"github.com/entrhq/pdi-login/pkg/types"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile     string
	EnvFile        string
	HistoryFile    string
	StatusFile     string
	ScreenshotDir  string
	Headless       bool
	Verbosity      string
	Only           string
	FailureOutcome string
	ShowVersion    bool

	// set records which flags were given explicitly
	set map[string]bool
}

func main() {
	// Parse command line flags
	cli := parseFlags()

	// Show version if requested
	if cli.ShowVersion {
		fmt.Printf("pdi-login v%s\n", version)
		return
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())

	// Stop after the current instance on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nInterrupted, stopping after the current instance...")
		cancel()
	}()

	code, err := run(ctx, cli)
	cancel()
	if err != nil {
		log.Printf("Run failed: %v", err)
	}
	os.Exit(code)
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cli := &CLIConfig{set: make(map[string]bool)}

	flag.StringVar(&cli.ConfigFile, "config", "", "Path to settings file (YAML)")
	flag.StringVar(&cli.EnvFile, "env-file", config.DefaultEnvFile, "Dotenv file to load before resolving instances")
	flag.StringVar(&cli.HistoryFile, "history", "", "History file (overrides settings)")
	flag.StringVar(&cli.StatusFile, "status", "", "Status report file (overrides settings)")
	flag.StringVar(&cli.ScreenshotDir, "screenshots", "", "Screenshot directory (overrides settings)")
	flag.BoolVar(&cli.Headless, "headless", true, "Run the browser without a window")
	flag.StringVar(&cli.Verbosity, "verbosity", "", "Console verbosity: quiet, normal, verbose or debug")
	flag.StringVar(&cli.Only, "only", "", "Comma-separated host globs limiting which instances run (e.g. \"dev12*\")")
	flag.StringVar(&cli.FailureOutcome, "failure-outcome", "", "Outcome for a rejected login: warning or error")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdi-login - Keep ServiceNow developer instances awake\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pdi-login [options]\n\n")
		fmt.Fprintf(os.Stderr, "Instances are read from the environment:\n")
		fmt.Fprintf(os.Stderr, "  %s   comma-separated URLs sharing %s / %s\n", config.EnvInstanceURLs, config.EnvUsername, config.EnvPassword)
		fmt.Fprintf(os.Stderr, "  %s       JSON array of {url, username, password}\n", config.EnvInstances)
		fmt.Fprintf(os.Stderr, "  %s    single URL (default %s)\n\n", config.EnvInstanceURL, config.DefaultInstanceURL)
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Log into the instance from .env\n")
		fmt.Fprintf(os.Stderr, "  pdi-login\n\n")
		fmt.Fprintf(os.Stderr, "  # Only the dev12x instances, treating rejected logins as errors\n")
		fmt.Fprintf(os.Stderr, "  pdi-login -only \"dev12*\" -failure-outcome error\n\n")
	}

	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = true
	})
	return cli
}

// run executes one login run and returns the process exit code
//
//nolint:gocyclo
func run(ctx context.Context, cli *CLIConfig) (int, error) {
	if _, err := config.LoadEnvFile(cli.EnvFile); err != nil {
		return report.ExitFailure, err
	}

	settings, err := loadSettings(cli)
	if err != nil {
		return report.ExitFailure, err
	}

	console := logging.NewConsole(logging.ParseLevel(settings.Logging.Verbosity))

	logging.SetDirectory(settings.Logging.Dir)
	fileLog, err := logging.NewLogger("pdi-login")
	if err != nil {
		console.Warnf("File logging unavailable: %v", err)
	}
	defer fileLog.Close()
	logger := logging.Tee(fileLog, console.Detail())

	console.Header(fmt.Sprintf("pdi-login v%s", version))
	console.Verbosef("Run ID: %s", fileLog.RunID())
	if path := fileLog.LogPath(); path != "" {
		console.Verbosef("Log file: %s", path)
	} else if dir, err := logging.GetLogDirectory(); err == nil {
		console.Verbosef("Log directory: %s", dir)
	}

	// Resolve instances before any browser exists
	instances, err := resolveInstances(settings, logger)
	if err != nil {
		console.Errorf("%v", err)
		fileLog.Errorf("Configuration error: %v", err)
		writeEmptyStatus(settings)
		return report.ExitFailure, nil
	}
	console.Infof("Processing %d instance(s)", len(instances))
	if console.Level() >= logging.LevelVerbose {
		for _, inst := range instances {
			console.Verbosef("  %s", inst)
		}
	}

	manager := browser.NewManager(browser.Options{
		Headless: settings.Browser.Headless,
		Install:  settings.Browser.Install,
		Viewport: browser.Viewport{
			Width:  settings.Browser.ViewportWidth,
			Height: settings.Browser.ViewportHeight,
		},
		Timeout:      settings.Timeouts.DefaultOperation,
		ProbeTimeout: settings.Timeouts.ErrorProbe,
	})

	machine := login.NewMachine(settings, logger,
		login.WithWakeCredentials(config.ResolveWakeCredentials(os.LookupEnv)),
		login.WithRunID(fileLog.RunID()),
	)
	store := history.NewStore(settings.History.Path, settings.History.Capacity)
	console.Verbosef("History: %s (keeps %d)", store.Path(), store.Capacity())

	r := runner.New(machine, sessionFactory(manager), store,
		runner.WithDelay(settings.Delays.BetweenInstances),
		runner.WithLogger(logger),
		runner.WithRunID(fileLog.RunID()),
	)
	r.OnInstance = func(index, total int, inst config.Instance) {
		console.Step(fmt.Sprintf("%s (%d/%d)", inst.URL, index+1, total))
	}
	r.OnResult = func(entry history.Entry) {
		switch entry.Status {
		case types.OutcomeSuccess:
			console.Successf("Logged into %s", entry.URL)
		case types.OutcomeWarning:
			console.Warnf("Login to %s may have failed", entry.URL)
		default:
			console.Errorf("Login to %s failed", entry.URL)
		}
	}

	console.Verbosef("Starting browser (headless: %t)", settings.Browser.Headless)
	if err := startBrowser(manager); err != nil {
		err = fmt.Errorf("failed to start browser: %w", err)
		fileLog.Errorf("%v", err)
		finish(console, fileLog, settings, r.Fail(instances, err))
		return report.ExitFailure, err
	}
	defer func() {
		if n := manager.OpenSessions(); n > 0 {
			fileLog.Warnf("%d browser session(s) still open at shutdown", n)
		}
		if err := manager.Shutdown(); err != nil {
			fileLog.Warnf("Browser shutdown: %v", err)
		}
	}()

	console.Section("Instances")
	summary, err := r.Run(ctx, instances)
	if err != nil {
		return report.ExitFailure, err
	}

	finish(console, fileLog, settings, summary)
	return summary.ExitCode(), nil
}

// startBrowser launches the shared browser. Tests replace it.
var startBrowser = (*browser.Manager).Start

// finish writes the run artifacts and prints the console summary.
func finish(console *logging.Console, fileLog *logging.Logger, settings *config.Settings, summary *report.Summary) {
	writer := report.NewArtifactWriter(settings.Artifacts.StatusPath, settings.Artifacts.SummaryPath)
	if err := writer.WriteAll(summary); err != nil {
		console.Warnf("%v", err)
		fileLog.Warnf("Artifacts: %v", err)
	}

	console.Newline()
	report.RenderConsole(os.Stdout, summary)
	fileLog.Infof("Run finished: %d succeeded, %d failed", len(summary.Report.Succeeded), len(summary.Report.Failed))
}

// loadSettings loads the settings file and applies flag overrides
func loadSettings(cli *CLIConfig) (*config.Settings, error) {
	settings, err := config.LoadSettings(cli.ConfigFile)
	if err != nil {
		return nil, err
	}

	if cli.HistoryFile != "" {
		settings.History.Path = cli.HistoryFile
	}
	if cli.StatusFile != "" {
		settings.Artifacts.StatusPath = cli.StatusFile
	}
	if cli.ScreenshotDir != "" {
		settings.Artifacts.ScreenshotDir = cli.ScreenshotDir
	}
	if cli.set["headless"] {
		settings.Browser.Headless = cli.Headless
	}
	if cli.Verbosity != "" {
		settings.Logging.Verbosity = cli.Verbosity
	}
	if cli.Only != "" {
		settings.InstanceFilter = splitList(cli.Only)
	}
	if cli.FailureOutcome != "" {
		outcome, err := types.ParseOutcome(cli.FailureOutcome)
		if err != nil {
			return nil, err
		}
		settings.FailureOutcome = outcome
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// resolveInstances resolves the environment and applies the instance filter
func resolveInstances(settings *config.Settings, logger logging.LeveledLogger) ([]config.Instance, error) {
	res, err := config.ResolveFromEnv()
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		logger.Warnf("%s", w)
	}
	logger.Debugf("Resolved %d instance(s) from %s", len(res.Instances), res.Source)

	filter, err := config.NewFilter(settings.InstanceFilter)
	if err != nil {
		return nil, err
	}
	instances := filter.Apply(res.Instances)
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w: no instance matches %s", config.ErrNoInstances, strings.Join(settings.InstanceFilter, ","))
	}
	return instances, nil
}

// sessionFactory adapts the browser manager to the runner
func sessionFactory(m *browser.Manager) runner.SessionFactory {
	return runner.SessionFactoryFunc(func() (runner.Session, error) {
		s, err := m.NewSession()
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// writeEmptyStatus leaves a status report even when nothing could run
func writeEmptyStatus(settings *config.Settings) {
	w := report.NewArtifactWriter(settings.Artifacts.StatusPath, "")
	_ = w.WriteStatus(&report.RunReport{})
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
