package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Level represents the console verbosity level
type Level int

const (
	// LevelQuiet shows only warnings, errors and the final summary
	LevelQuiet Level = iota
	// LevelNormal shows per-instance progress (default)
	LevelNormal
	// LevelVerbose shows each state of the login ritual
	LevelVerbose
	// LevelDebug shows all internal details
	LevelDebug
)

// Color palette shared by console output and the run summary.
var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	amber      = lipgloss.Color("#FFD580")
	mutedGray  = lipgloss.Color("#6B7280")
	brightRed  = lipgloss.Color("#F87171")
	coolCyan   = lipgloss.Color("#7DD3FC")
)

// Console prints human-oriented progress for CI logs. Styling degrades to
// plain text when the writer is not a terminal.
type Console struct {
	level  Level
	writer io.Writer

	header  lipgloss.Style
	section lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	detail  lipgloss.Style

	stepCount int
}

// NewConsole creates a console writing to stdout.
func NewConsole(level Level) *Console {
	return NewConsoleWriter(level, os.Stdout)
}

// NewConsoleWriter creates a console writing to w.
func NewConsoleWriter(level Level, w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		level:   level,
		writer:  w,
		header:  r.NewStyle().Foreground(salmonPink).Bold(true),
		section: r.NewStyle().Foreground(coolCyan),
		step:    r.NewStyle().Foreground(coolCyan),
		success: r.NewStyle().Foreground(mintGreen).Bold(true),
		info:    r.NewStyle().Foreground(salmonPink),
		warning: r.NewStyle().Foreground(amber),
		failure: r.NewStyle().Foreground(brightRed).Bold(true),
		detail:  r.NewStyle().Foreground(mutedGray),
	}
}

// Level returns the configured verbosity.
func (c *Console) Level() Level {
	return c.level
}

// Header prints a prominent header message
func (c *Console) Header(message string) {
	if c.level >= LevelNormal {
		rule := strings.Repeat("=", 70)
		fmt.Fprintf(c.writer, "\n%s\n%s\n%s\n", c.header.Render(rule), c.header.Render("  "+message), c.header.Render(rule))
	}
}

// Section prints a section divider
func (c *Console) Section(title string) {
	if c.level >= LevelNormal {
		fmt.Fprintln(c.writer)
		fmt.Fprintln(c.writer, c.section.Render("▶ "+title))
		fmt.Fprintln(c.writer, c.detail.Render(strings.Repeat("─", 50)))
	}
}

// Step prints a numbered step
func (c *Console) Step(message string) {
	if c.level >= LevelNormal {
		c.stepCount++
		fmt.Fprintf(c.writer, "\n%s\n", c.step.Render(fmt.Sprintf("[%d] %s", c.stepCount, message)))
	}
}

// Successf prints a success message with checkmark
func (c *Console) Successf(format string, args ...interface{}) {
	if c.level >= LevelNormal {
		fmt.Fprintln(c.writer, c.success.Render("✓ "+fmt.Sprintf(format, args...)))
	}
}

// Infof prints an informational message
func (c *Console) Infof(format string, args ...interface{}) {
	if c.level >= LevelNormal {
		fmt.Fprintln(c.writer, c.info.Render(fmt.Sprintf(format, args...)))
	}
}

// Warnf prints a warning message
func (c *Console) Warnf(format string, args ...interface{}) {
	if c.level >= LevelQuiet {
		fmt.Fprintln(c.writer, c.warning.Render("⚠ Warning: "+fmt.Sprintf(format, args...)))
	}
}

// Errorf prints an error message
func (c *Console) Errorf(format string, args ...interface{}) {
	if c.level >= LevelQuiet {
		fmt.Fprintln(c.writer, c.failure.Render("✗ Error: "+fmt.Sprintf(format, args...)))
	}
}

// Verbosef prints detailed information (only in verbose mode)
func (c *Console) Verbosef(format string, args ...interface{}) {
	if c.level >= LevelVerbose {
		fmt.Fprintln(c.writer, c.detail.Render("→ "+fmt.Sprintf(format, args...)))
	}
}

// Debugf prints debug information (only in debug mode)
func (c *Console) Debugf(format string, args ...interface{}) {
	if c.level >= LevelDebug {
		fmt.Fprintln(c.writer, c.detail.Render("[DEBUG] "+fmt.Sprintf(format, args...)))
	}
}

// Newline adds a blank line (respects log level)
func (c *Console) Newline() {
	if c.level >= LevelNormal {
		fmt.Fprintln(c.writer)
	}
}

// ParseLevel converts a verbosity name to a Level. Unknown names map to LevelNormal.
func ParseLevel(level string) Level {
	switch level {
	case "quiet":
		return LevelQuiet
	case "normal":
		return LevelNormal
	case "verbose":
		return LevelVerbose
	case "debug":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// Detail returns a view of c that demotes Infof to Verbosef, for chatty
// components whose progress lines only matter in verbose mode.
func (c *Console) Detail() LeveledLogger {
	return consoleDetail{c}
}

type consoleDetail struct {
	*Console
}

func (d consoleDetail) Infof(format string, args ...interface{}) {
	d.Verbosef(format, args...)
}
