package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_LevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		want    []string
		notWant []string
	}{
		{
			name:    "quiet",
			level:   LevelQuiet,
			want:    []string{"Warning: careful", "Error: broken"},
			notWant: []string{"progress", "detail", "internals", "done"},
		},
		{
			name:    "normal",
			level:   LevelNormal,
			want:    []string{"progress", "✓ done", "Warning: careful", "Error: broken"},
			notWant: []string{"detail", "internals"},
		},
		{
			name:    "verbose",
			level:   LevelVerbose,
			want:    []string{"progress", "→ detail"},
			notWant: []string{"internals"},
		},
		{
			name:  "debug",
			level: LevelDebug,
			want:  []string{"progress", "→ detail", "[DEBUG] internals"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewConsoleWriter(tt.level, &buf)

			c.Infof("progress")
			c.Successf("done")
			c.Warnf("careful")
			c.Errorf("broken")
			c.Verbosef("detail")
			c.Debugf("internals")

			out := buf.String()
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestConsole_StepNumbering(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(LevelNormal, &buf)

	c.Step("first")
	c.Step("second")

	out := buf.String()
	assert.Contains(t, out, "[1] first")
	assert.Contains(t, out, "[2] second")
}

func TestConsole_HeaderAndSection(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(LevelNormal, &buf)

	c.Header("PDI login")
	c.Section("https://dev1.service-now.com")

	out := buf.String()
	assert.Contains(t, out, strings.Repeat("=", 70))
	assert.Contains(t, out, "PDI login")
	assert.Contains(t, out, "▶ https://dev1.service-now.com")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelQuiet, ParseLevel("quiet"))
	assert.Equal(t, LevelNormal, ParseLevel("normal"))
	assert.Equal(t, LevelVerbose, ParseLevel("verbose"))
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelNormal, ParseLevel("unknown"))
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debugf(format string, args ...interface{}) {
	r.lines = append(r.lines, "debug:"+format)
}
func (r *recordingLogger) Infof(format string, args ...interface{}) {
	r.lines = append(r.lines, "info:"+format)
}
func (r *recordingLogger) Warnf(format string, args ...interface{}) {
	r.lines = append(r.lines, "warn:"+format)
}
func (r *recordingLogger) Errorf(format string, args ...interface{}) {
	r.lines = append(r.lines, "error:"+format)
}

func TestTee_FansOut(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	m := Tee(a, nil, b)

	m.Infof("one")
	m.Warnf("two")
	m.Errorf("three")
	m.Debugf("four")

	want := []string{"info:one", "warn:two", "error:three", "debug:four"}
	assert.Equal(t, want, a.lines)
	assert.Equal(t, want, b.lines)
}

func TestConsole_DetailDemotesInfo(t *testing.T) {
	var normal, verbose bytes.Buffer
	NewConsoleWriter(LevelNormal, &normal).Detail().Infof("navigating")
	NewConsoleWriter(LevelVerbose, &verbose).Detail().Infof("navigating")

	assert.Empty(t, normal.String())
	assert.Contains(t, verbose.String(), "→ navigating")

	var warn bytes.Buffer
	NewConsoleWriter(LevelNormal, &warn).Detail().Warnf("slow page")
	assert.Contains(t, warn.String(), "Warning: slow page")
}
