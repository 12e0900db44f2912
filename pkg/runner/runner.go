// Package runner processes the resolved instances one after another, each in
// its own browser session, and aggregates the outcomes of the run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/pdi-login/pkg/config"
	"github.com/entrhq/pdi-login/pkg/history"
	"github.com/entrhq/pdi-login/pkg/logging"
	"github.com/entrhq/pdi-login/pkg/login"
	"github.com/entrhq/pdi-login/pkg/report"
	"github.com/entrhq/pdi-login/pkg/types"
)

// ErrNoInstances is returned when the run is given nothing to process.
var ErrNoInstances = errors.New("no instances to process")

// Session is an isolated browser session for one instance.
type Session interface {
	login.Page
	Close() error
}

// SessionFactory opens a fresh session per instance.
type SessionFactory interface {
	NewSession() (Session, error)
}

// SessionFactoryFunc adapts a function to SessionFactory.
type SessionFactoryFunc func() (Session, error)

// NewSession calls f.
func (f SessionFactoryFunc) NewSession() (Session, error) {
	return f()
}

// LoginMachine drives one session to a history entry.
type LoginMachine interface {
	Run(page login.Page, inst config.Instance) history.Entry
}

// HistoryAppender persists one entry.
type HistoryAppender interface {
	Append(entry history.Entry) error
}

// Runner processes instances sequentially.
type Runner struct {
	machine  LoginMachine
	sessions SessionFactory
	history  HistoryAppender
	logger   login.Logger
	runID    string
	delay    time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration)

	// OnInstance, when set, is called before each instance is processed
	OnInstance func(index, total int, inst config.Instance)

	// OnResult, when set, is called after each instance's entry is recorded
	OnResult func(entry history.Entry)
}

// Option configures a Runner.
type Option func(*Runner)

// WithDelay sets the pause between consecutive instances.
func WithDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.delay = d
	}
}

// WithLogger sets the logger.
func WithLogger(l login.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunID tags the summary and entries built for failed sessions.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSleep replaces the pause between instances. sleep must return early
// when ctx ends.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// New creates a runner.
func New(machine LoginMachine, sessions SessionFactory, store HistoryAppender, opts ...Option) *Runner {
	r := &Runner{
		machine:  machine,
		sessions: sessions,
		history:  store,
		logger:   logging.Discard,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes instances in order and returns the run summary. No instance
// failure aborts the run. When ctx is cancelled, processing stops before the
// next instance and the remaining instances are reported as failed.
func (r *Runner) Run(ctx context.Context, instances []config.Instance) (*report.Summary, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}

	summary := report.NewSummary(r.runID, r.now())
	defer func() {
		summary.Finish(r.now())
	}()

	for i, inst := range instances {
		if i > 0 && r.delay > 0 {
			r.sleep(ctx, r.delay)
		}
		if ctx.Err() != nil {
			r.skip(summary, instances[i:], ctx.Err())
			break
		}

		if r.OnInstance != nil {
			r.OnInstance(i, len(instances), inst)
		}

		r.record(summary, r.process(inst))
	}

	return summary, nil
}

// Fail records every instance as an Error entry caused by cause, without
// opening any session. It is used when the browser cannot start, so the run
// still leaves history and a report that reflect this run.
func (r *Runner) Fail(instances []config.Instance, cause error) *report.Summary {
	started := r.now()
	summary := report.NewSummary(r.runID, started)
	for _, inst := range instances {
		r.record(summary, r.failedEntry(inst, cause, started))
	}
	summary.Finish(r.now())
	return summary
}

// record persists entry and adds it to the summary.
func (r *Runner) record(summary *report.Summary, entry history.Entry) {
	if err := r.history.Append(entry); err != nil {
		r.logger.Warnf("Failed to append history for %s: %v", entry.URL, err)
	}
	summary.Record(entry)

	if r.OnResult != nil {
		r.OnResult(entry)
	}
}

// process runs the machine in a fresh session that is always closed.
func (r *Runner) process(inst config.Instance) history.Entry {
	started := r.now()
	session, err := r.sessions.NewSession()
	if err != nil {
		r.logger.Errorf("Failed to open browser session for %s: %v", inst.URL, err)
		return r.failedEntry(inst, fmt.Errorf("failed to open browser session: %w", err), started)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.Debugf("Failed to close session for %s: %v", inst.URL, err)
		}
	}()

	return r.machine.Run(session, inst)
}

func (r *Runner) failedEntry(inst config.Instance, err error, started time.Time) history.Entry {
	finished := r.now()
	msg := err.Error()
	return history.Entry{
		Timestamp:  finished.Format(time.RFC3339),
		URL:        inst.URL,
		Status:     types.OutcomeError,
		Error:      &msg,
		RunID:      r.runID,
		DurationMS: finished.Sub(started).Milliseconds(),
	}
}

func (r *Runner) skip(summary *report.Summary, remaining []config.Instance, cause error) {
	summary.Cancelled = true
	r.logger.Warnf("Run interrupted (%v), %d instance(s) not processed", cause, len(remaining))
	for _, inst := range remaining {
		summary.MarkSkipped(inst.URL)
	}
}

// sleepContext pauses for d, returning early if ctx ends.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
