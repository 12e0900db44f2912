package config

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter selects instances by host name glob patterns.
type Filter struct {
	patterns []glob.Glob
}

// NewFilter compiles patterns. An empty pattern list matches every instance.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid instance filter '%s': %w", pattern, err)
		}
		f.patterns = append(f.patterns, g)
	}
	return f, nil
}

// Match reports whether the instance host matches any pattern.
func (f *Filter) Match(inst Instance) bool {
	if len(f.patterns) == 0 {
		return true
	}
	host := inst.Host()
	for _, g := range f.patterns {
		if g.Match(host) {
			return true
		}
	}
	return false
}

// Apply returns the matching instances in their original order.
func (f *Filter) Apply(instances []Instance) []Instance {
	if len(f.patterns) == 0 {
		return instances
	}
	kept := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if f.Match(inst) {
			kept = append(kept, inst)
		}
	}
	return kept
}
