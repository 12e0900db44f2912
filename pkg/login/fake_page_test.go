package login

import (
	"errors"
	"fmt"
	"time"
)

var errTimeout = errors.New("Timeout 300000ms exceeded")

// fakePage is a scripted Page that records every call.
type fakePage struct {
	contents   []string
	contentIdx int
	contentErr error

	title    string
	titleErr error

	navErr  map[string]error
	waitErr map[string]error
	idleErr []error
	idleIdx int

	errorVisible bool
	errorText    string

	screenshotErr error
	panicOnClick  bool

	calls  []string
	filled map[string]string
}

func newFakePage() *fakePage {
	return &fakePage{
		contents: []string{"<html><body><form id='login'></form></body></html>"},
		title:    "Incident | ServiceNow",
		navErr:   map[string]error{},
		waitErr:  map[string]error{},
		filled:   map[string]string{},
	}
}

func (p *fakePage) record(format string, args ...interface{}) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakePage) Navigate(url string, timeout time.Duration) error {
	p.record("navigate %s %s", url, timeout)
	return p.navErr[url]
}

func (p *fakePage) WaitVisible(selector string, timeout time.Duration) error {
	p.record("wait %s %s", selector, timeout)
	return p.waitErr[selector]
}

func (p *fakePage) Fill(selector, value string) error {
	p.record("fill %s", selector)
	p.filled[selector] = value
	return nil
}

func (p *fakePage) Click(selector string) error {
	if p.panicOnClick {
		panic("target closed")
	}
	p.record("click %s", selector)
	return nil
}

func (p *fakePage) Press(selector, key string) error {
	p.record("press %s %s", selector, key)
	return nil
}

func (p *fakePage) WaitForNetworkIdle(timeout time.Duration) error {
	p.record("idle %s", timeout)
	if p.idleIdx < len(p.idleErr) {
		err := p.idleErr[p.idleIdx]
		p.idleIdx++
		return err
	}
	return nil
}

func (p *fakePage) Content() (string, error) {
	p.record("content")
	if p.contentErr != nil {
		return "", p.contentErr
	}
	c := p.contents[p.contentIdx]
	if p.contentIdx < len(p.contents)-1 {
		p.contentIdx++
	}
	return c, nil
}

func (p *fakePage) Title() (string, error) {
	p.record("title")
	return p.title, p.titleErr
}

func (p *fakePage) IsVisible(selector string) (bool, error) {
	p.record("visible %s", selector)
	return p.errorVisible, nil
}

func (p *fakePage) Text(selector string) (string, error) {
	p.record("text %s", selector)
	return p.errorText, nil
}

func (p *fakePage) Screenshot(path string) error {
	p.record("screenshot %s", path)
	return p.screenshotErr
}

func (p *fakePage) called(call string) bool {
	for _, c := range p.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (p *fakePage) indexOf(call string) int {
	for i, c := range p.calls {
		if c == call {
			return i
		}
	}
	return -1
}
