package systemprompt

import (
	"strings"
	"time"
)

// ContextProvider is an interface that defines the title and info of a context provider
type ContextProvider interface {
	Title() string
	Info() string
}

// DefaultDateLayout day.month.year.
const DefaultDateLayout = "02.01.2006."

// CurrentDateProvider tells the model what day it is
type CurrentDateProvider struct {
	title  string
	layout string
	now    func() time.Time
}

var _ ContextProvider = (*CurrentDateProvider)(nil)

// NewCurrentDateProvider returns a provider formatting the current date with layout, DefaultDateLayout when empty
func NewCurrentDateProvider(title string, layout string) *CurrentDateProvider {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return &CurrentDateProvider{
		title:  title,
		layout: layout,
		now:    time.Now,
	}
}

// SetClock replaces time.Now
func (p *CurrentDateProvider) SetClock(now func() time.Time) {
	p.now = now
}

func (p *CurrentDateProvider) Title() string {
	return p.title
}

func (p *CurrentDateProvider) Info() string {
	return "The current date is " + p.now().Format(p.layout)
}

// StaticProvider carries fixed facts
type StaticProvider struct {
	title string
	lines []string
}

var _ ContextProvider = (*StaticProvider)(nil)

func NewStaticProvider(title string, lines ...string) *StaticProvider {
	return &StaticProvider{
		title: title,
		lines: lines,
	}
}

func (p *StaticProvider) Title() string {
	return p.title
}

func (p *StaticProvider) Info() string {
	return strings.Join(p.lines, "\n")
}
