package systemprompt

import (
	"testing"
	"time"
)

type testGenerator struct {
	BaseGenerator
}

func (g *testGenerator) Generate() string {
	return ""
}

func TestContextProviders(t *testing.T) {
	g := new(testGenerator)
	g.AddContextProviders(
		NewStaticProvider("a", "first"),
		NewStaticProvider("b", "second"),
		NewStaticProvider("a", "duplicate"),
		NewStaticProvider("c", "third"),
	)
	if n := len(g.ContextProviders()); n != 3 {
		t.Fatalf("expected 3 providers, got %d", n)
	}
	p, err := g.ContextProvider("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Info() != "first" {
		t.Errorf("expected first provider to win, got %q", p.Info())
	}
	g.RemoveContextProviders("a")
	if _, err := g.ContextProvider("a"); err == nil {
		t.Errorf("expected provider a to be removed")
	}
	g.RemoveContextProviders("b", "c")
	if n := len(g.ContextProviders()); n != 0 {
		t.Errorf("expected no providers, got %d", n)
	}
}

func TestCurrentDateProvider(t *testing.T) {
	p := NewCurrentDateProvider("Date", "")
	p.SetClock(func() time.Time {
		return time.Date(2024, time.June, 5, 12, 0, 0, 0, time.UTC)
	})
	if info := p.Info(); info != "The current date is 05.06.2024." {
		t.Errorf("unexpected info %q", info)
	}
}
