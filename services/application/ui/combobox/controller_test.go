package combobox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ghuser/appdirectory/services/application/domain/models"
)

const testDebounce = 50 * time.Millisecond

// fakeSearcher records queries. Queries listed in block wait for a release
// on their channel before returning.
type fakeSearcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]*models.Application
	block   map[string]chan struct{}
	started chan string
	err     error
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		results: map[string][]*models.Application{},
		block:   map[string]chan struct{}{},
		started: make(chan string, 16),
	}
}

func (f *fakeSearcher) Search(_ context.Context, q string) ([]*models.Application, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	wait := f.block[q]
	res := f.results[q]
	err := f.err
	f.mu.Unlock()

	f.started <- q
	if wait != nil {
		<-wait
	}
	return res, err
}

func (f *fakeSearcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

func waitStarted(t *testing.T, f *fakeSearcher, want string) {
	t.Helper()
	select {
	case got := <-f.started:
		if got != want {
			t.Fatalf("search started for %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("search for %q never started", want)
	}
}

func TestController_DebouncesKeystrokes(t *testing.T) {
	f := newFakeSearcher()
	f.results["alpha"] = []*models.Application{models.NewApplication("a1", "Alpha", []string{"alpha.com"})}
	c := NewController(f, WithDebounce(testDebounce))
	defer c.Close()

	for _, text := range []string{"a", "al", "alp", "alph", "alpha"} {
		c.InputChanged(text)
	}
	if got := c.State().Query; got != "alpha" {
		t.Fatalf("Query must update immediately, got %q", got)
	}

	waitStarted(t, f, "alpha")
	waitFor(t, func() bool { return len(c.State().Applications) == 1 })
	time.Sleep(3 * testDebounce)

	calls := f.Calls()
	if len(calls) != 1 || calls[0] != "alpha" {
		t.Fatalf("expected exactly one search for %q, got %v", "alpha", calls)
	}
	if c.State().IsLoading {
		t.Error("IsLoading must be false once results arrive")
	}
}

func TestController_BlankInputClearsWithoutRequest(t *testing.T) {
	f := newFakeSearcher()
	f.results["al"] = []*models.Application{models.NewApplication("a1", "Alpha", nil)}
	c := NewController(f, WithDebounce(testDebounce))
	defer c.Close()

	c.InputChanged("al")
	waitStarted(t, f, "al")
	waitFor(t, func() bool { return len(c.State().Applications) == 1 })

	c.InputChanged("   ")
	waitFor(t, func() bool { return len(c.State().Applications) == 0 })
	time.Sleep(2 * testDebounce)

	if calls := f.Calls(); len(calls) != 1 {
		t.Fatalf("blank input must not search, got calls %v", calls)
	}
}

func TestController_SearchFailureKeepsList(t *testing.T) {
	f := newFakeSearcher()
	f.results["al"] = []*models.Application{models.NewApplication("a1", "Alpha", nil)}
	c := NewController(f, WithDebounce(testDebounce))
	defer c.Close()

	c.InputChanged("al")
	waitStarted(t, f, "al")
	waitFor(t, func() bool { return len(c.State().Applications) == 1 })

	f.mu.Lock()
	f.err = errors.New("connection refused")
	f.mu.Unlock()

	c.InputChanged("alx")
	waitStarted(t, f, "alx")
	waitFor(t, func() bool { return !c.State().IsLoading })

	if got := c.State().Applications; len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("failure must leave the list unchanged, got %+v", got)
	}
}

// staleRace dispatches "al" (slow) then "alp" (fast), lets "alp" land, then
// releases "al" and returns the final state.
func staleRace(t *testing.T, opts ...Option) State {
	t.Helper()
	f := newFakeSearcher()
	release := make(chan struct{})
	f.block["al"] = release
	f.results["al"] = []*models.Application{
		models.NewApplication("a1", "Alpha", nil),
		models.NewApplication("c3", "Calpha", nil),
	}
	f.results["alp"] = []*models.Application{models.NewApplication("a1", "Alpha", nil)}

	c := NewController(f, append([]Option{WithDebounce(testDebounce)}, opts...)...)

	c.InputChanged("al")
	waitStarted(t, f, "al")
	c.InputChanged("alp")
	waitStarted(t, f, "alp")
	waitFor(t, func() bool { return len(c.State().Applications) == 1 })

	close(release)
	c.Close()
	return c.State()
}

func TestController_StaleResponseOverwritesByDefault(t *testing.T) {
	s := staleRace(t)
	if len(s.Applications) != 2 {
		t.Fatalf("without the guard the slow response wins, got %d results", len(s.Applications))
	}
}

func TestController_StaleResponseGuard(t *testing.T) {
	s := staleRace(t, WithStaleResponseGuard())
	if len(s.Applications) != 1 {
		t.Fatalf("with the guard the latest response wins, got %d results", len(s.Applications))
	}
	if s.IsLoading {
		t.Error("IsLoading must be false once all searches have returned")
	}
}

func TestController_KeysAndSelect(t *testing.T) {
	f := newFakeSearcher()
	f.results["al"] = []*models.Application{
		models.NewApplication("a1", "Alpha", nil),
		models.NewApplication("c3", "Calpha", nil),
	}
	var changes int
	c := NewController(f, WithDebounce(testDebounce), WithOnChange(func(State) { changes++ }))
	defer c.Close()

	c.InputChanged("al")
	waitStarted(t, f, "al")
	waitFor(t, func() bool { return len(c.State().Applications) == 2 })

	c.KeyPressed(KeyArrowDown)
	c.KeyPressed(KeyArrowDown)
	c.KeyPressed(KeyArrowDown)
	if got := c.State().ActiveIndex; got != 1 {
		t.Fatalf("ActiveIndex = %d, want 1", got)
	}
	c.KeyPressed(KeyEnter)

	s := c.State()
	if s.SelectedApp == nil || s.SelectedApp.ID != "c3" || s.Query != "Calpha" {
		t.Fatalf("unexpected selection state: %+v", s)
	}

	c.Select(5) // list is empty now; ignored
	if c.State().SelectedApp.ID != "c3" {
		t.Fatal("out-of-range Select must be ignored")
	}
	if changes == 0 {
		t.Fatal("expected OnChange notifications")
	}
}

func TestController_CloseCancelsPendingSearch(t *testing.T) {
	f := newFakeSearcher()
	c := NewController(f, WithDebounce(testDebounce))

	c.InputChanged("al")
	c.Close()
	time.Sleep(2 * testDebounce)

	if calls := f.Calls(); len(calls) != 0 {
		t.Fatalf("expected no search after Close, got %v", calls)
	}
}

func TestController_CloseLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFakeSearcher()
	f.results["al"] = []*models.Application{models.NewApplication("a1", "Alpha", nil)}
	c := NewController(f, WithDebounce(testDebounce))

	c.InputChanged("al")
	waitStarted(t, f, "al")
	waitFor(t, func() bool { return len(c.State().Applications) == 1 })
	c.InputChanged("alp")
	c.Close()
}
