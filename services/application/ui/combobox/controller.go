package combobox

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ghuser/appdirectory/pkg/logger"
	"github.com/ghuser/appdirectory/services/application/domain/models"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search is sent.
const DefaultDebounce = 300 * time.Millisecond

// Searcher runs an application search. *client.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]*models.Application, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithLogger sets the logger used for search failures.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithOnChange registers fn to receive every new State. fn runs with the
// controller locked, so it must not call back into the Controller.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithStaleResponseGuard drops search responses that arrive after a newer
// search was dispatched. Without it, a slow earlier response can overwrite
// the results of a later one.
func WithStaleResponseGuard() Option {
	return func(c *Controller) { c.discardStale = true }
}

// Controller drives a combobox State from user input.
//
// All state changes are serialised behind one mutex. The debounce timer is
// single-slot: each input change cancels the pending search and schedules a
// new one. Dispatched searches are never cancelled.
type Controller struct {
	searcher     Searcher
	log          logger.Logger
	debounce     time.Duration
	discardStale bool
	onChange     func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State
	timer    *time.Timer
	inputGen uint64 // identifies the latest scheduled search
	seq      uint64 // identifies the latest dispatched search
	inflight int
	closed   bool
}

// NewController returns a Controller that searches through s.
func NewController(s Searcher, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		searcher: s,
		log:      logger.Discard(),
		debounce: DefaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
		state:    Initial(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InputChanged updates the query immediately and (re)starts the debounce timer.
func (c *Controller) InputChanged(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.setState(InputChanged(c.state, text))

	if c.timer != nil {
		c.timer.Stop()
	}
	c.inputGen++
	gen := c.inputGen
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(gen, text) })
}

// KeyPressed applies a navigation key.
func (c *Controller) KeyPressed(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setState(KeyPressed(c.state, k))
}

// Select confirms the suggestion at index i, as a click would. Out-of-range
// indexes are ignored.
func (c *Controller) Select(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.state.Applications) {
		return
	}
	c.setState(SuggestionSelected(c.state, c.state.Applications[i]))
}

// Close stops the pending debounce timer, cancels in-flight searches and
// waits for them to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.inputGen++
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// fire runs when the debounce timer for input generation gen expires.
func (c *Controller) fire(gen uint64, text string) {
	c.mu.Lock()
	if c.closed || gen != c.inputGen {
		c.mu.Unlock()
		return
	}
	if strings.TrimSpace(text) == "" {
		c.setState(SuggestionsCleared(c.state))
		c.mu.Unlock()
		return
	}

	c.seq++
	seq := c.seq
	c.inflight++
	c.wg.Add(1)
	c.setState(SearchStarted(c.state))
	c.mu.Unlock()

	defer c.wg.Done()
	apps, err := c.searcher.Search(c.ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if c.discardStale && seq != c.seq {
		c.log.DebugContext(c.ctx, "combobox: dropped stale search response", "query", text)
		if c.inflight == 0 && c.state.IsLoading {
			s := c.state
			s.IsLoading = false
			c.setState(s)
		}
		return
	}

	var next State
	if err != nil {
		c.log.ErrorContext(c.ctx, "combobox: search failed", "query", text, "error", err)
		next = SearchFailed(c.state)
	} else {
		next = ResultsReceived(c.state, apps)
	}
	next.IsLoading = c.inflight > 0
	c.setState(next)
}

// setState must be called with c.mu held.
func (c *Controller) setState(s State) {
	c.state = s
	if c.onChange != nil {
		c.onChange(s)
	}
}
