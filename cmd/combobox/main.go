// Command combobox is a terminal front end for the application search box.
//
// Typing updates the query and triggers a debounced search. Arrow keys move
// the highlight and Enter confirms it. ":pick <n>" selects row n as a click
// would; ":quit", Ctrl-C or Ctrl-D exit. After a selection the chosen name is
// put back on the input line.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/ghuser/appdirectory/pkg/config"
	"github.com/ghuser/appdirectory/pkg/logger"
	"github.com/ghuser/appdirectory/services/application/client"
	"github.com/ghuser/appdirectory/services/application/ui/combobox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout belongs to the rendered view.
	log := logger.NewWithWriter(cfg, os.Stderr)

	sink := &viewSink{}
	opts := []combobox.Option{
		combobox.WithDebounce(cfg.ComboboxDebounce),
		combobox.WithLogger(log),
		combobox.WithOnChange(sink.show),
	}
	if cfg.ComboboxDiscardStale {
		opts = append(opts, combobox.WithStaleResponseGuard())
	}
	term := &terminal{ctrl: combobox.NewController(client.New(cfg.APIBaseURL), opts...)}
	defer term.ctrl.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "search> ",
		HistoryLimit: -1,
		Listener: readline.FuncListener(func(line []rune, _ int, key rune) ([]rune, int, bool) {
			term.onKey(line, key)
			return nil, 0, false
		}),
	})
	if err != nil {
		log.Error("failed to open terminal", "error", err)
		os.Exit(1)
	}
	defer rl.Close() //nolint:errcheck
	sink.set(rl.Stdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Error("read input", "error", err)
			return
		}
		refill, quit := term.onLine(line)
		if quit {
			return
		}
		if refill != "" {
			rl.WriteStdin([]byte(refill))
		}
	}
}

// viewSink renders state changes once an output is attached; earlier
// changes are dropped.
type viewSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *viewSink) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

func (s *viewSink) show(st combobox.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w != nil {
		fmt.Fprint(s.w, combobox.Render(st))
	}
}

// terminal maps line-editor events onto the controller.
type terminal struct {
	ctrl *combobox.Controller

	mu sync.Mutex
	// echo is text written back to the input line; its keystrokes are
	// not user input.
	echo string
}

// onKey handles every keystroke while a line is being edited.
func (t *terminal) onKey(line []rune, key rune) {
	switch key {
	case readline.CharNext:
		t.ctrl.KeyPressed(combobox.KeyArrowDown)
		return
	case readline.CharPrev:
		t.ctrl.KeyPressed(combobox.KeyArrowUp)
		return
	case readline.CharEnter, readline.CharCtrlJ:
		return
	}

	text := string(line)
	if t.echoed(text) {
		return
	}
	if strings.HasPrefix(text, ":") {
		return
	}
	if text != t.ctrl.State().Query {
		t.ctrl.InputChanged(text)
	}
}

// echoed reports whether text is still part of a pending refill.
func (t *terminal) echoed(text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.echo == "" {
		return false
	}
	if text != t.echo && strings.HasPrefix(t.echo, text) {
		return true
	}
	t.echo = ""
	return text == t.ctrl.State().Query
}

// onLine handles a submitted line. It returns the text to put back on the
// input line, if any, and whether to exit.
func (t *terminal) onLine(line string) (refill string, quit bool) {
	cmd := strings.TrimSpace(line)
	if cmd == ":quit" {
		return "", true
	}

	before := t.ctrl.State()
	if strings.HasPrefix(cmd, ":pick ") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(cmd, ":pick ")))
		if err == nil {
			t.ctrl.Select(n - 1)
		}
	} else {
		t.ctrl.KeyPressed(combobox.KeyEnter)
	}

	after := t.ctrl.State()
	if len(before.Applications) == 0 || after.SelectedApp == nil || after.Applications != nil {
		return "", false
	}
	t.mu.Lock()
	t.echo = after.Query
	t.mu.Unlock()
	return after.Query, false
}
