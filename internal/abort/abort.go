// Package abort watches the terminal for the key that interrupts a run.
package abort

import (
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

const ctrlC = 0x03

// Watcher records whether an abort was requested.
type Watcher struct {
	requested atomic.Bool
	done      chan struct{}
	restore   func()
}

// Watch starts a goroutine that reads r until it sees 'q' (or 'Q', or Ctrl-C
// from a raw terminal) and then flags the abort.
func Watch(r io.Reader) *Watcher {
	w := &Watcher{done: make(chan struct{}), restore: func() {}}
	go w.read(r)
	return w
}

// WatchStdin watches standard input. An interactive terminal is switched to
// raw mode so a single key press is enough; Stop restores it.
func WatchStdin() *Watcher {
	fd := int(os.Stdin.Fd())
	var restore func()
	if term.IsTerminal(fd) {
		if state, err := term.MakeRaw(fd); err == nil {
			restore = func() { _ = term.Restore(fd, state) }
		}
	}
	w := Watch(os.Stdin)
	if restore != nil {
		w.restore = restore
	}
	return w
}

// IsTerminal reports whether standard input is interactive.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (w *Watcher) read(r io.Reader) {
	defer close(w.done)
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			switch buf[0] {
			case 'q', 'Q', ctrlC:
				w.requested.Store(true)
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Requested reports whether the abort key was pressed.
func (w *Watcher) Requested() bool {
	return w.requested.Load()
}

// Done is closed once the watcher stops reading, either after the abort key
// or at the end of the input.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Stop restores the terminal. The reading goroutine may stay blocked on input
// until the process exits.
func (w *Watcher) Stop() {
	w.restore()
}
