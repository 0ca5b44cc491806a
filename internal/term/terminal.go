// Package term drives the raw terminal: mode switching, size queries,
// bounded input waits and the signals that affect the screen.
package term

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("not a terminal")

var (
	autoWrapOff = []byte("\x1b[?7l")
	autoWrapOn  = []byte("\x1b[?7h")
	sgrReset    = []byte("\x1b[0m")
)

// Terminal owns stdin and stdout while the rain runs.
type Terminal struct {
	in, out     *os.File
	inFd, outFd int
	output      *termenv.Output

	mu    sync.Mutex
	state *term.State
	raw   bool

	wakeR, wakeW *os.File
	buf          []byte

	resized atomic.Bool
	reinit  atomic.Bool

	signals *signalWatcher
	closed  atomic.Bool
}

// IsTerminal reports whether both stdin and stdout are terminals.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// Open switches the terminal to raw mode on the alternate screen and starts
// watching signals.
func Open() (*Terminal, error) {
	if !IsTerminal() {
		return nil, fmt.Errorf("failed to open terminal: %w", ErrNotTerminal)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create wake pipe: %w", err)
	}
	if err := unix.SetNonblock(int(w.Fd()), true); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("failed to configure wake pipe: %w", err)
	}

	t := &Terminal{
		in:     os.Stdin,
		out:    os.Stdout,
		inFd:   int(os.Stdin.Fd()),
		outFd:  int(os.Stdout.Fd()),
		output: termenv.NewOutput(os.Stdout),
		wakeR:  r,
		wakeW:  w,
		buf:    make([]byte, 256),
	}
	if err := t.setup(); err != nil {
		t.closePipes()
		return nil, err
	}
	t.signals = watchSignals(t)
	return t, nil
}

func (t *Terminal) setup() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, err := term.MakeRaw(t.inFd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.state = state
	t.raw = true

	t.output.AltScreen()
	t.output.HideCursor()
	t.out.Write(autoWrapOff)
	t.output.ClearScreen()
	return nil
}

// Restore leaves raw mode and the alternate screen. It is safe to call more
// than once and from signal handlers.
func (t *Terminal) Restore() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.raw {
		return
	}
	t.out.Write(sgrReset)
	t.out.Write(autoWrapOn)
	t.output.ShowCursor()
	t.output.ExitAltScreen()
	if t.state != nil {
		term.Restore(t.inFd, t.state)
	}
	t.raw = false
}

// Reinit restores and sets the terminal up again, used after the process
// was stopped and continued.
func (t *Terminal) Reinit() error {
	t.Restore()
	if err := t.setup(); err != nil {
		return fmt.Errorf("failed to reinit terminal: %w", err)
	}
	t.resized.Store(true)
	return nil
}

// Suspend restores the terminal and stops the process. The terminal is
// flagged for reinit once the process continues.
func (t *Terminal) Suspend() {
	t.Restore()
	t.reinit.Store(true)
	unix.Kill(unix.Getpid(), unix.SIGSTOP)
}

// Close stops signal watching and restores the terminal.
func (t *Terminal) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if t.signals != nil {
		t.signals.stop()
	}
	t.Restore()
	t.closePipes()
	return nil
}

func (t *Terminal) closePipes() {
	t.wakeR.Close()
	t.wakeW.Close()
}

// Writer returns the terminal output. Writes hold the same lock as Restore
// and are dropped while the terminal is not in raw mode, so a frame never
// lands on the restored screen.
func (t *Terminal) Writer() io.Writer { return screenWriter{t} }

type screenWriter struct{ t *Terminal }

func (w screenWriter) Write(p []byte) (int, error) {
	w.t.mu.Lock()
	defer w.t.mu.Unlock()
	if !w.t.raw {
		return len(p), nil
	}
	return w.t.out.Write(p)
}

// Size returns the grid size in cells.
func (t *Terminal) Size() (cols, lines int, err error) {
	ws, err := unix.IoctlGetWinsize(t.outFd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get terminal size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

// Resized reports and clears a pending resize.
func (t *Terminal) Resized() bool { return t.resized.Swap(false) }

// NeedsReinit reports and clears a pending reinit.
func (t *Terminal) NeedsReinit() bool { return t.reinit.Swap(false) }

// Wake interrupts a blocked Poll.
func (t *Terminal) Wake() {
	t.wakeW.Write([]byte{0})
}

// Poll waits up to timeout for input and returns the decoded keys. A zero
// timeout only drains what is already buffered. Signals and Wake end the
// wait early with no events.
func (t *Terminal) Poll(timeout time.Duration) ([]Event, error) {
	ms := int(timeout.Milliseconds())
	if timeout > 0 && ms == 0 {
		ms = 1
	}
	fds := []unix.PollFd{
		{Fd: int32(t.inFd), Events: unix.POLLIN},
		{Fd: int32(t.wakeR.Fd()), Events: unix.POLLIN},
	}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to poll input: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	if fds[1].Revents&unix.POLLIN != 0 {
		var drain [64]byte
		unix.Read(int(t.wakeR.Fd()), drain[:])
	}
	if fds[0].Revents&unix.POLLIN == 0 {
		return nil, nil
	}

	rn, err := unix.Read(t.inFd, t.buf)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return Decode(t.buf[:rn]), nil
}
