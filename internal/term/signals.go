package term

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// signalWatcher translates process signals into terminal state changes.
// It only flips flags, wakes the poller or restores and exits.
type signalWatcher struct {
	ch   chan os.Signal
	done chan struct{}
	quit chan struct{}
}

func watchSignals(t *Terminal) *signalWatcher {
	w := &signalWatcher{
		ch:   make(chan os.Signal, 4),
		done: make(chan struct{}),
		quit: make(chan struct{}),
	}
	signal.Notify(w.ch,
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP,
		syscall.SIGTSTP, syscall.SIGCONT, syscall.SIGWINCH)
	go w.loop(t)
	return w
}

func (w *signalWatcher) loop(t *Terminal) {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case sig := <-w.ch:
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP:
				t.Restore()
				os.Exit(ExitCode(sig))
			case syscall.SIGTSTP:
				t.Restore()
				t.reinit.Store(true)
				unix.Kill(unix.Getpid(), unix.SIGSTOP)
			case syscall.SIGCONT:
				t.reinit.Store(true)
				t.Wake()
			case syscall.SIGWINCH:
				t.resized.Store(true)
				t.Wake()
			}
		}
	}
}

func (w *signalWatcher) stop() {
	signal.Stop(w.ch)
	close(w.quit)
	<-w.done
}

// ExitCode is the conventional status for a process ended by sig.
func ExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
