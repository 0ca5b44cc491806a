package term

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// EmergencyReset puts the terminal back into a usable state without any
// saved state, for use after a panic.
func EmergencyReset(w io.Writer) {
	w.Write(sgrReset)
	w.Write(autoWrapOn)
	w.Write([]byte("\x1b[?25h\x1b[?1049l"))
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return
	}
	defer tty.Close()
	fd := int(tty.Fd())
	if tio, err := unix.IoctlGetTermios(fd, unix.TCGETS); err == nil {
		tio.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
		tio.Iflag |= unix.ICRNL
		tio.Oflag |= unix.OPOST
		unix.IoctlSetTermios(fd, unix.TCSETS, tio)
	}
}
