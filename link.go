package keywedge

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

// Link is a duplex byte-oriented serial connection to the adapter. It is
// safe for exactly one concurrent reader plus one concurrent writer; the
// echo drainer borrows the read path while a transmitter or the interactive
// loop owns the write path.
type Link struct {
	port SerialPort
	cfg  Config

	isOpen    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	// readBuf is reused by the single reader; never shared.
	readBuf [1]byte
}

// OpenLink validates the configuration and acquires the serial port. A
// failure to acquire the transport wraps ErrLinkUnavailable.
func OpenLink(cfg Config) (*Link, error) {
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	ok, err := isPortAvailable(cfg.PortName)
	if err != nil {
		return nil, fmt.Errorf("%w: listing ports: %w", ErrLinkUnavailable, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPortName, cfg.PortName)
	}

	port, err := openPort(cfg.PortName, cfg.mode())
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrLinkUnavailable, cfg.PortName, err)
	}

	l := newLink(port, cfg)

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		return nil, l.failOpen(err)
	}
	if err := port.SetDTR(cfg.DTR); err != nil {
		return nil, l.failOpen(err)
	}
	if err := port.SetRTS(cfg.RTS); err != nil {
		return nil, l.failOpen(err)
	}

	return l, nil
}

// newLink constructs a Link around an existing SerialPort. Used directly by
// tests with a mock port.
func newLink(port SerialPort, cfg Config) *Link {
	l := &Link{port: port, cfg: cfg}
	l.isOpen.Store(true)
	return l
}

// failOpen closes the half-opened port and joins any close error onto the
// original error.
func (l *Link) failOpen(err error) error {
	err = fmt.Errorf("%w: configuring %s: %w", ErrLinkUnavailable, l.cfg.PortName, err)
	if cerr := l.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

// IsOpen reports whether the link is usable.
func (l *Link) IsOpen() bool {
	return l.isOpen.Load()
}

// WriteByte writes a single byte to the adapter.
func (l *Link) WriteByte(b byte) error {
	return l.Write([]byte{b})
}

// Write writes all of p to the adapter, retrying short writes a bounded
// number of times.
func (l *Link) Write(p []byte) error {
	if !l.isOpen.Load() {
		return ErrLinkClosed
	}

	const maxRetries = 3

	written := 0
	for retries := 0; written < len(p) && retries < maxRetries; retries++ {
		n, err := l.port.Write(p[written:])
		if err != nil {
			return fmt.Errorf("writing to %s: %w", l.cfg.PortName, err)
		}
		written += n
		if n == 0 {
			break
		}
	}
	if written < len(p) {
		return fmt.Errorf("%w: %d of %d bytes", ErrPartialWrite, written, len(p))
	}
	return nil
}

// ReadByte attempts a single-byte read bounded by the configured read
// timeout. It returns (b, true, nil) on data, (0, false, nil) when the
// read timed out with nothing available, and (0, false, err) on a
// transport fault.
func (l *Link) ReadByte() (byte, bool, error) {
	if !l.isOpen.Load() {
		return 0, false, ErrLinkClosed
	}

	n, err := l.port.Read(l.readBuf[:])
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		// go.bug.st reports an expired read timeout as a zero-length read.
		return 0, false, nil
	}
	return l.readBuf[0], true, nil
}

// Close releases the port. It is safe to call multiple times.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		l.isOpen.Store(false)
		if l.port != nil {
			l.closeErr = l.port.Close()
		}
	})
	return l.closeErr
}
