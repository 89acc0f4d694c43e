package keywedge

import (
	"time"

	"go.bug.st/serial"
)

// SerialPort abstracts the subset of go.bug.st/serial.Port used by this
// package.
type SerialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(d time.Duration) error
	SetDTR(bool) error
	SetRTS(bool) error
}

// bugstPort wraps the concrete serial.Port to satisfy SerialPort.
type bugstPort struct {
	serial.Port
}

// allow tests to override external dependencies
var (
	openPort = func(name string, mode *serial.Mode) (SerialPort, error) {
		p, err := serial.Open(name, mode)
		if err != nil {
			return nil, err
		}
		return &bugstPort{Port: p}, nil
	}
	getPortsList = serial.GetPortsList
)
