package keywedge

import "errors"

var (
	// ErrLinkUnavailable is returned when the serial transport cannot be
	// acquired at open time.
	ErrLinkUnavailable = errors.New("keywedge: link unavailable")

	// ErrLinkClosed is returned by operations on a closed link.
	ErrLinkClosed = errors.New("keywedge: link closed")

	// ErrInvalidPortName is returned when the configured port is not among
	// the enumerable system ports.
	ErrInvalidPortName = errors.New("keywedge: invalid or unknown port name")

	// ErrScriptUnreadable is returned when the script source cannot be read.
	ErrScriptUnreadable = errors.New("keywedge: script source unreadable")

	// ErrDirectiveParse is returned for a malformed ~Z parameter. Fatal to
	// the run: silently skipping a malformed pacing directive risks
	// desynchronizing the adapter.
	ErrDirectiveParse = errors.New("keywedge: malformed pacing directive")

	// ErrPartialWrite is returned when the port accepts fewer bytes than
	// requested after retries.
	ErrPartialWrite = errors.New("keywedge: partial write")
)
