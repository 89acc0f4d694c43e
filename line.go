package keywedge

import (
	"fmt"
	"strconv"
	"strings"
)

// Adapter escape markers recognized inside a script line.
const (
	markerImmediate = "~I"
	markerDelay     = "~Z"

	commentPrefix = ';'
	terminator    = 0x0d
)

// DirectiveKind identifies the adapter escape directive carried by a line.
type DirectiveKind int

const (
	// DirectiveNone means the line carries no directive; no terminator
	// byte is sent for it.
	DirectiveNone DirectiveKind = iota
	// DirectiveImmediate (~I) requests a terminator with no settle pause.
	DirectiveImmediate
	// DirectiveDelay (~Z<n>) requests a terminator followed by a settle
	// pause of n+1 seconds.
	DirectiveDelay
)

// Directive is the derived pacing fact about a line. At most one directive
// fires per line: ~I wins over ~Z when both appear.
type Directive struct {
	Kind    DirectiveKind
	Seconds int
}

// normalizeLine strips every carriage return anywhere in the raw line and
// classifies the result as a comment iff its first character is ';'.
// Stripping is exhaustive: malformed multi-CR input still yields a clean
// line with zero CRs.
func normalizeLine(raw string) (clean string, comment bool) {
	clean = strings.ReplaceAll(raw, "\r", "")
	comment = len(clean) > 0 && clean[0] == commentPrefix
	return clean, comment
}

// scanDirective inspects a normalized line for an adapter escape directive
// and splits off the payload of ordinary characters preceding its marker.
// ~I is checked first and takes precedence regardless of what follows it.
// Otherwise everything after the first ~Z to the end of the line must parse
// as a base-10 integer; a non-numeric tail is fatal to the run. Without a
// marker the whole line is payload.
func scanDirective(clean string) (payload string, d Directive, err error) {
	if idx := strings.Index(clean, markerImmediate); idx >= 0 {
		return clean[:idx], Directive{Kind: DirectiveImmediate}, nil
	}

	idx := strings.Index(clean, markerDelay)
	if idx < 0 {
		return clean, Directive{Kind: DirectiveNone}, nil
	}

	tail := clean[idx+len(markerDelay):]
	seconds, err := strconv.Atoi(tail)
	if err != nil {
		return "", Directive{}, fmt.Errorf("%w: %s%s: %w", ErrDirectiveParse, markerDelay, tail, err)
	}

	return clean[:idx], Directive{Kind: DirectiveDelay, Seconds: seconds}, nil
}
