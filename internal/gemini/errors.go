package gemini

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed call so callers can render a specific message.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransientServer
	KindTransientNetwork
	KindTerminalClient
	KindContentBlocked
	KindMalformedResponse
	KindTruncated
	KindRetriesExhausted
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindTransientServer:   "transient_server",
	KindTransientNetwork:  "transient_network",
	KindTerminalClient:    "terminal_client",
	KindContentBlocked:    "content_blocked",
	KindMalformedResponse: "malformed_response",
	KindTruncated:         "truncated",
	KindRetriesExhausted:  "retries_exhausted",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error lets a Kind act as a sentinel: errors.Is(err, gemini.ErrContentBlocked).
func (k Kind) Error() string { return "gemini: " + k.String() }

var (
	ErrTransientServer   error = KindTransientServer
	ErrTransientNetwork  error = KindTransientNetwork
	ErrTerminalClient    error = KindTerminalClient
	ErrContentBlocked    error = KindContentBlocked
	ErrMalformedResponse error = KindMalformedResponse
	ErrTruncated         error = KindTruncated
	ErrRetriesExhausted  error = KindRetriesExhausted
)

// Error is returned by every Client operation that fails for a reason the
// client understands.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("gemini")
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a transient server or network failure.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTransientServer, KindTransientNetwork:
		return true
	}
	return false
}
