// ABOUTME: Error taxonomy for playback
// ABOUTME: Fatal startup kinds and transient per-unit kinds, matched with errors.Is
package media

import (
	"errors"
	"fmt"
)

// ErrAgain is returned by Decoder.Receive when the decoder needs more input
var ErrAgain = errors.New("decoder needs more input")

// Kind classifies pipeline errors
type Kind int

const (
	// Fatal: abort startup
	KindSourceOpen Kind = iota + 1
	KindStreamInfo
	KindStreamAbsent
	KindDecoderOpen

	// Transient: log and skip the unit
	KindPacketRead
	KindPacketSend
	KindFrameReceive
)

var kindNames = map[Kind]string{
	KindSourceOpen:   "source open",
	KindStreamInfo:   "stream info",
	KindStreamAbsent: "stream absent",
	KindDecoderOpen:  "decoder open",
	KindPacketRead:   "packet read",
	KindPacketSend:   "packet send",
	KindFrameReceive: "frame receive",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether errors of this kind abort startup
func (k Kind) Fatal() bool {
	return k >= KindSourceOpen && k <= KindDecoderOpen
}

// Sentinels for errors.Is
var (
	ErrSourceOpen   = &Error{Kind: KindSourceOpen}
	ErrStreamInfo   = &Error{Kind: KindStreamInfo}
	ErrStreamAbsent = &Error{Kind: KindStreamAbsent}
	ErrDecoderOpen  = &Error{Kind: KindDecoderOpen}
	ErrPacketRead   = &Error{Kind: KindPacketRead}
	ErrPacketSend   = &Error{Kind: KindPacketSend}
	ErrFrameReceive = &Error{Kind: KindFrameReceive}
)

// Error is a classified pipeline error
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Errorf builds a classified error around a formatted cause
func Errorf(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}
