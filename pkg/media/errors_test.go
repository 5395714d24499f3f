// ABOUTME: Tests for the playback error taxonomy
// ABOUTME: Checks errors.Is matching by kind, wrapping and messages
package media

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := Errorf(KindSourceOpen, "clip.mp4", "no such file")

	if !errors.Is(err, ErrSourceOpen) {
		t.Error("expected ErrSourceOpen to match")
	}
	if errors.Is(err, ErrStreamAbsent) {
		t.Error("did not expect ErrStreamAbsent to match")
	}

	// Still matches through further wrapping
	outer := fmt.Errorf("startup: %w", err)
	if !errors.Is(outer, ErrSourceOpen) {
		t.Error("expected match through fmt wrapping")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(KindPacketRead, "read", nil) != nil {
		t.Error("expected nil for nil error")
	}

	err := Wrap(KindPacketRead, "read", io.ErrUnexpectedEOF)
	if !errors.Is(err, ErrPacketRead) {
		t.Error("expected ErrPacketRead to match")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected cause to stay reachable")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Errorf(KindDecoderOpen, "h264", "unknown codec"), "decoder open h264: unknown codec"},
		{Wrap(KindPacketSend, "", io.EOF), "packet send: EOF"},
		{ErrFrameReceive, "frame receive"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestKindFatal(t *testing.T) {
	fatal := []Kind{KindSourceOpen, KindStreamInfo, KindStreamAbsent, KindDecoderOpen}
	transient := []Kind{KindPacketRead, KindPacketSend, KindFrameReceive}

	for _, k := range fatal {
		if !k.Fatal() {
			t.Errorf("%v should be fatal", k)
		}
	}
	for _, k := range transient {
		if k.Fatal() {
			t.Errorf("%v should be transient", k)
		}
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("unexpected unknown kind name %q", Kind(99).String())
	}
}
