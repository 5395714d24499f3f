// ABOUTME: Tests for audio file opening
// ABOUTME: Covers extension detection, open errors and FLAC frame packing
package source

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mewkiz/flac/frame"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"/music/Album/track.FLAC", true},
		{"movie.mkv", false},
		{"https://example.com/a.mp3", false},
	}
	for _, tt := range tests {
		if got := IsAudioFile(tt.path); got != tt.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOpenAudioFileErrors(t *testing.T) {
	for _, path := range []string{"/nonexistent/song.mp3", "/nonexistent/song.flac", "notes.txt"} {
		_, err := OpenAudioFile(path, 1024)
		if !errors.Is(err, media.ErrSourceOpen) {
			t.Errorf("%s: expected source open error, got %v", path, err)
		}
	}
}

func TestEncodeFrame16Bit(t *testing.T) {
	f := &frame.Frame{
		Header: frame.Header{BlockSize: 2},
		Subframes: []*frame.Subframe{
			{Samples: []int32{1, -1}},
			{Samples: []int32{300, -300}},
		},
	}

	data := encodeFrame(f, 2, 16)
	if len(data) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(data))
	}
	want := []int16{1, 300, -1, -300}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(data[i*2:])); got != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestEncodeFrame20Bit(t *testing.T) {
	f := &frame.Frame{
		Header:    frame.Header{BlockSize: 1},
		Subframes: []*frame.Subframe{{Samples: []int32{-1}}},
	}

	data := encodeFrame(f, 1, 20)
	// -1 at 20 bits is -16 at 24 bits
	if len(data) != 3 || data[0] != 0xF0 || data[1] != 0xFF || data[2] != 0xFF {
		t.Errorf("unexpected 24-bit encoding: % x", data)
	}
}
