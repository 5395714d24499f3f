// ABOUTME: Tests for the decoder registry
// ABOUTME: Covers lookup, registration and error classification
package codec

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

func TestOpenVideo(t *testing.T) {
	info := media.StreamInfo{Kind: media.KindVideo, Codec: "rawvideo", Width: 4, Height: 2}
	dec, err := OpenVideo(info)
	if err != nil {
		t.Fatalf("OpenVideo failed: %v", err)
	}
	defer dec.Close()
}

func TestOpenAudio(t *testing.T) {
	for _, name := range []string{"pcm_s16le", "pcm_s24le"} {
		info := media.StreamInfo{Kind: media.KindAudio, Codec: name, SampleRate: 48000, Channels: 2}
		dec, err := OpenAudio(info)
		if err != nil {
			t.Fatalf("OpenAudio(%s) failed: %v", name, err)
		}
		dec.Close()
	}
}

func TestOpenErrorsAreDecoderOpen(t *testing.T) {
	tests := []struct {
		name string
		open func() error
	}{
		{"unknown video codec", func() error {
			_, err := OpenVideo(media.StreamInfo{Kind: media.KindVideo, Codec: "h264", Width: 4, Height: 4})
			return err
		}},
		{"unknown audio codec", func() error {
			_, err := OpenAudio(media.StreamInfo{Kind: media.KindAudio, Codec: "aac", SampleRate: 48000, Channels: 2})
			return err
		}},
		{"wrong kind", func() error {
			_, err := OpenAudio(media.StreamInfo{Kind: media.KindVideo, Codec: "pcm_s16le"})
			return err
		}},
		{"bad parameters", func() error {
			_, err := OpenVideo(media.StreamInfo{Kind: media.KindVideo, Codec: "rawvideo"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.open()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, media.ErrDecoderOpen) {
				t.Errorf("expected decoder open error, got %v", err)
			}
			if errors.Is(err, media.ErrSourceOpen) {
				t.Errorf("error should not match another kind: %v", err)
			}
		})
	}
}

func TestRegisterAudio(t *testing.T) {
	called := false
	RegisterAudio("test_codec", func(info media.StreamInfo) (media.AudioDecoder, error) {
		called = true
		return NewPCM(info, 16)
	})
	defer delete(audioDecoders, "test_codec")

	_, err := OpenAudio(media.StreamInfo{Kind: media.KindAudio, Codec: "test_codec", SampleRate: 8000, Channels: 1})
	if err != nil {
		t.Fatalf("OpenAudio failed: %v", err)
	}
	if !called {
		t.Error("registered constructor was not used")
	}
}
