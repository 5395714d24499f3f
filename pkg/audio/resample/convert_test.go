// ABOUTME: Tests for audio conversion to the sink format
// ABOUTME: Covers channel mapping, rate conversion and bad frames
package resample

import (
	"testing"

	"github.com/Resonate-Protocol/reel/pkg/audio"
	"github.com/Resonate-Protocol/reel/pkg/media"
)

var stereo48k = audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}

func TestConverterPassthrough(t *testing.T) {
	c := NewConverter(stereo48k)
	frame := &media.AudioFrame{
		SampleRate:  48000,
		Channels:    2,
		SampleCount: 2,
		Samples:     []int32{1 << 8, -1 << 8, 1000 << 8, -1000 << 8},
	}

	out, err := c.Resample(frame)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	want := []int16{1, -1, 1000, -1000}
	if len(out) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], out[i])
		}
	}
}

func TestConverterMonoToStereo(t *testing.T) {
	c := NewConverter(stereo48k)
	frame := &media.AudioFrame{
		SampleRate:  48000,
		Channels:    1,
		SampleCount: 3,
		Samples:     []int32{100 << 8, 200 << 8, 300 << 8},
	}

	out, err := c.Resample(frame)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	want := []int16{100, 100, 200, 200, 300, 300}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], out[i])
		}
	}
}

func TestMapChannels(t *testing.T) {
	tests := []struct {
		name    string
		src     []int32
		in, out int
		want    []int32
	}{
		{"stereo to mono averages", []int32{10, 30, -4, 4}, 2, 1, []int32{20, 0}},
		{"5.1 to stereo keeps front pair", []int32{1, 2, 3, 4, 5, 6}, 6, 2, []int32{1, 2}},
		{"stereo to 4ch repeats last", []int32{1, 2}, 2, 4, []int32{1, 2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapChannels(nil, tt.src, tt.in, tt.out)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestConverterResamplesRate(t *testing.T) {
	c := NewConverter(stereo48k)
	frame := &media.AudioFrame{
		SampleRate:  24000,
		Channels:    2,
		SampleCount: 100,
		Samples:     make([]int32, 200),
	}

	out, err := c.Resample(frame)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	// 2x upsampling, minus the held-back edge frame
	if len(out) < 380 || len(out) > 400 {
		t.Errorf("expected ~400 samples, got %d", len(out))
	}
}

func TestConverterRejectsBadFrames(t *testing.T) {
	c := NewConverter(stereo48k)
	bad := []*media.AudioFrame{
		nil,
		{SampleRate: 0, Channels: 2},
		{SampleRate: 48000, Channels: 2, SampleCount: 4, Samples: make([]int32, 4)},
	}
	for i, frame := range bad {
		if _, err := c.Resample(frame); err == nil {
			t.Errorf("frame %d: expected error", i)
		}
	}
}
