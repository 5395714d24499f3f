// ABOUTME: Tests for audio resampler
// ABOUTME: Tests interpolation ratios and continuity across chunk boundaries
package resample

import (
	"testing"
)

func ramp(n, step int) []int32 {
	input := make([]int32, n)
	for i := range input {
		input[i] = int32(i * step)
	}
	return input
}

func TestResampleRatios(t *testing.T) {
	tests := []struct {
		name     string
		in, out  int
		channels int
	}{
		{"upsample 44.1k to 48k", 44100, 48000, 2},
		{"downsample 48k to 44.1k", 48000, 44100, 2},
		{"mono upsample", 44100, 48000, 1},
		{"large ratio up", 44100, 192000, 2},
		{"large ratio down", 192000, 48000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.in, tt.out, tt.channels)
			input := ramp(200, 100)

			expected := int(float64(len(input)) * float64(tt.out) / float64(tt.in))
			output := make([]int32, r.OutputSamplesNeeded(len(input)))

			n := r.Resample(input, output)
			if n == 0 {
				t.Fatal("resampler produced no output")
			}
			if n%tt.channels != 0 {
				t.Errorf("output %d is not a whole number of frames", n)
			}
			tolerance := 3 * tt.channels * (tt.out/tt.in + 1)
			if n < expected-tolerance || n > expected+tolerance {
				t.Errorf("expected ~%d samples, got %d", expected, n)
			}
		})
	}
}

func TestResampleSameRate(t *testing.T) {
	r := New(48000, 48000, 2)
	input := ramp(200, 100)
	output := make([]int32, len(input)+10)

	n := r.Resample(input, output)
	if n != len(input)-2 {
		t.Fatalf("expected %d samples (last frame held back), got %d", len(input)-2, n)
	}
	for i := 0; i < n; i++ {
		if output[i] != input[i] {
			t.Errorf("sample %d: expected %d, got %d", i, input[i], output[i])
		}
	}
}

func TestResampleCarriesAcrossChunks(t *testing.T) {
	r := New(48000, 48000, 1)
	output := make([]int32, 16)

	first := r.Resample([]int32{10, 20, 30, 40}, output)
	if first != 3 {
		t.Fatalf("first chunk: expected 3 samples, got %d", first)
	}

	n := r.Resample([]int32{50, 60, 70, 80}, output)
	if n != 4 {
		t.Fatalf("second chunk: expected 4 samples, got %d", n)
	}
	want := []int32{40, 50, 60, 70}
	for i, w := range want {
		if output[i] != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, output[i])
		}
	}
}

func TestResampleStereoChannelsStaySeparate(t *testing.T) {
	r := New(44100, 48000, 2)
	input := make([]int32, 20)
	for i := 0; i < 10; i++ {
		input[i*2] = 1000
		input[i*2+1] = -1000
	}
	output := make([]int32, 30)

	n := r.Resample(input, output)
	if n == 0 {
		t.Fatal("resampler produced no output")
	}
	for i := 0; i < n/2; i++ {
		if output[i*2] != 1000 || output[i*2+1] != -1000 {
			t.Fatalf("frame %d mixed channels: %d, %d", i, output[i*2], output[i*2+1])
		}
	}
}

func TestResampleEmptyInput(t *testing.T) {
	r := New(44100, 48000, 2)
	if n := r.Resample(nil, make([]int32, 100)); n != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", n)
	}
}

func TestResampleSmallBuffer(t *testing.T) {
	r := New(44100, 48000, 2)
	input := []int32{100, -100, 200, -200}
	output := make([]int32, 10)

	if n := r.Resample(input, output); n == 0 {
		t.Fatal("resampler produced no output from small buffer")
	}
}

func TestReset(t *testing.T) {
	r := New(48000, 48000, 1)
	output := make([]int32, 8)
	r.Resample([]int32{1, 2, 3}, output)
	r.Reset()

	n := r.Resample([]int32{7, 8, 9}, output)
	if n != 2 || output[0] != 7 {
		t.Errorf("expected fresh start after reset, got n=%d first=%d", n, output[0])
	}
}
