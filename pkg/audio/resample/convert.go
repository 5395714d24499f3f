// ABOUTME: Frame converter for the audio output path
// ABOUTME: Maps channels, resamples and narrows decoded frames to int16
package resample

import (
	"fmt"

	"github.com/Resonate-Protocol/reel/pkg/audio"
	"github.com/Resonate-Protocol/reel/pkg/media"
)

// Converter turns decoded frames into interleaved int16 at a fixed format
type Converter struct {
	out       audio.Format
	resampler *Resampler

	mixed []int32
	rated []int32
}

// NewConverter creates a converter producing the given output format
func NewConverter(out audio.Format) *Converter {
	return &Converter{out: out}
}

// Format returns the output format
func (c *Converter) Format() audio.Format {
	return c.out
}

// Resample converts one frame
func (c *Converter) Resample(frame *media.AudioFrame) ([]int16, error) {
	if frame == nil {
		return nil, fmt.Errorf("nil frame")
	}
	if frame.Channels <= 0 || frame.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid frame format: %dHz %dch", frame.SampleRate, frame.Channels)
	}
	total := frame.SampleCount * frame.Channels
	if total > len(frame.Samples) {
		return nil, fmt.Errorf("frame claims %d samples but holds %d", total, len(frame.Samples))
	}

	c.mixed = mapChannels(c.mixed[:0], frame.Samples[:total], frame.Channels, c.out.Channels)

	samples := c.mixed
	if frame.SampleRate != c.out.SampleRate {
		if c.resampler == nil || c.resampler.InputRate() != frame.SampleRate {
			c.resampler = New(frame.SampleRate, c.out.SampleRate, c.out.Channels)
		}
		need := c.resampler.OutputSamplesNeeded(len(samples))
		if cap(c.rated) < need {
			c.rated = make([]int32, need)
		}
		n := c.resampler.Resample(samples, c.rated[:need])
		samples = c.rated[:n]
	}

	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = audio.SampleToInt16(s)
	}
	return out, nil
}

// mapChannels converts interleaved samples between channel counts. Mono is
// duplicated, downmix to mono averages, otherwise leading channels are kept
// and missing ones repeat the last input channel.
func mapChannels(dst, src []int32, in, out int) []int32 {
	if in == out {
		return append(dst, src...)
	}

	frames := len(src) / in
	for f := 0; f < frames; f++ {
		frame := src[f*in : (f+1)*in]
		if out == 1 {
			var sum int64
			for _, s := range frame {
				sum += int64(s)
			}
			dst = append(dst, int32(sum/int64(in)))
			continue
		}
		for ch := 0; ch < out; ch++ {
			if ch < in {
				dst = append(dst, frame[ch])
			} else {
				dst = append(dst, frame[in-1])
			}
		}
	}
	return dst
}
