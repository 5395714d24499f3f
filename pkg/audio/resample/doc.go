// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts decoded frames to the output rate and channel layout
// Package resample provides audio sample rate and channel conversion.
//
// Resampler does linear interpolation between sample rates. Converter wraps
// it to turn decoded media.AudioFrame values into interleaved int16 at a
// fixed output format.
//
// Example:
//
//	c := resample.NewConverter(audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16})
//	samples, err := c.Resample(frame)
package resample
