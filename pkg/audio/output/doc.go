// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Sink interface with oto and malgo backends
// Package output provides audio playback sinks.
//
// Both backends queue interleaved int16 samples in a RingBuffer that the
// device drains from its own thread. Submit never blocks; callers poll
// Ready to keep roughly bufferMs of audio queued.
//
// Example:
//
//	out, err := output.New("oto")
//	err = out.Open(audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, 120)
//	if out.Ready() {
//		err = out.Submit(samples)
//	}
package output
