// ABOUTME: Audio-driven playback clock
// ABOUTME: Derives presentation time from consumed audio samples and paces video
package sync

import (
	"sync"
)

// AudioClock is the master clock. Time advances only when the presenter hands
// audio samples to the output device, so video pacing follows the rate the
// hardware actually consumes samples.
//
// Advance is called from a single goroutine; readers may call Time and Due
// from anywhere.
type AudioClock struct {
	mu              sync.RWMutex
	samplesConsumed int64
	sampleRate      int
	paused          bool
}

// NewAudioClock creates a clock for an audio stream at sampleRate Hz
func NewAudioClock(sampleRate int) *AudioClock {
	return &AudioClock{
		sampleRate: sampleRate,
	}
}

// Advance adds consumed samples (per channel). Non-positive counts are
// ignored; the clock never moves backwards. Samples handed to the device are
// always counted, even if a pause lands in between: the caller stops
// consuming while paused, which is what freezes the clock.
func (c *AudioClock) Advance(samples int) {
	if samples <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.samplesConsumed += int64(samples)
}

// Samples returns the number of samples consumed so far
func (c *AudioClock) Samples() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.samplesConsumed
}

// SampleRate returns the clock's sample rate
func (c *AudioClock) SampleRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sampleRate
}

// Time returns the audio time in seconds
func (c *AudioClock) Time() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.sampleRate <= 0 {
		return 0
	}
	return float64(c.samplesConsumed) / float64(c.sampleRate)
}

// Due reports whether a unit presented at ptsSeconds should be shown now
func (c *AudioClock) Due(ptsSeconds float64) bool {
	return c.Time() >= ptsSeconds
}

// SetPaused records whether playback is paused
func (c *AudioClock) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = paused
}

// Paused reports whether playback is paused
func (c *AudioClock) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}
