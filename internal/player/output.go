// ABOUTME: Software volume control for the audio path
// ABOUTME: Applies volume and mute to int16 samples before they reach the sink
package player

import (
	"log"
	"math"
	"sync"
)

// Volume holds the user's volume and mute settings. Safe for concurrent use.
type Volume struct {
	mu     sync.Mutex
	volume int
	muted  bool
}

// NewVolume creates a volume control at the given level (0-100)
func NewVolume(volume int) *Volume {
	v := &Volume{}
	v.volume = clampVolume(volume)
	return v
}

// SetVolume sets the volume (0-100)
func (v *Volume) SetVolume(volume int) {
	v.mu.Lock()
	v.volume = clampVolume(volume)
	volume = v.volume
	v.mu.Unlock()
	log.Printf("Volume set to %d", volume)
}

// Adjust changes the volume by delta and returns the new level
func (v *Volume) Adjust(delta int) int {
	v.mu.Lock()
	v.volume = clampVolume(v.volume + delta)
	volume := v.volume
	v.mu.Unlock()
	return volume
}

// ToggleMute flips the mute state and returns it
func (v *Volume) ToggleMute() bool {
	v.mu.Lock()
	v.muted = !v.muted
	muted := v.muted
	v.mu.Unlock()
	log.Printf("Muted: %v", muted)
	return muted
}

// GetVolume returns current volume
func (v *Volume) GetVolume() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

// IsMuted returns mute state
func (v *Volume) IsMuted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.muted
}

// Apply scales samples in place
func (v *Volume) Apply(samples []int16) {
	v.mu.Lock()
	volume, muted := v.volume, v.muted
	v.mu.Unlock()

	if volume == 100 && !muted {
		return
	}
	applyVolume(samples, volume, muted)
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}

// applyVolume applies volume and mute to samples with clipping protection
func applyVolume(samples []int16, volume int, muted bool) {
	multiplier := getVolumeMultiplier(volume, muted)

	for i, sample := range samples {
		scaled := float64(sample) * multiplier
		if scaled > math.MaxInt16 {
			scaled = math.MaxInt16
		} else if scaled < math.MinInt16 {
			scaled = math.MinInt16
		}
		samples[i] = int16(scaled)
	}
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
