// ABOUTME: Audio output interface definition
// ABOUTME: Common sink contract and the buffered stream shared by the backends
package output

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/Resonate-Protocol/reel/pkg/audio"
	"github.com/Resonate-Protocol/reel/pkg/media"
)

// Sink is an audio device fed with interleaved int16 samples
type Sink interface {
	media.AudioSink

	// Open initializes the device. bufferMs is the queued audio below which
	// the sink reports Ready.
	Open(format audio.Format, bufferMs int) error

	// Reserve sizes the sink to accept frames of up to samplesPerChannel
	Reserve(samplesPerChannel int)

	// SetPaused makes the device play silence without consuming samples
	SetPaused(paused bool)

	// Buffered returns the samples queued but not yet played
	Buffered() int
}

// New creates a sink for the named backend
func New(backend string) (Sink, error) {
	switch backend {
	case "oto", "":
		return NewOto(), nil
	case "malgo":
		return NewMalgo(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q (supported: oto, malgo)", backend)
	}
}

// stream buffers submitted samples until the device callback pulls them
type stream struct {
	ring    *RingBuffer
	format  audio.Format
	target  int
	paused  atomic.Bool
	scratch []int16
}

func newStream(format audio.Format, bufferMs int) *stream {
	target := format.SamplesFor(bufferMs)
	if target < format.Channels {
		target = format.Channels
	}
	return &stream{
		ring:   NewRingBuffer(target * 2),
		format: format,
		target: target,
	}
}

// Ready reports whether less than the target amount of audio is queued
func (s *stream) Ready() bool {
	if s == nil {
		return false
	}
	return s.ring.Available() < s.target
}

// Submit queues samples. It never blocks; the buffer grows if a frame
// larger than the reservation arrives.
func (s *stream) Submit(samples []int16) error {
	if s == nil {
		return fmt.Errorf("output not initialized")
	}
	if len(samples)%s.format.Channels != 0 {
		return fmt.Errorf("%d samples is not a whole number of %d-channel frames", len(samples), s.format.Channels)
	}
	if free := s.ring.Free(); free < len(samples) {
		s.ring.Grow(s.ring.Cap() + len(samples) - free)
	}
	s.ring.Write(samples)
	return nil
}

func (s *stream) Reserve(samplesPerChannel int) {
	if s == nil || samplesPerChannel <= 0 {
		return
	}
	s.ring.Grow(s.target + 2*samplesPerChannel*s.format.Channels)
}

func (s *stream) Buffered() int {
	if s == nil {
		return 0
	}
	return s.ring.Available()
}

func (s *stream) SetPaused(paused bool) {
	if s == nil {
		return
	}
	s.paused.Store(paused)
}

// fill copies queued samples into out, or silence while paused
func (s *stream) fill(out []int16) int {
	if s.paused.Load() {
		clear(out)
		return 0
	}
	return s.ring.Read(out)
}

// Read implements io.Reader over the queue as little-endian int16 bytes.
// Underruns read as silence so the device never stalls.
func (s *stream) Read(p []byte) (int, error) {
	n := len(p) / 2
	if cap(s.scratch) < n {
		s.scratch = make([]int16, n)
	}
	samples := s.scratch[:n]
	s.fill(samples)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(sample))
	}
	return n * 2, nil
}
