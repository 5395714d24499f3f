// ABOUTME: Synthetic test source with colour bars and a sine tone
// ABOUTME: Plays without ffmpeg; locators look like "testsrc" or "testsrc:5s"
package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// PatternPrefix is the locator scheme of the test source
const PatternPrefix = "testsrc"

// defaultPatternDuration applies when the locator has no duration
const defaultPatternDuration = 10 * time.Second

// Colour bars, left to right
var bars = [...][3]byte{
	{192, 192, 192}, // grey
	{192, 192, 0},   // yellow
	{0, 192, 192},   // cyan
	{0, 192, 0},     // green
	{192, 0, 192},   // magenta
	{192, 0, 0},     // red
	{0, 0, 192},     // blue
}

// PatternOptions sizes the generated streams
type PatternOptions struct {
	Width        int
	Height       int
	FPS          int
	SampleRate   int
	Channels     int
	ChunkSamples int
	Duration     time.Duration
	Frequency    float64 // tone in Hz
}

// TestPattern generates rgb24 colour bars with a sweeping line and a 16-bit
// sine tone, interleaved in presentation order
type TestPattern struct {
	video     media.StreamInfo
	audio     media.StreamInfo
	frequency float64
	chunk     int

	totalFrames  int64
	totalSamples int64
	frame        int64
	sample       int64
}

// IsPattern reports whether locator names the test source
func IsPattern(locator string) bool {
	return locator == PatternPrefix || strings.HasPrefix(locator, PatternPrefix+":")
}

// ParsePattern reads the duration from a "testsrc[:duration]" locator
func ParsePattern(locator string) (time.Duration, error) {
	if !IsPattern(locator) {
		return 0, fmt.Errorf("not a test source locator: %q", locator)
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(locator, PatternPrefix), ":")
	if rest == "" {
		return defaultPatternDuration, nil
	}
	d, err := time.ParseDuration(rest)
	if err != nil {
		return 0, fmt.Errorf("test source duration: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("test source duration must be positive, got %v", d)
	}
	return d, nil
}

// NewTestPattern creates a test source. Zero options take small defaults.
func NewTestPattern(opts PatternOptions) *TestPattern {
	if opts.Width <= 0 {
		opts.Width = 160
	}
	if opts.Height <= 0 {
		opts.Height = opts.Width * 9 / 16
	}
	if opts.FPS <= 0 {
		opts.FPS = 25
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 48000
	}
	if opts.Channels <= 0 {
		opts.Channels = 2
	}
	if opts.ChunkSamples <= 0 {
		opts.ChunkSamples = 1024
	}
	if opts.Duration <= 0 {
		opts.Duration = defaultPatternDuration
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 440.0 // A4 note
	}

	seconds := opts.Duration.Seconds()
	return &TestPattern{
		video: media.StreamInfo{
			Index:     media.VideoStream,
			Kind:      media.KindVideo,
			Codec:     "rawvideo",
			TimeBase:  media.Rational{Num: 1, Den: opts.FPS},
			Width:     opts.Width,
			Height:    opts.Height,
			FrameRate: media.Rational{Num: opts.FPS, Den: 1},
		},
		audio: media.StreamInfo{
			Index:      media.AudioStream,
			Kind:       media.KindAudio,
			Codec:      "pcm_s16le",
			TimeBase:   media.Rational{Num: 1, Den: opts.SampleRate},
			SampleRate: opts.SampleRate,
			Channels:   opts.Channels,
			FrameSize:  opts.ChunkSamples,
		},
		frequency:    opts.Frequency,
		chunk:        opts.ChunkSamples,
		totalFrames:  int64(math.Round(seconds * float64(opts.FPS))),
		totalSamples: int64(math.Round(seconds * float64(opts.SampleRate))),
	}
}

// Streams returns the video and audio streams
func (s *TestPattern) Streams() []media.StreamInfo {
	return []media.StreamInfo{s.video, s.audio}
}

// ReadPacket returns whichever stream is behind in time
func (s *TestPattern) ReadPacket(ctx context.Context) (*media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	videoLeft := s.frame < s.totalFrames
	audioLeft := s.sample < s.totalSamples
	switch {
	case !videoLeft && !audioLeft:
		return nil, io.EOF
	case !audioLeft:
		return s.nextVideo(), nil
	case !videoLeft:
		return s.nextAudio(), nil
	}

	if s.video.TimeBase.Seconds(s.frame) <= s.audio.TimeBase.Seconds(s.sample) {
		return s.nextVideo(), nil
	}
	return s.nextAudio(), nil
}

func (s *TestPattern) nextVideo() *media.Packet {
	w, h := s.video.Width, s.video.Height
	pix := make([]byte, w*h*3)
	line := int(s.frame*4) % w

	for x := 0; x < w; x++ {
		c := bars[x*len(bars)/w]
		if x == line {
			c = [3]byte{255, 255, 255}
		}
		for y := 0; y < h; y++ {
			copy(pix[(y*w+x)*3:], c[:])
		}
	}

	pkt := &media.Packet{StreamIndex: s.video.Index, PTS: s.frame, Data: pix}
	s.frame++
	return pkt
}

func (s *TestPattern) nextAudio() *media.Packet {
	n := int64(s.chunk)
	if left := s.totalSamples - s.sample; left < n {
		n = left
	}
	channels := s.audio.Channels
	data := make([]byte, int(n)*channels*2)

	rate := float64(s.audio.SampleRate)
	for i := int64(0); i < n; i++ {
		t := float64(s.sample+i) / rate
		// 50% volume
		v := int16(math.Sin(2*math.Pi*s.frequency*t) * 32767.0 * 0.5)
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(data[(int(i)*channels+ch)*2:], uint16(v))
		}
	}

	pkt := &media.Packet{StreamIndex: s.audio.Index, PTS: s.sample, Data: data}
	s.sample += n
	return pkt
}

// Close is a no-op
func (s *TestPattern) Close() error {
	return nil
}
