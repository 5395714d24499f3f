// ABOUTME: Media type definitions
// ABOUTME: Defines time bases, stream descriptors, packets and decoded frames
package media

import "fmt"

// Canonical stream indices used once a source has been opened. Demuxers that
// carry a single stream may use any index; the reader re-tags them.
const (
	VideoStream = 0
	AudioStream = 1
)

// Rational is a time base: one tick lasts Num/Den seconds
type Rational struct {
	Num int
	Den int
}

// Seconds converts a tick count in this time base to seconds
func (r Rational) Seconds(pts int64) float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(pts) * float64(r.Num) / float64(r.Den)
}

// Valid reports whether the time base can be used for conversion
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// StreamKind distinguishes audio and video streams
type StreamKind int

const (
	KindVideo StreamKind = iota
	KindAudio
)

func (k StreamKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StreamInfo describes one stream of a source
type StreamInfo struct {
	Index    int
	Kind     StreamKind
	Codec    string
	TimeBase Rational

	// Video
	Width     int
	Height    int
	FrameRate Rational

	// Audio
	SampleRate int
	Channels   int
	FrameSize  int // samples per channel per packet, 0 if the codec does not say
}

// PixelFormat is the layout of a VideoFrame's pixel buffer
type PixelFormat int

const (
	PixelRGB24 PixelFormat = iota
	PixelRGBA
)

// BytesPerPixel returns the packed size of one pixel
func (f PixelFormat) BytesPerPixel() int {
	if f == PixelRGBA {
		return 4
	}
	return 3
}

func (f PixelFormat) String() string {
	switch f {
	case PixelRGB24:
		return "rgb24"
	case PixelRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("pixfmt(%d)", int(f))
	}
}

// Packet is an encoded unit. EOS packets carry no data and mark the end of
// their stream.
type Packet struct {
	StreamIndex int
	PTS         int64
	Data        []byte
	EOS         bool
}

// VideoFrame is a decoded picture
type VideoFrame struct {
	PTS    int64
	Width  int
	Height int
	Stride int
	Format PixelFormat
	Pix    []byte
}

// AudioFrame is decoded PCM audio
type AudioFrame struct {
	PTS         int64
	SampleRate  int
	Channels    int
	SampleCount int     // samples per channel
	Samples     []int32 // interleaved, 24-bit range
}

// Duration returns the frame length in seconds
func (f *AudioFrame) Duration() float64 {
	if f.SampleRate == 0 {
		return 0
	}
	return float64(f.SampleCount) / float64(f.SampleRate)
}
