// ABOUTME: Collaborator interfaces for the playback pipeline
// ABOUTME: Demuxer, Decoder, Scaler, Resampler, Display and AudioSink contracts
package media

import (
	"context"
	"image"
)

// Demuxer yields encoded packets from one locator
type Demuxer interface {
	// Streams describes the streams this demuxer produces
	Streams() []StreamInfo

	// ReadPacket returns the next packet, or io.EOF exactly once the source
	// is exhausted. Other errors are per-packet and the caller may keep reading.
	ReadPacket(ctx context.Context) (*Packet, error)

	// Close releases the underlying source
	Close() error
}

// Decoder turns packets into frames. One Send may produce zero or more frames;
// the caller polls Receive until it returns ErrAgain. Send(nil) flushes the
// decoder, after which Receive drains the remaining frames and returns io.EOF.
type Decoder[F any] interface {
	Send(pkt *Packet) error
	Receive() (F, error)
	Close() error
}

// VideoDecoder decodes a video stream
type VideoDecoder = Decoder[*VideoFrame]

// AudioDecoder decodes an audio stream
type AudioDecoder = Decoder[*AudioFrame]

// Scaler converts a decoded picture to a fixed-size RGBA image
type Scaler interface {
	Scale(frame *VideoFrame) (*image.RGBA, error)
}

// Resampler converts decoded audio to interleaved signed 16-bit samples at a
// constant rate and channel count
type Resampler interface {
	Resample(frame *AudioFrame) ([]int16, error)
}

// Display shows pictures
type Display interface {
	Ready() bool
	Submit(img *image.RGBA) error
}

// AudioSink plays interleaved signed 16-bit samples
type AudioSink interface {
	Ready() bool
	Submit(samples []int16) error
	Close() error
}
