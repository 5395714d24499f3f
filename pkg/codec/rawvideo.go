// ABOUTME: Raw video decoder
// ABOUTME: Wraps packed RGB24 packets as video frames without copying
package codec

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// RawVideoDecoder turns each packet holding one packed picture into a frame.
// The packet's buffer becomes the frame's pixel buffer.
type RawVideoDecoder struct {
	width  int
	height int
	format media.PixelFormat

	frame   *media.VideoFrame
	flushed bool
}

// NewRawVideo creates a raw rgb24 video decoder
func NewRawVideo(info media.StreamInfo) (*RawVideoDecoder, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", info.Width, info.Height)
	}
	return &RawVideoDecoder{
		width:  info.Width,
		height: info.Height,
		format: media.PixelRGB24,
	}, nil
}

// FrameBytes returns the packet size this decoder expects
func (d *RawVideoDecoder) FrameBytes() int {
	return d.width * d.height * d.format.BytesPerPixel()
}

// Send decodes one packet. A nil packet flushes the decoder.
func (d *RawVideoDecoder) Send(pkt *media.Packet) error {
	if pkt == nil || pkt.EOS {
		d.flushed = true
		return nil
	}
	if d.flushed {
		return fmt.Errorf("packet sent after flush")
	}
	if d.frame != nil {
		return media.ErrAgain
	}
	if len(pkt.Data) != d.FrameBytes() {
		return fmt.Errorf("packet of %d bytes, expected %d for %dx%d %v",
			len(pkt.Data), d.FrameBytes(), d.width, d.height, d.format)
	}

	d.frame = &media.VideoFrame{
		PTS:    pkt.PTS,
		Width:  d.width,
		Height: d.height,
		Stride: d.width * d.format.BytesPerPixel(),
		Format: d.format,
		Pix:    pkt.Data,
	}
	pkt.Data = nil
	return nil
}

// Receive returns the decoded frame, if any
func (d *RawVideoDecoder) Receive() (*media.VideoFrame, error) {
	if d.frame != nil {
		frame := d.frame
		d.frame = nil
		return frame, nil
	}
	if d.flushed {
		return nil, io.EOF
	}
	return nil, media.ErrAgain
}

// Close releases resources
func (d *RawVideoDecoder) Close() error {
	d.frame = nil
	return nil
}
