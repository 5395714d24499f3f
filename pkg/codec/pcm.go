// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 16-bit and 24-bit little-endian PCM packets to int32 frames
package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/reel/pkg/audio"
	"github.com/Resonate-Protocol/reel/pkg/media"
)

// PCMDecoder decodes interleaved PCM packets. Each packet becomes one frame.
type PCMDecoder struct {
	bitDepth   int
	sampleRate int
	channels   int

	ready   []*media.AudioFrame
	flushed bool
}

// NewPCM creates a PCM decoder for the given stream
func NewPCM(info media.StreamInfo, bitDepth int) (*PCMDecoder, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
	if info.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", info.SampleRate)
	}
	if info.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", info.Channels)
	}

	return &PCMDecoder{
		bitDepth:   bitDepth,
		sampleRate: info.SampleRate,
		channels:   info.Channels,
	}, nil
}

// Send decodes one packet. A nil packet flushes the decoder.
func (d *PCMDecoder) Send(pkt *media.Packet) error {
	if pkt == nil || pkt.EOS {
		d.flushed = true
		return nil
	}
	if d.flushed {
		return fmt.Errorf("packet sent after flush")
	}

	bytesPerSample := d.bitDepth / 8
	frameBytes := bytesPerSample * d.channels
	if len(pkt.Data) == 0 || len(pkt.Data)%frameBytes != 0 {
		return fmt.Errorf("packet of %d bytes is not a whole number of %d-byte sample frames",
			len(pkt.Data), frameBytes)
	}

	numSamples := len(pkt.Data) / bytesPerSample
	samples := make([]int32, numSamples)
	if d.bitDepth == 24 {
		for i := 0; i < numSamples; i++ {
			b := [3]byte{pkt.Data[i*3], pkt.Data[i*3+1], pkt.Data[i*3+2]}
			samples[i] = audio.SampleFrom24Bit(b)
		}
	} else {
		for i := 0; i < numSamples; i++ {
			sample16 := int16(binary.LittleEndian.Uint16(pkt.Data[i*2:]))
			samples[i] = audio.SampleFromInt16(sample16)
		}
	}

	d.ready = append(d.ready, &media.AudioFrame{
		PTS:         pkt.PTS,
		SampleRate:  d.sampleRate,
		Channels:    d.channels,
		SampleCount: numSamples / d.channels,
		Samples:     samples,
	})
	return nil
}

// Receive returns the next decoded frame
func (d *PCMDecoder) Receive() (*media.AudioFrame, error) {
	if len(d.ready) > 0 {
		frame := d.ready[0]
		d.ready[0] = nil
		d.ready = d.ready[1:]
		return frame, nil
	}
	if d.flushed {
		return nil, io.EOF
	}
	return nil, media.ErrAgain
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	d.ready = nil
	return nil
}
