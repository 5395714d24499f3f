// ABOUTME: FLAC file demuxer
// ABOUTME: Decodes FLAC frames with mewkiz/flac into little-endian PCM packets
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/Resonate-Protocol/reel/pkg/audio"
	"github.com/Resonate-Protocol/reel/pkg/media"
)

// FLAC reads one PCM packet per FLAC frame. Block sizes vary, so the stream
// reports no fixed frame size.
type FLAC struct {
	file     *os.File
	stream   *flac.Stream
	info     media.StreamInfo
	bitDepth int
	pts      int64
}

// NewFLAC opens a FLAC file
func NewFLAC(filePath string) (*FLAC, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	sampleRate := int(stream.Info.SampleRate)
	channels := int(stream.Info.NChannels)
	bitDepth := int(stream.Info.BitsPerSample)

	codec := "pcm_s24le"
	if bitDepth == 16 {
		codec = "pcm_s16le"
	}

	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		filepath.Base(filePath), sampleRate, channels, bitDepth)

	return &FLAC{
		file:     f,
		stream:   stream,
		bitDepth: bitDepth,
		info: media.StreamInfo{
			Index:      media.AudioStream,
			Kind:       media.KindAudio,
			Codec:      codec,
			TimeBase:   media.Rational{Num: 1, Den: sampleRate},
			SampleRate: sampleRate,
			Channels:   channels,
		},
	}, nil
}

// Streams returns the single audio stream
func (s *FLAC) Streams() []media.StreamInfo {
	return []media.StreamInfo{s.info}
}

// ReadPacket parses the next FLAC frame
func (s *FLAC) ReadPacket(ctx context.Context) (*media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	data := encodeFrame(f, s.info.Channels, s.bitDepth)
	pkt := &media.Packet{StreamIndex: s.info.Index, PTS: s.pts, Data: data}
	s.pts += int64(f.BlockSize)
	return pkt, nil
}

// encodeFrame interleaves a frame's subframes as s16le, or s24le for any
// other bit depth
func encodeFrame(f *frame.Frame, channels, bitDepth int) []byte {
	blockSize := int(f.BlockSize)
	if bitDepth == 16 {
		out := make([]byte, 0, blockSize*channels*2)
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < channels; ch++ {
				sample := f.Subframes[ch].Samples[i]
				out = append(out, byte(sample), byte(sample>>8))
			}
		}
		return out
	}

	out := make([]byte, 0, blockSize*channels*3)
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < channels; ch++ {
			b := audio.SampleTo24Bit(audio.ScaleTo24Bit(f.Subframes[ch].Samples[i], bitDepth))
			out = append(out, b[:]...)
		}
	}
	return out
}

// Close closes the file
func (s *FLAC) Close() error {
	return s.file.Close()
}
