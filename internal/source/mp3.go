// ABOUTME: MP3 file demuxer
// ABOUTME: Decodes MP3 with go-mp3 and emits fixed-size 16-bit PCM packets
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/go-mp3"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// mp3FrameBytes is one stereo 16-bit sample frame; go-mp3 always outputs stereo
const mp3FrameBytes = 4

// MP3 reads PCM packets from an MP3 file
type MP3 struct {
	file    *os.File
	decoder *mp3.Decoder
	info    media.StreamInfo
	chunk   int
	pts     int64
}

// NewMP3 opens an MP3 file. Each packet holds chunkSamples samples per channel.
func NewMP3(filePath string, chunkSamples int) (*MP3, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	if chunkSamples <= 0 {
		chunkSamples = 1152
	}

	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", filepath.Base(filePath), decoder.SampleRate())

	return &MP3{
		file:    f,
		decoder: decoder,
		chunk:   chunkSamples,
		info: media.StreamInfo{
			Index:      media.AudioStream,
			Kind:       media.KindAudio,
			Codec:      "pcm_s16le",
			TimeBase:   media.Rational{Num: 1, Den: decoder.SampleRate()},
			SampleRate: decoder.SampleRate(),
			Channels:   2,
			FrameSize:  chunkSamples,
		},
	}, nil
}

// Streams returns the single audio stream
func (s *MP3) Streams() []media.StreamInfo {
	return []media.StreamInfo{s.info}
}

// ReadPacket decodes the next chunk
func (s *MP3) ReadPacket(ctx context.Context) (*media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, s.chunk*mp3FrameBytes)
	n, err := io.ReadFull(s.decoder, buf)
	n -= n % mp3FrameBytes
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	pkt := &media.Packet{StreamIndex: s.info.Index, PTS: s.pts, Data: buf[:n]}
	s.pts += int64(n / mp3FrameBytes)
	return pkt, nil
}

// Close closes the file
func (s *MP3) Close() error {
	return s.file.Close()
}
