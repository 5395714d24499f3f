// ABOUTME: Source opening helpers
// ABOUTME: Picks a pure-Go demuxer for local audio files
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// IsAudioFile reports whether path is a local file OpenAudioFile can read
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac":
		return !strings.Contains(path, "://")
	}
	return false
}

// OpenAudioFile opens a local MP3 or FLAC file
func OpenAudioFile(path string, chunkSamples int) (media.Demuxer, error) {
	var (
		d   media.Demuxer
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		d, err = NewMP3(path, chunkSamples)
	case ".flac":
		d, err = NewFLAC(path)
	default:
		err = fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac)", ext)
	}
	if err != nil {
		return nil, media.Wrap(media.KindSourceOpen, path, err)
	}
	return d, nil
}
