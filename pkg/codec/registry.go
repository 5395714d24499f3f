// ABOUTME: Codec registry
// ABOUTME: Maps codec names to decoder constructors
package codec

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// VideoOpenFunc creates a decoder for a video stream
type VideoOpenFunc func(info media.StreamInfo) (media.VideoDecoder, error)

// AudioOpenFunc creates a decoder for an audio stream
type AudioOpenFunc func(info media.StreamInfo) (media.AudioDecoder, error)

var (
	videoDecoders = map[string]VideoOpenFunc{}
	audioDecoders = map[string]AudioOpenFunc{}
)

func init() {
	RegisterVideo("rawvideo", func(info media.StreamInfo) (media.VideoDecoder, error) {
		return NewRawVideo(info)
	})
	RegisterAudio("pcm_s16le", func(info media.StreamInfo) (media.AudioDecoder, error) {
		return NewPCM(info, 16)
	})
	RegisterAudio("pcm_s24le", func(info media.StreamInfo) (media.AudioDecoder, error) {
		return NewPCM(info, 24)
	})
}

// RegisterVideo registers a video decoder under a codec name
func RegisterVideo(name string, open VideoOpenFunc) {
	videoDecoders[name] = open
}

// RegisterAudio registers an audio decoder under a codec name
func RegisterAudio(name string, open AudioOpenFunc) {
	audioDecoders[name] = open
}

// OpenVideo creates a decoder for the stream's codec
func OpenVideo(info media.StreamInfo) (media.VideoDecoder, error) {
	if info.Kind != media.KindVideo {
		return nil, media.Wrap(media.KindDecoderOpen, info.Codec,
			errors.Errorf("stream %d is %v, not video", info.Index, info.Kind))
	}
	open, found := videoDecoders[info.Codec]
	if !found {
		return nil, media.Wrap(media.KindDecoderOpen, info.Codec,
			errors.Errorf("no video decoder registered for '%s' (known: %v)", info.Codec, names(videoDecoders)))
	}
	dec, err := open(info)
	if err != nil {
		return nil, media.Wrap(media.KindDecoderOpen, info.Codec, errors.Wrap(err, "open video decoder"))
	}
	return dec, nil
}

// OpenAudio creates a decoder for the stream's codec
func OpenAudio(info media.StreamInfo) (media.AudioDecoder, error) {
	if info.Kind != media.KindAudio {
		return nil, media.Wrap(media.KindDecoderOpen, info.Codec,
			errors.Errorf("stream %d is %v, not audio", info.Index, info.Kind))
	}
	open, found := audioDecoders[info.Codec]
	if !found {
		return nil, media.Wrap(media.KindDecoderOpen, info.Codec,
			errors.Errorf("no audio decoder registered for '%s' (known: %v)", info.Codec, names(audioDecoders)))
	}
	dec, err := open(info)
	if err != nil {
		return nil, media.Wrap(media.KindDecoderOpen, info.Codec, errors.Wrap(err, "open audio decoder"))
	}
	return dec, nil
}

func names[F any](m map[string]F) []string {
	var out []string
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
