// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams the sample queue to an oto player as 16-bit PCM
package output

import (
	"fmt"
	"log"

	"github.com/ebitengine/oto/v3"

	"github.com/Resonate-Protocol/reel/pkg/audio"
)

// Oto output implementation using oto library
type Oto struct {
	*stream
	otoCtx *oto.Context
	player *oto.Player
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{}
}

// Open initializes the output device
func (o *Oto) Open(format audio.Format, bufferMs int) error {
	if format.BitDepth != 16 {
		log.Printf("Warning: oto only supports 16-bit output, ignoring requested bitDepth=%d", format.BitDepth)
		format.BitDepth = 16
	}

	// oto allows one context per process
	if o.otoCtx != nil {
		return fmt.Errorf("oto output already open")
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.stream = newStream(format, bufferMs)

	// The player pulls from the queue for as long as it is open
	o.player = o.otoCtx.NewPlayer(o.stream)
	o.player.SetBufferSize(format.SamplesFor(bufferMs/2) * 2)
	o.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels (oto, %dms buffer)",
		format.SampleRate, format.Channels, bufferMs)

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			log.Printf("Warning: oto suspend error: %v", err)
		}
	}
	return nil
}
