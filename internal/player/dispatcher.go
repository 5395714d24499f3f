// ABOUTME: Decoder dispatcher goroutine
// ABOUTME: Routes packets to the stream decoders and moves decoded frames into the frame queues
package player

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/reel/internal/queue"
	"github.com/Resonate-Protocol/reel/pkg/media"
)

// lane is one stream's decoder and the frame queue it fills
type lane[F any] struct {
	name    string
	decoder media.Decoder[F]
	frames  *queue.Ring[F]
	done    *atomic.Bool
	onFrame func(F)
	warn    func(error)

	pending    F
	hasPending bool
	draining   bool
	flushing   bool
}

func (l *lane[F]) busy() bool {
	return l.hasPending || l.draining
}

func (l *lane[F]) finished() bool {
	return l.done.Load()
}

// send hands one packet to the decoder. An EOS marker flushes it.
func (l *lane[F]) send(pkt *media.Packet) {
	if pkt.EOS {
		if err := l.decoder.Send(nil); err != nil {
			l.warn(media.Wrap(media.KindPacketSend, l.name+" flush", err))
		}
		l.flushing = true
		l.draining = true
		return
	}

	if err := l.decoder.Send(pkt); err != nil {
		l.warn(media.Wrap(media.KindPacketSend, l.name, err))
		return
	}
	l.draining = true
}

// drain moves decoded frames into the frame queue until the decoder wants
// input or the queue fills. Returns whether anything moved.
func (l *lane[F]) drain() bool {
	progress := false

	if l.hasPending {
		if !l.frames.TryPush(l.pending) {
			return false
		}
		var zero F
		l.pending = zero
		l.hasPending = false
		progress = true
	}

	for l.draining {
		frame, err := l.decoder.Receive()
		switch {
		case err == nil:
			if l.onFrame != nil {
				l.onFrame(frame)
			}
			if !l.frames.TryPush(frame) {
				l.pending = frame
				l.hasPending = true
				return true
			}
			progress = true
		case errors.Is(err, media.ErrAgain):
			l.draining = false
			if l.flushing {
				// A flushed decoder that wants input has nothing left
				l.finish()
			}
		case errors.Is(err, io.EOF):
			l.finish()
		default:
			l.warn(media.Wrap(media.KindFrameReceive, l.name, err))
			l.draining = false
			if l.flushing {
				l.finish()
			}
		}
	}
	return progress
}

func (l *lane[F]) finish() {
	l.draining = false
	if !l.done.Swap(true) {
		log.Printf("Dispatcher: %s decoder finished", l.name)
	}
}

// Dispatcher feeds packets to the decoders
type Dispatcher struct {
	p      *Pipeline
	queues []*PacketQueue
	video  *lane[*media.VideoFrame]
	audio  *lane[*media.AudioFrame]
}

func newDispatcher(p *Pipeline, queues []*PacketQueue) *Dispatcher {
	return &Dispatcher{
		p:      p,
		queues: queues,
		video: &lane[*media.VideoFrame]{
			name:    "video",
			decoder: p.videoDecoder,
			frames:  p.videoFrames,
			done:    &p.videoDone,
			warn:    p.warn,
		},
		audio: &lane[*media.AudioFrame]{
			name:    "audio",
			decoder: p.audioDecoder,
			frames:  p.audioFrames,
			done:    &p.audioDone,
			onFrame: p.observeAudio,
			warn:    p.warn,
		},
	}
}

// Run dispatches until both decoders have finished or ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if d.video.finished() && d.audio.finished() {
			log.Printf("Dispatcher: all streams decoded")
			return nil
		}

		progress := false
		if d.video.busy() && d.video.drain() {
			progress = true
		}
		if d.audio.busy() && d.audio.drain() {
			progress = true
		}

		for _, q := range d.queues {
			if d.dispatch(q) {
				progress = true
			}
		}

		if !progress {
			time.Sleep(spinInterval)
		}
	}
}

// dispatch routes the head packet of q if its stream can take it
func (d *Dispatcher) dispatch(q *PacketQueue) bool {
	pkt, ok := q.Peek()
	if !ok {
		return false
	}

	switch pkt.StreamIndex {
	case media.VideoStream:
		return dispatchTo(q, d.video, d.p)
	case media.AudioStream:
		return dispatchTo(q, d.audio, d.p)
	default:
		q.TryPop()
		d.p.stats.skipped.Add(1)
		return true
	}
}

func dispatchTo[F any](q *PacketQueue, l *lane[F], p *Pipeline) bool {
	if l.finished() {
		// Nothing follows end of stream
		q.TryPop()
		p.stats.skipped.Add(1)
		return true
	}
	if l.busy() || l.frames.Full() {
		return false
	}

	pkt, _ := q.TryPop()
	l.send(pkt)
	l.drain()
	return true
}
