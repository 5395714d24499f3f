// ABOUTME: Source reader goroutine
// ABOUTME: Pulls packets from the demuxers and pushes them into the packet queues
package player

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// maxReadFailures is how many consecutive read errors end a source
const maxReadFailures = 32

// feed is one demuxer and the queue it fills
type feed struct {
	name  string
	demux media.Demuxer
	queue *PacketQueue
	tag   func(index int) int // demuxer stream index to canonical id, -1 to skip
	ends  []int               // canonical streams ending with this demuxer

	backlog  []*media.Packet
	eof      bool
	failures int
}

func (f *feed) done() bool {
	return f.eof && len(f.backlog) == 0
}

// Reader moves packets from the source into the packet queues
type Reader struct {
	p     *Pipeline
	feeds []*feed
}

func newReader(p *Pipeline, src Source, video, audio media.StreamInfo) *Reader {
	return &Reader{
		p:     p,
		feeds: src.feeds(video, audio),
	}
}

// Run reads until every demuxer has reported end of stream and its markers
// are queued, or ctx is cancelled
func (r *Reader) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		finished := true
		progress := false
		for _, f := range r.feeds {
			if f.done() {
				continue
			}
			finished = false
			if r.service(ctx, f) {
				progress = true
			}
		}
		if finished {
			log.Printf("Reader: all sources exhausted")
			return nil
		}
		if !progress {
			time.Sleep(spinInterval)
		}
	}
}

// service reads at most one packet from f and pushes as much backlog as fits
func (r *Reader) service(ctx context.Context, f *feed) bool {
	progress := false

	if len(f.backlog) == 0 && !f.eof {
		pkt, err := f.demux.ReadPacket(ctx)
		switch {
		case errors.Is(err, io.EOF):
			r.endFeed(f)
		case err != nil:
			if ctx.Err() != nil {
				return false
			}
			f.failures++
			r.p.warn(media.Wrap(media.KindPacketRead, f.name, err))
			if f.failures >= maxReadFailures {
				log.Printf("Reader: %s failed %d reads in a row, treating as end of stream", f.name, f.failures)
				r.endFeed(f)
			}
		case pkt == nil:
		default:
			f.failures = 0
			id := f.tag(pkt.StreamIndex)
			if id < 0 {
				r.p.stats.skipped.Add(1)
				return true
			}
			pkt.StreamIndex = id
			f.backlog = append(f.backlog, pkt)
		}
		progress = true
	}

	for len(f.backlog) > 0 {
		if !f.queue.TryPush(f.backlog[0]) {
			break
		}
		f.backlog[0] = nil
		f.backlog = f.backlog[1:]
		progress = true
	}
	return progress
}

// endFeed queues end-of-stream markers for the streams f carries
func (r *Reader) endFeed(f *feed) {
	f.eof = true
	for _, id := range f.ends {
		f.backlog = append(f.backlog, &media.Packet{StreamIndex: id, EOS: true})
	}
	log.Printf("Reader: %s reached end of stream", f.name)
}
