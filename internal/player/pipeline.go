// ABOUTME: Playback pipeline owning the queues, clock and lifecycle
// ABOUTME: Runs the reader and dispatcher in the background and presents on the caller's goroutine
package player

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Resonate-Protocol/reel/internal/queue"
	"github.com/Resonate-Protocol/reel/internal/sync"
	"github.com/Resonate-Protocol/reel/pkg/media"
)

// spinInterval is how long a stalled producer sleeps before retrying
const spinInterval = time.Millisecond

// Config holds everything a pipeline needs
type Config struct {
	Source Source
	Video  media.StreamInfo
	Audio  media.StreamInfo

	VideoDecoder media.VideoDecoder
	AudioDecoder media.AudioDecoder
	Scaler       media.Scaler
	Resampler    media.Resampler
	Display      media.Display
	Sink         media.AudioSink
	Volume       *Volume

	VideoFrames    int
	AudioFrames    int
	RefreshHz      int
	PrimingTimeout time.Duration
	Quiet          bool
}

// Stats is a snapshot of pipeline counters
type Stats struct {
	State           State
	AudioTime       float64
	VideoFrames     int64
	AudioFrames     int64
	Skipped         int64
	Errors          int64
	PacketQueue     int
	VideoQueue      int
	AudioQueue      int
	MaxAudioSamples int64
}

type counters struct {
	videoFrames atomic.Int64
	audioFrames atomic.Int64
	skipped     atomic.Int64
	errors      atomic.Int64
}

// Pipeline is one playback session
type Pipeline struct {
	source       Source
	videoInfo    media.StreamInfo
	audioInfo    media.StreamInfo
	videoDecoder media.VideoDecoder
	audioDecoder media.AudioDecoder
	scaler       media.Scaler
	resampler    media.Resampler
	display      media.Display
	sink         media.AudioSink
	volume       *Volume

	packetQueues []*PacketQueue
	videoFrames  *queue.Ring[*media.VideoFrame]
	audioFrames  *queue.Ring[*media.AudioFrame]
	clock        *sync.AudioClock
	life         *Lifecycle

	videoDone       atomic.Bool
	audioDone       atomic.Bool
	maxAudioSamples atomic.Int64
	primingTimeout  time.Duration
	quiet           bool
	stats           counters

	reader     *Reader
	dispatcher *Dispatcher
	presenter  *Presenter
}

// New creates a pipeline in the Loading state
func New(cfg Config) (*Pipeline, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("no source")
	}
	if cfg.VideoDecoder == nil || cfg.AudioDecoder == nil {
		return nil, fmt.Errorf("both decoders are required")
	}
	if cfg.Scaler == nil || cfg.Resampler == nil || cfg.Display == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("scaler, resampler, display and sink are required")
	}
	if !cfg.Video.TimeBase.Valid() {
		return nil, fmt.Errorf("invalid video time base %v", cfg.Video.TimeBase)
	}
	if cfg.Audio.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid audio sample rate %d", cfg.Audio.SampleRate)
	}
	for _, q := range cfg.Source.queues() {
		if q == nil {
			return nil, fmt.Errorf("source is missing a packet queue")
		}
	}

	volume := cfg.Volume
	if volume == nil {
		volume = NewVolume(100)
	}

	p := &Pipeline{
		source:         cfg.Source,
		videoInfo:      cfg.Video,
		audioInfo:      cfg.Audio,
		videoDecoder:   cfg.VideoDecoder,
		audioDecoder:   cfg.AudioDecoder,
		scaler:         cfg.Scaler,
		resampler:      cfg.Resampler,
		display:        cfg.Display,
		sink:           cfg.Sink,
		volume:         volume,
		packetQueues:   cfg.Source.queues(),
		videoFrames:    queue.New[*media.VideoFrame](orDefault(cfg.VideoFrames, 8)),
		audioFrames:    queue.New[*media.AudioFrame](orDefault(cfg.AudioFrames, 32)),
		clock:          sync.NewAudioClock(cfg.Audio.SampleRate),
		life:           NewLifecycle(),
		primingTimeout: cfg.PrimingTimeout,
		quiet:          cfg.Quiet,
	}
	p.reader = newReader(p, cfg.Source, cfg.Video, cfg.Audio)
	p.dispatcher = newDispatcher(p, p.packetQueues)
	p.presenter = newPresenter(p, cfg.RefreshHz)
	return p, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Run plays until the stream finishes or ctx is cancelled. The reader and
// dispatcher run in the background; presentation runs on the calling
// goroutine. Resources are released before Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.reader.Run(gctx) })
	g.Go(func() error { return p.dispatcher.Run(gctx) })

	err := p.presenter.Run(gctx)

	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	p.release()
	return err
}

// release frees queue storage and closes decoders and sources
func (p *Pipeline) release() {
	for _, q := range p.packetQueues {
		q.Release()
	}
	p.videoFrames.Release()
	p.audioFrames.Release()

	if err := p.videoDecoder.Close(); err != nil {
		log.Printf("Pipeline: video decoder close: %v", err)
	}
	if err := p.audioDecoder.Close(); err != nil {
		log.Printf("Pipeline: audio decoder close: %v", err)
	}
	if err := p.source.close(); err != nil {
		log.Printf("Pipeline: source close: %v", err)
	}
	log.Printf("Pipeline: released (state=%v, audio_time=%.3fs)", p.life.State(), p.clock.Time())
}

// TogglePause pauses or resumes playback. The clock freezes while paused.
func (p *Pipeline) TogglePause() (State, error) {
	state, err := p.life.TogglePause()
	if err != nil {
		return state, err
	}
	paused := state == Paused
	p.clock.SetPaused(paused)
	if s, ok := p.sink.(interface{ SetPaused(bool) }); ok {
		s.SetPaused(paused)
	}
	return state, nil
}

// DecodingActive reports whether either decoder still has input to process
func (p *Pipeline) DecodingActive() bool {
	return !(p.videoDone.Load() && p.audioDone.Load())
}

// Lifecycle returns the pipeline's state machine
func (p *Pipeline) Lifecycle() *Lifecycle {
	return p.life
}

// Clock returns the audio clock
func (p *Pipeline) Clock() *sync.AudioClock {
	return p.clock
}

// Volume returns the volume control
func (p *Pipeline) Volume() *Volume {
	return p.volume
}

// Stats returns current counters and queue depths
func (p *Pipeline) Stats() Stats {
	packets := 0
	for _, q := range p.packetQueues {
		packets += q.Len()
	}
	return Stats{
		State:           p.life.State(),
		AudioTime:       p.clock.Time(),
		VideoFrames:     p.stats.videoFrames.Load(),
		AudioFrames:     p.stats.audioFrames.Load(),
		Skipped:         p.stats.skipped.Load(),
		Errors:          p.stats.errors.Load(),
		PacketQueue:     packets,
		VideoQueue:      p.videoFrames.Len(),
		AudioQueue:      p.audioFrames.Len(),
		MaxAudioSamples: p.maxAudioSamples.Load(),
	}
}

// warn records a transient error, logging it unless quiet
func (p *Pipeline) warn(err error) {
	p.stats.errors.Add(1)
	if !p.quiet {
		log.Printf("Warning: %v", err)
	}
}

// observeAudio tracks the largest decoded audio frame
func (p *Pipeline) observeAudio(frame *media.AudioFrame) {
	n := int64(frame.SampleCount)
	for {
		cur := p.maxAudioSamples.Load()
		if n <= cur || p.maxAudioSamples.CompareAndSwap(cur, n) {
			return
		}
	}
}
