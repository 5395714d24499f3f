// ABOUTME: Presentation loop paced by the display refresh
// ABOUTME: Plays audio frames, shows video frames when the audio clock reaches them
package player

import (
	"context"
	"log"
	"time"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// reserver is implemented by sinks that can be sized ahead of playback
type reserver interface {
	Reserve(samplesPerChannel int)
}

// Presenter consumes the frame queues on the foreground goroutine
type Presenter struct {
	p        *Pipeline
	interval time.Duration
	started  time.Time

	// last audio advance or playing tick, and the time not yet turned into
	// samples; used to run the clock on wall time once audio has ended
	lastTick time.Time
	carry    time.Duration
}

func newPresenter(p *Pipeline, refreshHz int) *Presenter {
	if refreshHz <= 0 {
		refreshHz = 60
	}
	return &Presenter{
		p:        p,
		interval: time.Second / time.Duration(refreshHz),
	}
}

// Run ticks until playback finishes or ctx is cancelled
func (pr *Presenter) Run(ctx context.Context) error {
	ticker := time.NewTicker(pr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if pr.Tick(now) == Finished {
				return nil
			}
		}
	}
}

// Tick runs one presentation step and returns the resulting state
func (pr *Presenter) Tick(now time.Time) State {
	p := pr.p
	state := p.life.State()

	switch state {
	case Loading:
		if pr.started.IsZero() {
			pr.started = now
		}
		if !pr.primed(now) {
			return state
		}
		pr.calibrate()
		if err := p.life.Start(); err != nil {
			return p.life.State()
		}
		state = Playing
	case Paused, Finished:
		pr.lastTick = time.Time{}
		return state
	}

	if pr.presentAudio() {
		pr.lastTick, pr.carry = now, 0
	} else {
		pr.freewheel(now)
	}
	pr.presentVideo()

	if state == Playing && !p.DecodingActive() {
		if err := p.life.BeginDrain(); err == nil {
			state = Draining
		}
	}
	if state == Draining && p.videoFrames.Empty() && p.audioFrames.Empty() {
		if err := p.life.Finish(); err == nil {
			state = Finished
		}
	}
	return state
}

// primed reports whether enough is buffered to start playback
func (pr *Presenter) primed(now time.Time) bool {
	p := pr.p
	switch {
	case p.videoFrames.Full(), p.audioFrames.Full():
		return true
	case !p.DecodingActive():
		return true
	case p.primingTimeout > 0 && now.Sub(pr.started) >= p.primingTimeout:
		return !p.videoFrames.Empty() && !p.audioFrames.Empty()
	}
	return false
}

// calibrate sizes the audio sink once, before the first frame is played
func (pr *Presenter) calibrate() {
	p := pr.p
	r, ok := p.sink.(reserver)
	if !ok {
		return
	}

	size := p.audioInfo.FrameSize
	source := "stream"
	if size <= 0 {
		size = int(p.maxAudioSamples.Load())
		source = "decoded frames"
	}
	if size <= 0 {
		return
	}
	r.Reserve(size)
	log.Printf("Presenter: audio sink reserved for %d samples per frame (from %s)", size, source)
}

// presentAudio hands frames to the sink while it wants more and reports
// whether the clock moved
func (pr *Presenter) presentAudio() bool {
	p := pr.p
	played := false
	for {
		if _, ok := p.audioFrames.Peek(); !ok {
			return played
		}
		if !p.sink.Ready() {
			return played
		}
		// A pause may land while this loop runs
		if p.life.State() == Paused {
			return played
		}
		frame, _ := p.audioFrames.TryPop()

		samples, err := p.resampler.Resample(frame)
		if err != nil {
			p.warn(media.Wrap(media.KindFrameReceive, "audio resample", err))
			continue
		}
		p.volume.Apply(samples)
		if err := p.sink.Submit(samples); err != nil {
			p.warn(media.Wrap(media.KindFrameReceive, "audio submit", err))
			continue
		}
		p.clock.Advance(frame.SampleCount)
		p.stats.audioFrames.Add(1)
		played = true
	}
}

// freewheel advances the clock by wall time once the audio stream has ended
// and every audio frame has been played, so the remaining video still comes
// due. Ticks spent paused are not counted.
func (pr *Presenter) freewheel(now time.Time) {
	p := pr.p
	last := pr.lastTick
	pr.lastTick = now

	if last.IsZero() || !p.audioDone.Load() || !p.audioFrames.Empty() || p.life.State() == Paused {
		pr.carry = 0
		return
	}
	elapsed := now.Sub(last) + pr.carry
	if elapsed <= 0 {
		return
	}
	rate := float64(p.clock.SampleRate())
	n := int(elapsed.Seconds() * rate)
	pr.carry = elapsed - time.Duration(float64(n)/rate*float64(time.Second))
	p.clock.Advance(n)
}

// presentVideo shows the head frame once the clock reaches it
func (pr *Presenter) presentVideo() {
	p := pr.p
	frame, ok := p.videoFrames.Peek()
	if !ok {
		return
	}
	if !p.clock.Due(p.videoInfo.TimeBase.Seconds(frame.PTS)) {
		return
	}
	if !p.display.Ready() {
		return
	}
	frame, _ = p.videoFrames.TryPop()

	img, err := p.scaler.Scale(frame)
	if err != nil {
		p.warn(media.Wrap(media.KindFrameReceive, "video scale", err))
		return
	}
	if err := p.display.Submit(img); err != nil {
		p.warn(media.Wrap(media.KindFrameReceive, "video display", err))
		return
	}
	p.stats.videoFrames.Add(1)
}
