// ABOUTME: Fake collaborators for pipeline tests
// ABOUTME: Scripted demuxers, decoders, displays and sinks
package player

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// fakeDemuxer replays packets, failing reads listed in errAt, then io.EOF
type fakeDemuxer struct {
	packets []*media.Packet
	errAt   map[int]bool
	endless bool
	reads   int
	pos     int
	closed  atomic.Bool
}

func (d *fakeDemuxer) Streams() []media.StreamInfo { return nil }

func (d *fakeDemuxer) ReadPacket(ctx context.Context) (*media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.reads++
	if d.errAt[d.reads] {
		return nil, fmt.Errorf("corrupt packet at read %d", d.reads)
	}
	if d.endless {
		d.pos++
		return &media.Packet{StreamIndex: d.pos % 2, PTS: int64(d.pos / 2), Data: []byte{1}}, nil
	}
	if d.pos >= len(d.packets) {
		return nil, io.EOF
	}
	pkt := d.packets[d.pos]
	d.pos++
	return pkt, nil
}

func (d *fakeDemuxer) Close() error {
	d.closed.Store(true)
	return nil
}

func packets(stream, n int) []*media.Packet {
	out := make([]*media.Packet, n)
	for i := range out {
		out[i] = &media.Packet{StreamIndex: stream, PTS: int64(i), Data: []byte{byte(i)}}
	}
	return out
}

// fakeDecoder emits perPacket frames for every packet and fails Send for
// packets whose pts is in failPTS
type fakeDecoder[F any] struct {
	perPacket int
	failPTS   map[int64]bool
	makeFrame func(pts int64) F

	ready   []F
	flushed bool
	closed  bool
}

func (d *fakeDecoder[F]) Send(pkt *media.Packet) error {
	if pkt == nil {
		d.flushed = true
		return nil
	}
	if d.failPTS[pkt.PTS] {
		return fmt.Errorf("bad packet %d", pkt.PTS)
	}
	n := d.perPacket
	if n == 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		d.ready = append(d.ready, d.makeFrame(pkt.PTS*int64(n)+int64(i)))
	}
	return nil
}

func (d *fakeDecoder[F]) Receive() (F, error) {
	var zero F
	if len(d.ready) > 0 {
		f := d.ready[0]
		d.ready = d.ready[1:]
		return f, nil
	}
	if d.flushed {
		return zero, io.EOF
	}
	return zero, media.ErrAgain
}

func (d *fakeDecoder[F]) Close() error {
	d.closed = true
	return nil
}

func videoDecoder() *fakeDecoder[*media.VideoFrame] {
	return &fakeDecoder[*media.VideoFrame]{
		makeFrame: func(pts int64) *media.VideoFrame {
			return &media.VideoFrame{PTS: pts, Width: 1, Height: 1}
		},
	}
}

func audioDecoder(samples int) *fakeDecoder[*media.AudioFrame] {
	return &fakeDecoder[*media.AudioFrame]{
		makeFrame: func(pts int64) *media.AudioFrame {
			return &media.AudioFrame{PTS: pts, SampleRate: 1000, Channels: 2, SampleCount: samples}
		},
	}
}

type fakeScaler struct{}

func (fakeScaler) Scale(*media.VideoFrame) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

type fakeResampler struct{}

func (fakeResampler) Resample(f *media.AudioFrame) ([]int16, error) {
	return make([]int16, f.SampleCount*2), nil
}

type fakeDisplay struct {
	mu       sync.Mutex
	notReady bool
	shown    int
}

func (d *fakeDisplay) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.notReady
}

func (d *fakeDisplay) Submit(*image.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown++
	return nil
}

func (d *fakeDisplay) Shown() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown
}

// fakeSink counts samples. readyEvery > 1 makes it ready on every n-th poll
// only; onReady and onSubmit run after the matching call.
type fakeSink struct {
	mu         sync.Mutex
	samples    int
	frames     int
	paused     bool
	reserved   int
	notReady   bool
	readyEvery int
	polls      int
	onReady    func()
	onSubmit   func()
}

func (s *fakeSink) Ready() bool {
	s.mu.Lock()
	s.polls++
	ready := !s.notReady && (s.readyEvery <= 1 || s.polls%s.readyEvery == 0)
	hook := s.onReady
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return ready
}

func (s *fakeSink) Submit(samples []int16) error {
	s.mu.Lock()
	s.samples += len(samples)
	s.frames++
	hook := s.onSubmit
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (s *fakeSink) Submitted() (samples, frames int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples, s.frames
}

func (s *fakeSink) Close() error { return nil }

func (s *fakeSink) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *fakeSink) Reserve(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserved = n
}

var (
	testVideo = media.StreamInfo{Index: 0, Kind: media.KindVideo, TimeBase: media.Rational{Num: 1, Den: 10}}
	testAudio = media.StreamInfo{Index: 1, Kind: media.KindAudio, TimeBase: media.Rational{Num: 1, Den: 1000}, SampleRate: 1000, Channels: 2}
)

type testRig struct {
	p       *Pipeline
	display *fakeDisplay
	sink    *fakeSink
	video   *fakeDecoder[*media.VideoFrame]
	audio   *fakeDecoder[*media.AudioFrame]
}

func newRig(t *testing.T, src Source, mutate func(*Config)) *testRig {
	t.Helper()
	rig := &testRig{
		display: &fakeDisplay{},
		sink:    &fakeSink{},
		video:   videoDecoder(),
		audio:   audioDecoder(100),
	}
	if src == nil {
		src = Single{Demuxer: &fakeDemuxer{}, Queue: NewPacketQueue(64)}
	}
	cfg := Config{
		Source:       src,
		Video:        testVideo,
		Audio:        testAudio,
		VideoDecoder: rig.video,
		AudioDecoder: rig.audio,
		Scaler:       fakeScaler{},
		Resampler:    fakeResampler{},
		Display:      rig.display,
		Sink:         rig.sink,
		RefreshHz:    1000,
		Quiet:        true,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rig.p = p
	return rig
}
