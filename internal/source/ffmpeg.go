// ABOUTME: ffmpeg subprocess demuxer
// ABOUTME: Decodes any locator ffmpeg can open into raw RGB video and PCM audio packets
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// Child file descriptors for the two output pipes
const (
	videoFD = 3
	audioFD = 4
)

// Options controls what the ffmpeg demuxer produces
type Options struct {
	Path string // ffmpeg binary

	// Source streams from probing. A nil stream is not decoded.
	Video *media.StreamInfo
	Audio *media.StreamInfo

	Width        int // output width; height follows the aspect ratio
	FPS          int // 0 keeps the source rate
	SampleRate   int // 0 keeps the source rate
	Channels     int // 0 keeps the source layout
	ChunkSamples int // audio samples per channel per packet
}

// outputs derives the stream descriptions of the decoded output
func (o Options) outputs() (video, audio *media.StreamInfo) {
	if src := o.Video; src != nil {
		width := o.Width
		if width <= 0 || (src.Width > 0 && width > src.Width) {
			width = src.Width
		}
		height := src.Height
		if src.Width > 0 {
			height = src.Height * width / src.Width
		}
		width, height = even(width), even(height)

		rate := src.FrameRate
		if o.FPS > 0 {
			rate = media.Rational{Num: o.FPS, Den: 1}
		}
		if !rate.Valid() {
			rate = media.Rational{Num: 25, Den: 1}
		}

		video = &media.StreamInfo{
			Index:     media.VideoStream,
			Kind:      media.KindVideo,
			Codec:     "rawvideo",
			TimeBase:  media.Rational{Num: rate.Den, Den: rate.Num},
			Width:     width,
			Height:    height,
			FrameRate: rate,
		}
	}

	if src := o.Audio; src != nil {
		rate := o.SampleRate
		if rate <= 0 {
			rate = src.SampleRate
		}
		channels := o.Channels
		if channels <= 0 {
			channels = src.Channels
		}
		chunk := o.ChunkSamples
		if chunk <= 0 {
			chunk = 1024
		}
		audio = &media.StreamInfo{
			Index:      media.AudioStream,
			Kind:       media.KindAudio,
			Codec:      "pcm_s16le",
			TimeBase:   media.Rational{Num: 1, Den: rate},
			SampleRate: rate,
			Channels:   channels,
			FrameSize:  chunk,
		}
	}
	return video, audio
}

func even(n int) int {
	if n < 2 {
		return 2
	}
	return n &^ 1
}

// args builds the ffmpeg command line for locator
func (o Options) args(locator string) []string {
	video, audio := o.outputs()

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", locator,
	}
	if video != nil {
		args = append(args,
			"-map", "0:v:0",
			"-vf", fmt.Sprintf("scale=%d:%d", video.Width, video.Height),
			"-r", video.FrameRate.String(),
			"-pix_fmt", "rgb24",
			"-f", "rawvideo",
			"pipe:"+strconv.Itoa(videoFD),
		)
	}
	if audio != nil {
		args = append(args,
			"-map", "0:a:0",
			"-ar", strconv.Itoa(audio.SampleRate),
			"-ac", strconv.Itoa(audio.Channels),
			"-f", "s16le",
			"pipe:"+strconv.Itoa(audioFD),
		)
	}
	return args
}

// result is one packet or error from a pipe reader
type result struct {
	pkt *media.Packet
	err error
}

// FFmpeg demuxes by running ffmpeg with one pipe per output stream
type FFmpeg struct {
	locator string
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	stderr  bytes.Buffer
	streams []media.StreamInfo
	info    [2]*media.StreamInfo

	chans [2]chan result
	heads [2]*media.Packet
	pipes []*os.File
	wg    sync.WaitGroup
	once  sync.Once
}

// NewFFmpeg starts ffmpeg on locator
func NewFFmpeg(locator string, opts Options) (*FFmpeg, error) {
	if opts.Video == nil && opts.Audio == nil {
		return nil, media.Errorf(media.KindStreamAbsent, locator, "nothing to decode")
	}
	path := opts.Path
	if path == "" {
		path = "ffmpeg"
	}
	if _, err := exec.LookPath(path); err != nil {
		return nil, media.Wrap(media.KindSourceOpen, locator,
			fmt.Errorf("ffmpeg not found in PATH: %w (install with: brew install ffmpeg)", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &FFmpeg{
		locator: locator,
		cancel:  cancel,
	}
	d.cmd = exec.CommandContext(ctx, path, opts.args(locator)...)
	d.cmd.Stderr = &d.stderr

	video, audio := opts.outputs()
	d.info = [2]*media.StreamInfo{video, audio}

	// ExtraFiles[i] becomes fd 3+i in the child, so both slots are always set
	var writers []*os.File
	var readers [2]*os.File
	for i, info := range d.info {
		r, w, err := os.Pipe()
		if err != nil {
			cancel()
			closeAll(writers)
			closeAll(d.pipes)
			return nil, media.Wrap(media.KindSourceOpen, locator, fmt.Errorf("create pipe: %w", err))
		}
		writers = append(writers, w)
		d.pipes = append(d.pipes, r)
		if info != nil {
			readers[i] = r
			d.streams = append(d.streams, *info)
		}
	}
	d.cmd.ExtraFiles = writers

	if err := d.cmd.Start(); err != nil {
		cancel()
		closeAll(writers)
		closeAll(d.pipes)
		return nil, media.Wrap(media.KindSourceOpen, locator, fmt.Errorf("failed to start ffmpeg: %w", err))
	}
	// The child holds its own copies
	closeAll(writers)

	if video != nil {
		d.start(0, readers[0], video.Width*video.Height*3)
	}
	if audio != nil {
		d.start(1, readers[1], audio.FrameSize*audio.Channels*2)
	}

	log.Printf("Demuxing via ffmpeg: %s (%d streams)", locator, len(d.streams))
	return d, nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// start launches the reader goroutine for one pipe
func (d *FFmpeg) start(slot int, pipe *os.File, chunk int) {
	ch := make(chan result, 2)
	d.chans[slot] = ch
	info := d.info[slot]

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(ch)
		readChunks(pipe, chunk, info, ch)
	}()
}

// readChunks slices a pipe into fixed-size packets. Audio packets carry
// their sample offset as pts, video packets their frame index.
func readChunks(r io.Reader, chunk int, info *media.StreamInfo, out chan<- result) {
	var pts int64
	frameBytes := 0
	if info.Kind == media.KindAudio {
		frameBytes = info.Channels * 2
	}

	for {
		buf := make([]byte, chunk)
		n, err := io.ReadFull(r, buf)
		if n > 0 && (err == nil || frameBytes > 0) {
			if frameBytes > 0 {
				n -= n % frameBytes
			}
			if n > 0 {
				out <- result{pkt: &media.Packet{StreamIndex: info.Index, PTS: pts, Data: buf[:n]}}
				if frameBytes > 0 {
					pts += int64(n / frameBytes)
				} else {
					pts++
				}
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, os.ErrClosed):
			return
		default:
			out <- result{err: err}
			return
		}
	}
}

// Streams describes the decoded output streams
func (d *FFmpeg) Streams() []media.StreamInfo {
	return d.streams
}

// ReadPacket returns the next packet from either pipe. When both streams
// have a packet ready the earlier one wins; it never waits on one pipe
// while the other has data.
func (d *FFmpeg) ReadPacket(ctx context.Context) (*media.Packet, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Top up heads without blocking
		for i := range d.chans {
			if d.heads[i] != nil || d.chans[i] == nil {
				continue
			}
			select {
			case res, ok := <-d.chans[i]:
				if err := d.take(i, res, ok); err != nil {
					return nil, err
				}
			default:
			}
		}

		if pkt := d.pick(); pkt != nil {
			return pkt, nil
		}
		if d.chans[0] == nil && d.chans[1] == nil {
			return nil, io.EOF
		}

		// Nothing ready: wait for either pipe
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res, ok := <-d.chans[0]:
			if err := d.take(0, res, ok); err != nil {
				return nil, err
			}
		case res, ok := <-d.chans[1]:
			if err := d.take(1, res, ok); err != nil {
				return nil, err
			}
		}
	}
}

// take stores a received result as the head of slot i
func (d *FFmpeg) take(i int, res result, ok bool) error {
	if !ok {
		d.chans[i] = nil
		return nil
	}
	if res.err != nil {
		return media.Wrap(media.KindPacketRead, d.locator, res.err)
	}
	d.heads[i] = res.pkt
	return nil
}

// pick removes and returns the earliest head packet
func (d *FFmpeg) pick() *media.Packet {
	best := -1
	for i, pkt := range d.heads {
		if pkt == nil {
			continue
		}
		if best < 0 || d.seconds(i, pkt) < d.seconds(best, d.heads[best]) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	pkt := d.heads[best]
	d.heads[best] = nil
	return pkt
}

func (d *FFmpeg) seconds(slot int, pkt *media.Packet) float64 {
	return d.info[slot].TimeBase.Seconds(pkt.PTS)
}

// Close stops ffmpeg and waits for the pipe readers
func (d *FFmpeg) Close() error {
	d.once.Do(func() {
		d.cancel()
		closeAll(d.pipes)
		// Unblock readers stuck on a full channel
		for _, ch := range d.chans {
			if ch == nil {
				continue
			}
			go func(ch chan result) {
				for range ch {
				}
			}(ch)
		}
		d.wg.Wait()
		if err := d.cmd.Wait(); err != nil && d.stderr.Len() > 0 {
			log.Printf("ffmpeg exited: %v: %s", err, bytes.TrimSpace(d.stderr.Bytes()))
		}
	})
	return nil
}
