// ABOUTME: Main player application orchestration
// ABOUTME: Resolves and opens sources, builds the pipeline and connects it to the UI and audio device
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Resonate-Protocol/reel/internal/config"
	"github.com/Resonate-Protocol/reel/internal/player"
	"github.com/Resonate-Protocol/reel/internal/probe"
	"github.com/Resonate-Protocol/reel/internal/resolve"
	"github.com/Resonate-Protocol/reel/internal/source"
	"github.com/Resonate-Protocol/reel/internal/ui"
	"github.com/Resonate-Protocol/reel/internal/version"
	"github.com/Resonate-Protocol/reel/pkg/audio"
	"github.com/Resonate-Protocol/reel/pkg/audio/output"
	"github.com/Resonate-Protocol/reel/pkg/audio/resample"
	"github.com/Resonate-Protocol/reel/pkg/codec"
	"github.com/Resonate-Protocol/reel/pkg/media"
	"github.com/Resonate-Protocol/reel/pkg/video"
)

// Config holds player configuration
type Config struct {
	Target    string // file path, stream URL or page URL
	AudioPath string // optional separate audio track
	Settings  *config.Config
	UseTUI    bool
	Quiet     bool
}

// Player represents the main player application
type Player struct {
	config   Config
	session  string
	controls *ui.Controls
	screen   *ui.Screen
	headless *ui.Headless
	tuiProg  *tea.Program
	pipeline *player.Pipeline
	sink     output.Sink
	ctx      context.Context
	cancel   context.CancelFunc
}

// controller is the part of the pipeline key commands act on
type controller interface {
	TogglePause() (player.State, error)
	Volume() *player.Volume
}

// New creates a new player
func New(cfg Config) *Player {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Player{
		config:  cfg,
		session: uuid.New().String(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Session returns the id of this playback session
func (p *Player) Session() string {
	return p.session
}

// Run plays the target. With the TUI it returns when the user quits; without
// it, when playback finishes. Both return on SIGINT/SIGTERM.
func (p *Player) Run() error {
	log.Printf("[%s] %s %s starting: %s", p.short(), version.Product, version.Version, p.config.Target)

	if p.config.UseTUI {
		p.controls = ui.NewControls()
		p.screen = ui.NewScreen()
		p.tuiProg = ui.Run(p.controls, p.screen, p.config.Settings.Audio.Volume)
	} else {
		p.headless = ui.NewHeadless()
	}

	tuiDone := make(chan struct{})
	if p.tuiProg != nil {
		go func() {
			defer close(tuiDone)
			if _, err := p.tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		p.updateTUI(ui.StatusMsg{Title: filepath.Base(p.config.Target), Session: p.session})
	}

	if err := p.open(p.ctx); err != nil {
		p.Stop()
		if p.tuiProg != nil {
			<-tuiDone
		}
		if p.sink != nil {
			_ = p.sink.Close()
		}
		return err
	}

	p.pipeline.Lifecycle().OnChange(func(from, to player.State) {
		log.Printf("[%s] State: %v -> %v", p.short(), from, to)
		p.updateTUI(ui.StatusMsg{State: to.String()})
	})

	go p.statsLoop()
	if p.controls != nil {
		go p.handleControls()
	}

	done := make(chan error, 1)
	go func() {
		done <- p.pipeline.Run(p.ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var quit <-chan struct{}
	if p.controls != nil {
		quit = p.controls.Quit
	}

	var runErr error
	finished := false
	for waiting := true; waiting; {
		select {
		case err := <-done:
			runErr, finished, done = err, true, nil
			p.logSummary()
			// Keep the last picture on screen until the user quits
			waiting = p.tuiProg != nil
		case <-quit:
			log.Printf("Received quit signal from TUI")
			waiting = false
		case <-tuiDone:
			tuiDone = nil
			waiting = false
		case <-sigChan:
			log.Printf("Shutdown signal received")
			waiting = false
		}
	}

	p.Stop()
	if !finished {
		runErr = <-done
		p.logSummary()
	}
	if tuiDone != nil && p.tuiProg != nil {
		<-tuiDone
	}
	if p.sink != nil {
		if finished && runErr == nil && p.pipeline.Lifecycle().State() == player.Finished {
			if !drainSink(p.sink, drainLimit) {
				log.Printf("[%s] Audio output did not drain within %v", p.short(), drainLimit)
			}
		}
		if err := p.sink.Close(); err != nil {
			log.Printf("Error closing audio output: %v", err)
		}
	}

	log.Printf("[%s] Player stopped", p.short())
	return runErr
}

// drainLimit bounds the wait for queued audio at the end of playback
const drainLimit = 2 * time.Second

// drainSink waits until the sink has played everything it was given
func drainSink(sink interface{ Buffered() int }, limit time.Duration) bool {
	deadline := time.Now().Add(limit)
	for sink.Buffered() > 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return true
}

// Stop cancels playback and closes the TUI
func (p *Player) Stop() {
	p.cancel()

	if p.tuiProg != nil {
		p.tuiProg.Quit()
	}
}

// locate decides which locators to open
func (p *Player) locate(ctx context.Context) (resolve.Locators, error) {
	target := p.config.Target
	if target == "" {
		return resolve.Locators{}, media.Errorf(media.KindSourceOpen, "", "no locator given")
	}
	if p.config.AudioPath != "" {
		return resolve.Locators{Video: target, Audio: p.config.AudioPath}, nil
	}
	if !resolve.NeedsResolving(target) {
		return resolve.Locators{Video: target}, nil
	}

	r := &resolve.Resolver{
		Command: p.config.Settings.Resolver.Command,
		Args:    p.config.Settings.Resolver.Args,
	}
	return r.Resolve(ctx, target)
}

// open resolves the target and builds the pipeline
func (p *Player) open(ctx context.Context) error {
	settings := p.config.Settings

	locs, err := p.locate(ctx)
	if err != nil {
		return err
	}

	src, err := p.openSource(ctx, locs)
	if err != nil {
		return err
	}
	videoInfo, audioInfo, err := streamsOf(src)
	if err != nil {
		closeSource(src)
		return err
	}
	log.Printf("[%s] Video: %s %dx%d @ %v, audio: %s %dHz %dch",
		p.short(), videoInfo.Codec, videoInfo.Width, videoInfo.Height, videoInfo.FrameRate,
		audioInfo.Codec, audioInfo.SampleRate, audioInfo.Channels)

	videoDecoder, err := codec.OpenVideo(videoInfo)
	if err != nil {
		closeSource(src)
		return err
	}
	audioDecoder, err := codec.OpenAudio(audioInfo)
	if err != nil {
		_ = videoDecoder.Close()
		closeSource(src)
		return err
	}
	cleanup := func() {
		_ = videoDecoder.Close()
		_ = audioDecoder.Close()
		closeSource(src)
	}

	format := audio.Format{
		SampleRate: settings.Decode.SampleRate,
		Channels:   settings.Decode.Channels,
		BitDepth:   16,
	}
	sink, err := output.New(settings.Audio.Backend)
	if err != nil {
		cleanup()
		return err
	}
	if err := sink.Open(format, settings.Audio.BufferMs); err != nil {
		cleanup()
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	p.sink = sink

	columns := settings.Display.Columns
	width, height := video.Fit(videoInfo.Width, videoInfo.Height, columns, columns)

	var display media.Display = p.headless
	if p.screen != nil {
		display = p.screen
	}

	p.pipeline, err = player.New(player.Config{
		Source:         src,
		Video:          videoInfo,
		Audio:          audioInfo,
		VideoDecoder:   videoDecoder,
		AudioDecoder:   audioDecoder,
		Scaler:         video.NewScaler(width, height),
		Resampler:      resample.NewConverter(format),
		Display:        display,
		Sink:           sink,
		Volume:         player.NewVolume(settings.Audio.Volume),
		VideoFrames:    settings.Queue.VideoFrames,
		AudioFrames:    settings.Queue.AudioFrames,
		RefreshHz:      settings.Display.RefreshHz,
		PrimingTimeout: settings.Priming(),
		Quiet:          p.config.Quiet,
	})
	if err != nil {
		cleanup()
		return err
	}
	return nil
}

// openSource opens one demuxer for a combined locator or two for a split pair
func (p *Player) openSource(ctx context.Context, locs resolve.Locators) (player.Source, error) {
	packets := p.config.Settings.Queue.Packets

	if !locs.Split() {
		demux, err := p.openVideo(ctx, locs.Video, true)
		if err != nil {
			return nil, err
		}
		return player.Single{Demuxer: demux, Queue: player.NewPacketQueue(packets)}, nil
	}

	videoDemux, err := p.openVideo(ctx, locs.Video, false)
	if err != nil {
		return nil, err
	}

	audioDemux, err := p.openAudio(ctx, locs.Audio)
	if err != nil {
		_ = videoDemux.Close()
		return nil, err
	}

	return player.Split{
		Video:      videoDemux,
		Audio:      audioDemux,
		VideoQueue: player.NewPacketQueue(packets),
		AudioQueue: player.NewPacketQueue(packets),
	}, nil
}

// openVideo opens the primary locator, with its audio when withAudio is set
func (p *Player) openVideo(ctx context.Context, locator string, withAudio bool) (media.Demuxer, error) {
	settings := p.config.Settings

	if source.IsPattern(locator) {
		duration, err := source.ParsePattern(locator)
		if err != nil {
			return nil, media.Wrap(media.KindSourceOpen, locator, err)
		}
		return source.NewTestPattern(source.PatternOptions{
			Width:        settings.Decode.Width,
			FPS:          settings.Decode.FPS,
			SampleRate:   settings.Decode.SampleRate,
			Channels:     settings.Decode.Channels,
			ChunkSamples: settings.Decode.ChunkSamples,
			Duration:     duration,
		}), nil
	}

	info, err := probe.Probe(ctx, settings.FFmpeg.ProbePath, locator)
	if err != nil {
		return nil, err
	}
	if err := info.Require(locator, true, withAudio); err != nil {
		return nil, err
	}
	p.showTitle(info)

	audioInfo := info.Audio
	if !withAudio {
		audioInfo = nil
	}
	return source.NewFFmpeg(locator, p.ffmpegOptions(info.Video, audioInfo))
}

// openAudio reads local mp3/flac natively and hands anything else to ffmpeg
func (p *Player) openAudio(ctx context.Context, locator string) (media.Demuxer, error) {
	settings := p.config.Settings
	if source.IsAudioFile(locator) {
		return source.OpenAudioFile(locator, settings.Decode.ChunkSamples)
	}

	info, err := probe.Probe(ctx, settings.FFmpeg.ProbePath, locator)
	if err != nil {
		return nil, err
	}
	if err := info.Require(locator, false, true); err != nil {
		return nil, err
	}
	return source.NewFFmpeg(locator, p.ffmpegOptions(nil, info.Audio))
}

func (p *Player) showTitle(info *probe.Result) {
	if info.Title != "" {
		p.updateTUI(ui.StatusMsg{Title: info.Title})
	}
}

func (p *Player) ffmpegOptions(videoInfo, audioInfo *media.StreamInfo) source.Options {
	settings := p.config.Settings
	return source.Options{
		Path:         settings.FFmpeg.Path,
		Video:        videoInfo,
		Audio:        audioInfo,
		Width:        settings.Decode.Width,
		FPS:          settings.Decode.FPS,
		SampleRate:   settings.Decode.SampleRate,
		Channels:     settings.Decode.Channels,
		ChunkSamples: settings.Decode.ChunkSamples,
	}
}

// streamsOf picks the video and audio stream descriptions of a source
func streamsOf(src player.Source) (videoInfo, audioInfo media.StreamInfo, err error) {
	var videoDemux, audioDemux media.Demuxer
	switch s := src.(type) {
	case player.Single:
		videoDemux, audioDemux = s.Demuxer, s.Demuxer
	case player.Split:
		videoDemux, audioDemux = s.Video, s.Audio
	default:
		return videoInfo, audioInfo, fmt.Errorf("unknown source type %T", src)
	}

	var haveVideo, haveAudio bool
	for _, st := range videoDemux.Streams() {
		if st.Kind == media.KindVideo {
			videoInfo, haveVideo = st, true
			break
		}
	}
	for _, st := range audioDemux.Streams() {
		if st.Kind == media.KindAudio {
			audioInfo, haveAudio = st, true
			break
		}
	}
	if !haveVideo {
		return videoInfo, audioInfo, media.Errorf(media.KindStreamAbsent, "", "no video stream")
	}
	if !haveAudio {
		return videoInfo, audioInfo, media.Errorf(media.KindStreamAbsent, "", "no audio stream")
	}
	return videoInfo, audioInfo, nil
}

func closeSource(src player.Source) {
	switch s := src.(type) {
	case player.Single:
		_ = s.Demuxer.Close()
	case player.Split:
		_ = s.Video.Close()
		_ = s.Audio.Close()
	}
}

// handleControls applies key commands from the TUI
func (p *Player) handleControls() {
	for {
		select {
		case cmd := <-p.controls.Commands:
			p.updateTUI(applyCommand(p.pipeline, cmd))
		case <-p.ctx.Done():
			return
		}
	}
}

// applyCommand acts on one key command and returns the status to show
func applyCommand(c controller, cmd ui.Command) ui.StatusMsg {
	switch cmd.Kind {
	case ui.CommandPause:
		state, err := c.TogglePause()
		if err != nil {
			log.Printf("Pause ignored: %v", err)
		}
		return ui.StatusMsg{State: state.String()}

	case ui.CommandVolume:
		c.Volume().SetVolume(cmd.Volume)
		volume := c.Volume().GetVolume()
		return ui.StatusMsg{Volume: &volume}

	case ui.CommandMute:
		vol := c.Volume()
		if vol.IsMuted() != cmd.Muted {
			vol.ToggleMute()
		}
		muted := vol.IsMuted()
		return ui.StatusMsg{Muted: &muted}
	}
	return ui.StatusMsg{}
}

// statsLoop periodically updates the TUI with playback statistics
func (p *Player) statsLoop() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var ticks int
	for {
		select {
		case <-ticker.C:
			stats := p.pipeline.Stats()
			p.updateTUI(statsMsg(stats))

			ticks++
			if p.tuiProg == nil && !p.config.Quiet && ticks%20 == 0 {
				log.Printf("[%s] %v t=%.1fs video=%d audio=%d queues=%d/%d/%d errors=%d",
					p.short(), stats.State, stats.AudioTime, stats.VideoFrames, stats.AudioFrames,
					stats.PacketQueue, stats.VideoQueue, stats.AudioQueue, stats.Errors)
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func statsMsg(s player.Stats) ui.StatsMsg {
	return ui.StatsMsg{
		AudioTime:   s.AudioTime,
		VideoFrames: s.VideoFrames,
		AudioFrames: s.AudioFrames,
		Skipped:     s.Skipped,
		Errors:      s.Errors,
		PacketQueue: s.PacketQueue,
		VideoQueue:  s.VideoQueue,
		AudioQueue:  s.AudioQueue,
	}
}

func (p *Player) logSummary() {
	if p.pipeline == nil {
		return
	}
	s := p.pipeline.Stats()
	log.Printf("[%s] Playback ended: state=%v time=%.2fs video_frames=%d audio_frames=%d skipped=%d errors=%d",
		p.short(), s.State, s.AudioTime, s.VideoFrames, s.AudioFrames, s.Skipped, s.Errors)
	if p.headless != nil {
		log.Printf("[%s] Displayed %d pictures", p.short(), p.headless.Frames())
	}
}

// updateTUI forwards a message to the TUI if it is running
func (p *Player) updateTUI(msg tea.Msg) {
	if p.tuiProg != nil {
		p.tuiProg.Send(msg)
	}
}

func (p *Player) short() string {
	return p.session[:8]
}
