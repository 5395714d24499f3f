// ABOUTME: Configuration validation
// ABOUTME: Fills zero values with defaults and rejects out-of-range settings
package config

import (
	"fmt"
	"time"
)

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	def := Default()

	// Queues need at least one usable slot, so two ring slots minimum
	if cfg.Queue.Packets == 0 {
		cfg.Queue.Packets = def.Queue.Packets
	}
	if cfg.Queue.VideoFrames == 0 {
		cfg.Queue.VideoFrames = def.Queue.VideoFrames
	}
	if cfg.Queue.AudioFrames == 0 {
		cfg.Queue.AudioFrames = def.Queue.AudioFrames
	}
	for name, n := range map[string]int{
		"queue.packets":      cfg.Queue.Packets,
		"queue.video_frames": cfg.Queue.VideoFrames,
		"queue.audio_frames": cfg.Queue.AudioFrames,
	} {
		if n < 2 {
			return fmt.Errorf("%s must be >= 2, got %d", name, n)
		}
	}

	// Decode
	if cfg.Decode.Width == 0 {
		cfg.Decode.Width = def.Decode.Width
	}
	if cfg.Decode.Width < 2 {
		return fmt.Errorf("decode.width must be >= 2, got %d", cfg.Decode.Width)
	}
	if cfg.Decode.FPS < 0 {
		return fmt.Errorf("decode.fps must be >= 0")
	}
	if cfg.Decode.SampleRate == 0 {
		cfg.Decode.SampleRate = def.Decode.SampleRate
	}
	if cfg.Decode.SampleRate < 8000 || cfg.Decode.SampleRate > 192000 {
		return fmt.Errorf("decode.sample_rate must be between 8000 and 192000, got %d", cfg.Decode.SampleRate)
	}
	if cfg.Decode.Channels == 0 {
		cfg.Decode.Channels = def.Decode.Channels
	}
	if cfg.Decode.Channels < 1 || cfg.Decode.Channels > 2 {
		return fmt.Errorf("decode.channels must be 1 or 2, got %d", cfg.Decode.Channels)
	}
	if cfg.Decode.ChunkSamples == 0 {
		cfg.Decode.ChunkSamples = def.Decode.ChunkSamples
	}
	if cfg.Decode.ChunkSamples < 0 {
		return fmt.Errorf("decode.chunk_samples must be > 0")
	}

	// Display
	if cfg.Display.Columns == 0 {
		cfg.Display.Columns = def.Display.Columns
	}
	if cfg.Display.Columns < 8 {
		return fmt.Errorf("display.columns must be >= 8, got %d", cfg.Display.Columns)
	}
	if cfg.Display.RefreshHz == 0 {
		cfg.Display.RefreshHz = def.Display.RefreshHz
	}
	if cfg.Display.RefreshHz < 1 || cfg.Display.RefreshHz > 1000 {
		return fmt.Errorf("display.refresh_hz must be between 1 and 1000, got %d", cfg.Display.RefreshHz)
	}
	if cfg.Display.PrimingTimeout == "" {
		cfg.Display.PrimingTimeout = def.Display.PrimingTimeout
	}
	d, err := time.ParseDuration(cfg.Display.PrimingTimeout)
	if err != nil {
		return fmt.Errorf("display.priming_timeout: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("display.priming_timeout must not be negative")
	}

	// Audio
	if cfg.Audio.Backend == "" {
		cfg.Audio.Backend = def.Audio.Backend
	}
	switch cfg.Audio.Backend {
	case "oto", "malgo":
	default:
		return fmt.Errorf("audio.backend must be oto or malgo, got %q", cfg.Audio.Backend)
	}
	if cfg.Audio.BufferMs == 0 {
		cfg.Audio.BufferMs = def.Audio.BufferMs
	}
	if cfg.Audio.BufferMs < 10 {
		return fmt.Errorf("audio.buffer_ms must be >= 10, got %d", cfg.Audio.BufferMs)
	}
	if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 100 {
		return fmt.Errorf("audio.volume must be between 0 and 100, got %d", cfg.Audio.Volume)
	}

	// Resolver and ffmpeg
	if cfg.Resolver.Command == "" {
		cfg.Resolver.Command = def.Resolver.Command
	}
	if cfg.Resolver.Args == nil {
		cfg.Resolver.Args = def.Resolver.Args
	}
	if cfg.FFmpeg.Path == "" {
		cfg.FFmpeg.Path = def.FFmpeg.Path
	}
	if cfg.FFmpeg.ProbePath == "" {
		cfg.FFmpeg.ProbePath = def.FFmpeg.ProbePath
	}

	return nil
}
