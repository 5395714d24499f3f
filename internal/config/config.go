// ABOUTME: YAML configuration for the reel player
// ABOUTME: Loads queue, decode, display, audio, resolver and ffmpeg settings with defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk player configuration.
type Config struct {
	Queue    QueueConfig    `yaml:"queue"`
	Decode   DecodeConfig   `yaml:"decode"`
	Display  DisplayConfig  `yaml:"display"`
	Audio    AudioConfig    `yaml:"audio"`
	Resolver ResolverConfig `yaml:"resolver"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
}

type QueueConfig struct {
	Packets     int `yaml:"packets"`      // compressed packet ring slots
	VideoFrames int `yaml:"video_frames"` // decoded video frame slots
	AudioFrames int `yaml:"audio_frames"` // decoded audio frame slots
}

type DecodeConfig struct {
	Width        int `yaml:"width"`         // decode width in pixels
	FPS          int `yaml:"fps"`           // 0 keeps the stream rate
	SampleRate   int `yaml:"sample_rate"`   // decoded audio rate
	Channels     int `yaml:"channels"`      // decoded audio channels
	ChunkSamples int `yaml:"chunk_samples"` // samples per channel per audio packet
}

type DisplayConfig struct {
	Columns        int    `yaml:"columns"`
	RefreshHz      int    `yaml:"refresh_hz"`
	PrimingTimeout string `yaml:"priming_timeout"` // e.g. "2s"
}

type AudioConfig struct {
	Backend  string `yaml:"backend"` // oto, malgo
	BufferMs int    `yaml:"buffer_ms"`
	Volume   int    `yaml:"volume"` // 0-100
}

type ResolverConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type FFmpegConfig struct {
	Path      string `yaml:"path"`
	ProbePath string `yaml:"probe_path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Queue: QueueConfig{
			Packets:     64,
			VideoFrames: 8,
			AudioFrames: 32,
		},
		Decode: DecodeConfig{
			Width:        320,
			SampleRate:   48000,
			Channels:     2,
			ChunkSamples: 1024,
		},
		Display: DisplayConfig{
			Columns:        96,
			RefreshHz:      60,
			PrimingTimeout: "2s",
		},
		Audio: AudioConfig{
			Backend:  "oto",
			BufferMs: 120,
			Volume:   100,
		},
		Resolver: ResolverConfig{
			Command: "yt-dlp",
			Args:    []string{"-g", "-f", "bv*+ba/b"},
		},
		FFmpeg: FFmpegConfig{
			Path:      "ffmpeg",
			ProbePath: "ffprobe",
		},
	}
}

// Load reads path over the defaults. An empty path or a file that does
// not exist yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Priming returns the parsed priming timeout, zero when unset.
func (c *Config) Priming() time.Duration {
	d, err := time.ParseDuration(c.Display.PrimingTimeout)
	if err != nil {
		return 0
	}
	return d
}
