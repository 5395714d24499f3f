// ABOUTME: Stream probing via ffprobe
// ABOUTME: Reads stream parameters of a locator into media.StreamInfo values
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// Result holds the first video and audio stream of a locator
type Result struct {
	Video    *media.StreamInfo
	Audio    *media.StreamInfo
	Duration float64 // seconds, 0 if unknown
	Title    string
}

// Require checks that the wanted streams are present
func (r *Result) Require(locator string, video, audio bool) error {
	if video && r.Video == nil {
		return media.Errorf(media.KindStreamAbsent, locator, "no video stream")
	}
	if audio && r.Audio == nil {
		return media.Errorf(media.KindStreamAbsent, locator, "no audio stream")
	}
	return nil
}

// ffprobe -print_format json output
type output struct {
	Streams []struct {
		Index         int    `json:"index"`
		CodecType     string `json:"codec_type"`
		CodecName     string `json:"codec_name"`
		TimeBase      string `json:"time_base"`
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		AvgFrameRate  string `json:"avg_frame_rate"`
		RealFrameRate string `json:"r_frame_rate"`
		SampleRate    string `json:"sample_rate"`
		Channels      int    `json:"channels"`
		FrameSize     int    `json:"frame_size"`
	} `json:"streams"`
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// Probe runs ffprobe on locator
func Probe(ctx context.Context, ffprobe, locator string) (*Result, error) {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		locator,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, media.Errorf(media.KindSourceOpen, locator, "ffprobe failed: %v: %s", err, msg)
		}
		return nil, media.Errorf(media.KindSourceOpen, locator, "ffprobe failed: %w", err)
	}

	res, err := Parse(out)
	if err != nil {
		return nil, media.Wrap(media.KindStreamInfo, locator, err)
	}
	return res, nil
}

// Parse decodes ffprobe JSON output
func Parse(data []byte) (*Result, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid ffprobe output: %w", err)
	}

	res := &Result{}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if res.Video != nil {
				continue
			}
			tb, err := ParseRational(s.TimeBase)
			if err != nil {
				return nil, fmt.Errorf("video stream %d time base: %w", s.Index, err)
			}
			// avg_frame_rate is 0/0 for some containers
			rate, err := ParseRational(s.AvgFrameRate)
			if err != nil || !rate.Valid() {
				rate, _ = ParseRational(s.RealFrameRate)
			}
			if s.Width <= 0 || s.Height <= 0 {
				return nil, fmt.Errorf("video stream %d has no dimensions", s.Index)
			}
			res.Video = &media.StreamInfo{
				Index:     s.Index,
				Kind:      media.KindVideo,
				Codec:     s.CodecName,
				TimeBase:  tb,
				Width:     s.Width,
				Height:    s.Height,
				FrameRate: rate,
			}
		case "audio":
			if res.Audio != nil {
				continue
			}
			tb, err := ParseRational(s.TimeBase)
			if err != nil {
				return nil, fmt.Errorf("audio stream %d time base: %w", s.Index, err)
			}
			rate, err := strconv.Atoi(s.SampleRate)
			if err != nil || rate <= 0 {
				return nil, fmt.Errorf("audio stream %d has invalid sample rate %q", s.Index, s.SampleRate)
			}
			if s.Channels <= 0 {
				return nil, fmt.Errorf("audio stream %d has no channels", s.Index)
			}
			res.Audio = &media.StreamInfo{
				Index:      s.Index,
				Kind:       media.KindAudio,
				Codec:      s.CodecName,
				TimeBase:   tb,
				SampleRate: rate,
				Channels:   s.Channels,
				FrameSize:  s.FrameSize,
			}
		}
	}

	if out.Format.Duration != "" {
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			res.Duration = d
		}
	}
	for k, v := range out.Format.Tags {
		if strings.EqualFold(k, "title") {
			res.Title = v
		}
	}
	return res, nil
}

// ParseRational parses "num/den" or a plain integer
func ParseRational(s string) (media.Rational, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		den = "1"
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return media.Rational{}, fmt.Errorf("invalid rational %q", s)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return media.Rational{}, fmt.Errorf("invalid rational %q", s)
	}
	return media.Rational{Num: n, Den: d}, nil
}
