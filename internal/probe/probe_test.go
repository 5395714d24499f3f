// ABOUTME: Tests for ffprobe output parsing
// ABOUTME: Covers stream selection, frame rate fallback and missing streams
package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

const sample = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "time_base": "1/15360",
     "width": 1280, "height": 720, "avg_frame_rate": "0/0", "r_frame_rate": "30/1"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "time_base": "1/44100",
     "sample_rate": "44100", "channels": 2, "frame_size": 1024},
    {"index": 2, "codec_type": "audio", "codec_name": "opus", "time_base": "1/48000",
     "sample_rate": "48000", "channels": 2},
    {"index": 3, "codec_type": "subtitle", "codec_name": "ass"}
  ],
  "format": {"duration": "61.500000", "tags": {"TITLE": "Big Buck Bunny"}}
}`

func TestParse(t *testing.T) {
	res, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	v := res.Video
	if v == nil {
		t.Fatal("expected video stream")
	}
	if v.Index != 0 || v.Codec != "h264" || v.Width != 1280 || v.Height != 720 {
		t.Errorf("unexpected video stream: %+v", v)
	}
	if v.TimeBase != (media.Rational{Num: 1, Den: 15360}) {
		t.Errorf("unexpected time base %v", v.TimeBase)
	}
	if v.FrameRate != (media.Rational{Num: 30, Den: 1}) {
		t.Errorf("expected r_frame_rate fallback 30/1, got %v", v.FrameRate)
	}

	a := res.Audio
	if a == nil || a.Index != 1 || a.SampleRate != 44100 || a.Channels != 2 || a.FrameSize != 1024 {
		t.Errorf("expected first audio stream, got %+v", a)
	}

	if res.Duration != 61.5 {
		t.Errorf("expected duration 61.5, got %v", res.Duration)
	}
	if res.Title != "Big Buck Bunny" {
		t.Errorf("expected title, got %q", res.Title)
	}
}

func TestParseRejectsBrokenStreams(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `ffprobe: command not found`},
		{"bad time base", `{"streams":[{"codec_type":"video","time_base":"x","width":2,"height":2}]}`},
		{"no dimensions", `{"streams":[{"codec_type":"video","time_base":"1/25"}]}`},
		{"bad sample rate", `{"streams":[{"codec_type":"audio","time_base":"1/8000","sample_rate":"N/A","channels":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRequire(t *testing.T) {
	res := &Result{Video: &media.StreamInfo{}}

	if err := res.Require("a.mkv", true, false); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := res.Require("a.mkv", true, true)
	if !errors.Is(err, media.ErrStreamAbsent) {
		t.Errorf("expected stream absent error, got %v", err)
	}
}

func TestParseRational(t *testing.T) {
	tests := []struct {
		in      string
		want    media.Rational
		wantErr bool
	}{
		{"30000/1001", media.Rational{Num: 30000, Den: 1001}, false},
		{"25", media.Rational{Num: 25, Den: 1}, false},
		{"0/0", media.Rational{}, false},
		{"", media.Rational{}, true},
		{"a/b", media.Rational{}, true},
	}
	for _, tt := range tests {
		got, err := ParseRational(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRational(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRational(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProbeMissingBinary(t *testing.T) {
	_, err := Probe(context.Background(), "/nonexistent/ffprobe", "a.mkv")
	if !errors.Is(err, media.ErrSourceOpen) {
		t.Errorf("expected source open error, got %v", err)
	}
}
