// ABOUTME: Locator resolution through an external command
// ABOUTME: Turns a page URL into one combined or two separate media locators
package resolve

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// Locators is the resolver's answer. Audio is empty for a combined stream.
type Locators struct {
	Video string
	Audio string
}

// Split reports whether video and audio come from separate locators
func (l Locators) Split() bool {
	return l.Audio != ""
}

// Resolver runs a yt-dlp style command that prints one locator per line
type Resolver struct {
	Command string
	Args    []string
}

// NeedsResolving reports whether target is a remote page rather than a local
// file or a direct stream the demuxer can open
func NeedsResolving(target string) bool {
	if !strings.Contains(target, "://") {
		return false
	}
	if _, err := os.Stat(target); err == nil {
		return false
	}
	lower := strings.ToLower(target)
	for _, ext := range []string{".m3u8", ".mpd", ".mp4", ".mkv", ".webm", ".mov", ".ts"} {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}

// Resolve runs the command with target as the last argument
func (r *Resolver) Resolve(ctx context.Context, target string) (Locators, error) {
	args := append(append([]string{}, r.Args...), target)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Printf("Resolving %s via %s", target, r.Command)
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		return Locators{}, media.Errorf(media.KindSourceOpen, target, "%s failed: %v %s", r.Command, err, msg)
	}

	locs, err := ParseOutput(out)
	if err != nil {
		return Locators{}, media.Wrap(media.KindSourceOpen, target, err)
	}
	return locs, nil
}

// ParseOutput reads one or two non-empty lines
func ParseOutput(out []byte) (Locators, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Locators{}, fmt.Errorf("read resolver output: %w", err)
	}

	switch len(lines) {
	case 1:
		return Locators{Video: lines[0]}, nil
	case 2:
		return Locators{Video: lines[0], Audio: lines[1]}, nil
	case 0:
		return Locators{}, fmt.Errorf("resolver printed no locators")
	default:
		return Locators{}, fmt.Errorf("resolver printed %d locators, expected 1 or 2", len(lines))
	}
}
