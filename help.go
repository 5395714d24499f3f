// ABOUTME: Command-line flags and help text for reel
// ABOUTME: Declares pflag options and prints colored usage and errors
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagConfig      string
	flagQuiet       bool
	flagNoTUI       bool
	flagLogFile     string
	flagAudio       string
	flagResolverArg []string
	flagBackend     string
	flagColumns     int
	flagVolume      int
	flagHelp        bool
	flagVersion     bool
)

func init() {
	flag.StringVarP(&flagConfig, "config", "c", "reel.yaml", "Configuration file")
	flag.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress transient decode warnings")
	flag.BoolVar(&flagNoTUI, "no-tui", false, "Disable TUI, stream logs instead")
	flag.StringVar(&flagLogFile, "log-file", "reel.log", "Log file path")
	flag.StringVarP(&flagAudio, "audio", "a", "", "Separate audio track (mp3, flac or any ffmpeg input)")
	flag.StringArrayVar(&flagResolverArg, "resolver-arg", nil, "Argument passed to the resolver (repeatable)")
	flag.StringVar(&flagBackend, "backend", "", "Audio backend: oto or malgo")
	flag.IntVar(&flagColumns, "columns", 0, "Picture width in terminal columns")
	flag.IntVar(&flagVolume, "volume", 0, "Initial volume (0-100)")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Synchronized audio/video playback in the terminal

Usage: reel [OPTION]... <path|url>

Source:
  -a, --audio=FILE          Play audio from a separate file or URL
      --resolver-arg=ARG    Extra argument for the page resolver (repeatable)

Output:
      --backend=NAME        Audio backend: oto, malgo (default: oto)
      --columns=NUM         Picture width in terminal columns (default: 96)
      --volume=NUM          Initial volume 0-100 (default: 100)
      --no-tui              Disable the TUI and log to stderr

Miscellaneous:
  -c, --config=FILE         Configuration file (default: reel.yaml)
      --log-file=FILE       Log file (default: reel.log)
  -q, --quiet               Suppress transient decode warnings
  -h, --help                Prints this help message and exits
  -v, --version             Prints version information and exits

Keys: space pause, up/down volume, m mute, q quit`

// help prints usage
func help() {
	color.New(color.FgCyan, color.Bold).Println("reel")
	fmt.Println(helpString)
}

// fatal prints an error in red and exits with status 1
func fatal(format string, args ...any) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(os.Stderr, "error: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
