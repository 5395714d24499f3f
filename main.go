// ABOUTME: Entry point for the reel player
// ABOUTME: Parses CLI flags, loads configuration and starts playback
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/Resonate-Protocol/reel/internal/app"
	"github.com/Resonate-Protocol/reel/internal/config"
	"github.com/Resonate-Protocol/reel/internal/version"
)

func main() {
	flag.Usage = help
	flag.Parse()

	if flagHelp {
		help()
		return
	}
	if flagVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}
	if flag.NArg() != 1 {
		help()
		fatal("expected exactly one path or URL, got %d", flag.NArg())
	}

	settings, err := config.Load(flagConfig)
	if err != nil {
		fatal("%v", err)
	}
	if err := applyFlags(flag.CommandLine, settings); err != nil {
		fatal("%v", err)
	}

	useTUI := !flagNoTUI

	// Set up logging
	f, err := os.OpenFile(flagLogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fatal("opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	player := app.New(app.Config{
		Target:    flag.Arg(0),
		AudioPath: flagAudio,
		Settings:  settings,
		UseTUI:    useTUI,
		Quiet:     flagQuiet,
	})

	if err := player.Run(); err != nil {
		log.Printf("Playback failed: %v", err)
		_ = f.Close()
		fatal("%v", err)
	}
}

// applyFlags overrides file settings with flags given on the command line
func applyFlags(fs *flag.FlagSet, settings *config.Config) error {
	if fs.Changed("backend") {
		settings.Audio.Backend = flagBackend
	}
	if fs.Changed("columns") {
		settings.Display.Columns = flagColumns
	}
	if fs.Changed("volume") {
		settings.Audio.Volume = flagVolume
	}
	if fs.Changed("resolver-arg") {
		settings.Resolver.Args = append(append([]string{}, settings.Resolver.Args...), flagResolverArg...)
	}
	return config.Validate(settings)
}
