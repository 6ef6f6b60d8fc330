// Package main is the nesgo command-line front end: a cobra CLI wrapping the
// internal/console engine and the internal/demo ebiten shell.
package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"nesgo/internal/config"
	"nesgo/internal/console"
	"nesgo/internal/demo"
	"nesgo/internal/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var scale int
	var mute bool

	root := &cobra.Command{
		Use:   "nesgo",
		Short: "A Go NES emulator",
	}

	runCmd := &cobra.Command{
		Use:   "run <rom>",
		Short: "Load a ROM and run it in a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runROM(args[0], configPath, scale, mute)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to a JSON config file")
	runCmd.Flags().IntVar(&scale, "scale", 0, "window scale factor (overrides config, 0 = use config)")
	runCmd.Flags().BoolVar(&mute, "mute", false, "disable audio output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			version.PrintBuildInfo()
			return nil
		},
	}

	root.AddCommand(runCmd, versionCmd)
	return root
}

func runROM(romPath, configPath string, scaleOverride int, mute bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if scaleOverride > 0 {
		cfg.Window.Scale = scaleOverride
	}
	if mute {
		cfg.Audio.Mute = true
	}

	romBytes, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM %s: %w", romPath, err)
	}

	c, err := console.New(romBytes)
	if err != nil {
		return fmt.Errorf("loading ROM %s: %w", romPath, err)
	}

	game, err := demo.New(c, cfg)
	if err != nil {
		return fmt.Errorf("starting demo shell: %w", err)
	}

	fmt.Printf("nesgo %s running %s\n", console.Version(), romPath)
	return ebiten.RunGame(game)
}
