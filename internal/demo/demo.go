// Package demo is the only place in this repository that imports ebiten: it
// drives a loaded console.Console through ebiten's Update/Draw loop, resolves
// the palette-index framebuffer to RGB, upscales it with x/image/draw, and
// streams downsampled audio to an ebiten audio.Player.
package demo

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"golang.org/x/image/draw"

	"nesgo/internal/config"
	"nesgo/internal/console"
	"nesgo/internal/input"
	"nesgo/internal/ppu"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// Game implements ebiten.Game around a running console.Console.
type Game struct {
	console *console.Console
	cfg     config.Config

	rgba   *image.RGBA // one resolved NES frame at native resolution
	scaled *image.RGBA // rgba upscaled by cfg.Window.Scale
	screen *ebiten.Image

	stream *sampleStream
	player *audio.Player
}

// New builds a Game around an already-loaded Console and starts its audio
// player. The caller still has to call ebiten.RunGame(game).
func New(c *console.Console, cfg config.Config) (*Game, error) {
	scale := cfg.Window.Scale
	if scale < 1 {
		scale = 1
	}
	c.SetSampleRate(cfg.Audio.SampleRate)

	g := &Game{
		console: c,
		cfg:     cfg,
		rgba:    image.NewRGBA(image.Rect(0, 0, nesWidth, nesHeight)),
		scaled:  image.NewRGBA(image.Rect(0, 0, nesWidth*scale, nesHeight*scale)),
		screen:  ebiten.NewImage(nesWidth*scale, nesHeight*scale),
	}

	if cfg.Audio.Enabled {
		audioCtx := audio.NewContext(cfg.Audio.SampleRate)
		g.stream = newSampleStream()
		player, err := audioCtx.NewPlayer(g.stream)
		if err != nil {
			return nil, fmt.Errorf("creating audio player: %w", err)
		}
		player.Play()
		g.player = player
	}

	ebiten.SetWindowTitle("nesgo")
	ebiten.SetWindowSize(nesWidth*scale, nesHeight*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Window.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return g, nil
}

// Update implements ebiten.Game: one call clocks exactly one NES frame and
// queues its audio for the stream.
func (g *Game) Update() error {
	pads := console.Pads{P1: readPad()}
	samples := g.console.ClockFrame(pads)
	if g.stream != nil {
		g.stream.push(samples, g.cfg.Audio.Mute)
	}
	return nil
}

// readPad maps the default keyboard layout to the first controller port.
func readPad() input.Buttons {
	return input.Buttons{
		Up:     ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:   ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:   ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:  ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		A:      ebiten.IsKeyPressed(ebiten.KeyZ),
		B:      ebiten.IsKeyPressed(ebiten.KeyX),
		Start:  ebiten.IsKeyPressed(ebiten.KeyEnter),
		Select: ebiten.IsKeyPressed(ebiten.KeyShiftLeft),
	}
}

// Draw implements ebiten.Game: resolve the palette-index framebuffer to RGB,
// upscale it with x/image/draw's nearest-neighbor scaler (NES pixel art
// should stay blocky, not blurred), and blit the result.
func (g *Game) Draw(screen *ebiten.Image) {
	fb := g.console.Screen()
	for i, idx := range fb {
		rgb := ppu.SystemPalette[idx&0x3F]
		g.rgba.SetRGBA(i%nesWidth, i/nesWidth, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF})
	}

	draw.NearestNeighbor.Scale(g.scaled, g.scaled.Bounds(), g.rgba, g.rgba.Bounds(), draw.Over, nil)
	g.screen.WritePixels(g.scaled.Pix)
	screen.DrawImage(g.screen, nil)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := g.cfg.Window.Scale
	if scale < 1 {
		scale = 1
	}
	return nesWidth * scale, nesHeight * scale
}
