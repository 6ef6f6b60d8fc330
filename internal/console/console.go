// Package console ties the CPU, PPU, APU, and CPU bus together behind the
// one clock a host needs to drive: a 3:1 master-tick divider plus a
// per-frame driver that also downsamples audio to a host-friendly rate.
package console

import (
	"bytes"

	"nesgo/internal/apu"
	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
	"nesgo/internal/ppu"
	"nesgo/internal/version"
)

// LoadError is re-exported so callers of New never need to import
// internal/cartridge just to type-switch on a load failure.
type LoadError = cartridge.LoadError

// Pads carries both controller ports' button state for one Clock/ClockFrame
// call.
type Pads struct {
	P1, P2 input.Buttons
}

const (
	cpuFrequency = 1789773.0 // NTSC CPU Hz
	targetRate   = 44100     // default host sample rate
)

// Console owns every emulated component. The CPU and APU keep no references
// between clock calls and receive the bus on each call; the bus keeps
// references to the PPU, APU, controllers and cartridge, and the PPU keeps
// one to the cartridge.
type Console struct {
	cpu  *cpu.CPU
	ppu  *ppu.PPU
	apu  *apu.APU
	bus  *bus.Bus
	cart *cartridge.Cartridge
	in   *input.InputState

	phase     uint8 // 0..2, which master tick within the current CPU cycle
	lastFrame uint64

	sampleRate   int
	accumulator  float64 // fractional CPU-cycles-per-output-sample accumulator
	pending      float64 // running sum of raw samples folded into the next output sample
	pendingCount int

	audioBuf []float32
}

// New loads romBytes as an iNES image and returns a ready-to-clock Console,
// or the *LoadError cartridge.Load produced.
func New(romBytes []byte) (*Console, error) {
	cart, err := cartridge.Load(bytes.NewReader(romBytes))
	if err != nil {
		return nil, err
	}

	c := &Console{
		cpu:        cpu.New(),
		ppu:        ppu.New(),
		apu:        apu.New(),
		cart:       cart,
		in:         input.NewInputState(),
		sampleRate: targetRate,
		audioBuf:   make([]float32, 0, 800),
	}
	c.ppu.AttachCartridge(cart)
	c.bus = bus.New(c.ppu, c.apu, c.in, cart)
	c.cpu.Reset(c.bus)
	return c, nil
}

// Version reports the engine version string, so the demo shell's one place
// to ask for it doesn't need its own import of internal/version.
func Version() string { return version.GetVersion() }

// Screen returns the PPU's palette-index framebuffer.
func (c *Console) Screen() *[256 * 240]uint8 {
	return c.ppu.Screen()
}

// SetSampleRate changes the host sample rate the downsampler targets.
func (c *Console) SetSampleRate(rate int) {
	c.sampleRate = rate
	c.accumulator = 0
	c.pending = 0
	c.pendingCount = 0
}

// Clock advances exactly one master tick (one PPU dot). Every third call the
// CPU advances one micro-step and the APU advances one cycle. It reports
// whether this tick completed a frame and, if a downsampled audio sample was
// produced on this tick, that sample.
func (c *Console) Clock(pads Pads) (endOfFrame bool, sample float32, sampleReady bool) {
	c.in.SetButtons1(pads.P1)
	c.in.SetButtons2(pads.P2)

	c.ppu.Step()

	c.cpu.SetNMI(c.ppu.NMILine())

	if c.phase == 0 {
		c.cpu.Step(c.bus, c.apu.IRQLine())
		raw := c.apu.Step(c.bus)
		sample, sampleReady = c.downsample(raw)
	}
	c.phase = (c.phase + 1) % 3

	frame := c.ppu.FrameCount()
	if frame != c.lastFrame {
		endOfFrame = true
		c.lastFrame = frame
	}
	return endOfFrame, sample, sampleReady
}

// downsample integrates raw per-CPU-cycle APU samples into a running
// average and emits one output sample whenever the fractional accumulator
// has collected cpuFrequency/sampleRate raw samples (~40.58 at 44.1kHz),
// matching the source's running-average bucket approach.
func (c *Console) downsample(raw float32) (float32, bool) {
	bucketSize := cpuFrequency / float64(c.sampleRate)

	c.pending += float64(raw)
	c.pendingCount++
	c.accumulator++

	if c.accumulator >= bucketSize {
		c.accumulator -= bucketSize
		out := float32(c.pending / float64(c.pendingCount))
		c.pending = 0
		c.pendingCount = 0
		return out, true
	}
	return 0, false
}

// ClockFrame runs master ticks until the PPU reports end-of-frame and
// returns this frame's downsampled audio, borrowing the Console's
// pre-allocated audio buffer (its contents are only valid until the next
// ClockFrame call).
func (c *Console) ClockFrame(pads Pads) []float32 {
	c.audioBuf = c.audioBuf[:0]
	for {
		endOfFrame, sample, ready := c.Clock(pads)
		if ready {
			c.audioBuf = append(c.audioBuf, sample)
		}
		if endOfFrame {
			break
		}
	}
	return c.audioBuf
}
