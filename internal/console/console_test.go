package console

import "testing"

// buildROM assembles a minimal one-bank NROM image: header, 16KB PRG with
// `code` at the start (mirrored at $C000 too) and a reset vector pointing at
// $8000, plus an empty 8KB CHR bank.
func buildROM(code []byte) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, 16384)
	copy(prg, code)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	chr := make([]byte, 8192)

	rom := append([]byte{}, header...)
	rom = append(rom, prg...)
	rom = append(rom, chr...)
	return rom
}

func TestNew_RejectsGarbageHeader(t *testing.T) {
	if _, err := New([]byte("not a rom")); err == nil {
		t.Fatalf("expected a LoadError for a garbage header")
	}
}

func TestClockFrame_ResetVectorJumpLeavesFrameBufferBlank(t *testing.T) {
	rom := buildROM([]byte{0x4C, 0x00, 0x80}) // JMP $8000
	c, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.ClockFrame(Pads{})

	screen := c.Screen()
	for i, px := range screen {
		if px != 0 {
			t.Fatalf("frameBuffer[%d] = %#x, want 0 (PPUMASK left rendering off)", i, px)
			break
		}
	}
}

func TestClockFrame_ProducesAFullFrameOfAudioSamples(t *testing.T) {
	rom := buildROM([]byte{0x4C, 0x00, 0x80})
	c, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	samples := c.ClockFrame(Pads{})
	if len(samples) < 700 || len(samples) > 770 {
		t.Fatalf("got %d samples per frame, want ~735 (44100Hz/60.098fps)", len(samples))
	}
	for _, s := range samples {
		if s < 0 || s > 1 {
			t.Fatalf("sample %v outside the documented [0,1] mixer range", s)
		}
	}
}

func TestClock_ReportsEndOfFrameOncePerPPUFrame(t *testing.T) {
	rom := buildROM([]byte{0x4C, 0x00, 0x80})
	c, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	frames := 0
	for i := 0; i < 89342*2; i++ { // exactly two PPU frames of master ticks
		endOfFrame, _, _ := c.Clock(Pads{})
		if endOfFrame {
			frames++
		}
	}
	if frames < 1 || frames > 2 {
		t.Fatalf("end-of-frame fired %d times over ~2 frames of ticks", frames)
	}
}
