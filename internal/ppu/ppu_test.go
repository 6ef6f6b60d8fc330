package ppu

import (
	"testing"

	"nesgo/internal/cartridge"
)

// fakeCart is a minimal CHR-RAM cartridge stand-in for PPU tests.
type fakeCart struct {
	chr  [0x2000]uint8
	mode cartridge.MirrorMode
}

func (c *fakeCart) ReadCHR(address uint16) uint8         { return c.chr[address] }
func (c *fakeCart) WriteCHR(address uint16, value uint8) { c.chr[address] = value }
func (c *fakeCart) Mirroring() cartridge.MirrorMode     { return c.mode }

func newTestPPU() (*PPU, *fakeCart) {
	cart := &fakeCart{mode: cartridge.MirrorHorizontal}
	p := New()
	p.AttachCartridge(cart)
	return p, cart
}

func TestPPUSTATUS_ReadClearsVBlankAndLatchButNotSprite0Hit(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuStatus = 0xE0 // VBL + sprite0hit + overflow all set
	p.w = true

	status := p.ReadRegister(0x2002)
	if status != 0xE0 {
		t.Fatalf("read value = %#x, want $E0 (raw status)", status)
	}
	if p.ppuStatus&0x80 != 0 {
		t.Fatalf("VBL flag should be cleared by the read")
	}
	if p.ppuStatus&0x40 == 0 {
		t.Fatalf("sprite 0 hit must survive a PPUSTATUS read; only pre-render dot 1 clears it")
	}
	if p.w {
		t.Fatalf("write latch must be reset by a PPUSTATUS read")
	}
}

func TestSprite0HitAndOverflowClearAtPreRenderNotAtVBlankSet(t *testing.T) {
	p, _ := newTestPPU()
	p.sprite0Hit = true
	p.spriteOverflow = true
	p.ppuStatus = 0x60

	p.scanline, p.cycle = 241, 0
	p.Step() // advances to scanline 241, cycle 1: VBL sets
	if !p.sprite0Hit || p.ppuStatus&0x40 == 0 {
		t.Fatalf("sprite 0 hit must still be set right after VBlank start")
	}

	p.scanline, p.cycle = preRenderLine, 0
	p.Step() // advances to the pre-render line, cycle 1: clears both flags
	if p.sprite0Hit || p.spriteOverflow {
		t.Fatalf("sprite 0 hit / overflow must clear at pre-render dot 1")
	}
	if p.ppuStatus&0x60 != 0 {
		t.Fatalf("PPUSTATUS bits 5/6 must be clear after pre-render dot 1, got %#x", p.ppuStatus)
	}
}

func TestNMILine_TracksCtrlEnableAndVBlankLevel(t *testing.T) {
	p, _ := newTestPPU()
	if p.NMILine() {
		t.Fatalf("NMI line should be low before vblank")
	}

	p.WriteRegister(0x2000, 0x80) // enable NMI generation
	if p.NMILine() {
		t.Fatalf("NMI line should still be low: vblank hasn't started")
	}

	p.ppuStatus |= 0x80
	if !p.NMILine() {
		t.Fatalf("NMI line should be high once both ctrl-enable and vblank are set")
	}

	p.ReadRegister(0x2002) // clears vblank
	if p.NMILine() {
		t.Fatalf("NMI line should drop once vblank clears")
	}
}

func TestPPUADDRAndPPUDATA_WriteThenBufferedRead(t *testing.T) {
	p, cart := newTestPPU()
	cart.chr[0x0010] = 0x55

	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2006, 0x10) // v = $0010
	first := p.ReadRegister(0x2007)
	if first != 0 {
		t.Fatalf("first $2007 read must return the stale buffer, got %#x", first)
	}
	second := p.ReadRegister(0x2007)
	if second != 0x55 {
		t.Fatalf("second $2007 read should return the buffered CHR byte, got %#x", second)
	}
}

func TestPPUDATA_PaletteReadsAreNotBuffered(t *testing.T) {
	p, _ := newTestPPU()
	p.paletteRAM[0] = 0x20

	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	got := p.ReadRegister(0x2007)
	if got != 0x20 {
		t.Fatalf("palette reads are unbuffered, got %#x want $20", got)
	}
}

func TestNametableMirroring_Horizontal(t *testing.T) {
	p, _ := newTestPPU()
	p.writeVRAM(0x2000, 0xAB)
	if got := p.readVRAM(0x2400); got != 0xAB {
		t.Fatalf("horizontal mirroring: $2400 should mirror $2000, got %#x", got)
	}
	if got := p.readVRAM(0x2800); got == 0xAB {
		t.Fatalf("horizontal mirroring: $2800 must be the second physical page, not a mirror of $2000")
	}
}

func TestOAMDMA_TransfersFullPageStartingAtOAMADDR(t *testing.T) {
	p, _ := newTestPPU()
	p.oamAddr = 0xFE
	var page [256]byte
	for i := range page {
		page[i] = byte(i)
	}
	p.DMAWrite(page)

	if p.oam[0xFE] != 0 || p.oam[0xFF] != 1 || p.oam[0x00] != 2 {
		t.Fatalf("DMA must start writing at OAMADDR and wrap: oam[FE]=%#x oam[FF]=%#x oam[00]=%#x",
			p.oam[0xFE], p.oam[0xFF], p.oam[0x00])
	}
}

func TestSpriteEvaluation_OverflowAfterEightSpritesOnScanline(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuCtrl = 0 // 8x8 sprites
	for i := 0; i < 9; i++ {
		p.oam[i*4] = 10 // all visible on scanline 11
	}
	p.scanline = 11
	p.evaluateSprites()

	if p.spriteCount != 8 {
		t.Fatalf("spriteCount = %d, want 8 (hardware limit)", p.spriteCount)
	}
	if !p.spriteOverflow || p.ppuStatus&0x20 == 0 {
		t.Fatalf("9th sprite on a scanline must set the overflow flag")
	}
}

func TestBackgroundPixel_RendersFromNametableAndPattern(t *testing.T) {
	p, cart := newTestPPU()
	p.backgroundEnabled = true
	p.spritesEnabled = false
	p.renderingEnabled = true
	p.ppuMask = 0x0A // show background, including leftmost 8 pixels

	// Tile 1 at pattern table 0: a fully-opaque column of color index 3.
	cart.chr[1*16+0] = 0xFF
	cart.chr[1*16+8] = 0xFF
	p.writeVRAM(0x2000, 1) // nametable entry for tile (0,0) = tile 1
	p.paletteRAM[3] = 0x16 // background palette 0, color 3 -> NES color $16

	p.scanline, p.cycle = 0, 0
	p.Step()

	if p.frameBuffer[0] != 0x16 {
		t.Fatalf("frameBuffer[0] = %#x, want $16", p.frameBuffer[0])
	}
}

func TestFrameAndScanlineWrapAfterStepping(t *testing.T) {
	p, _ := newTestPPU()
	p.scanline, p.cycle = preRenderLine, 340
	p.Step()
	if p.scanline != 0 || p.cycle != 0 {
		t.Fatalf("scanline/cycle = %d/%d, want 0/0 after wrapping past the pre-render line", p.scanline, p.cycle)
	}
	if p.frame != 1 {
		t.Fatalf("frame count = %d, want 1", p.frame)
	}
}
