package bus

import "testing"

type fakePPU struct {
	regs     [8]uint8
	dmaPage  [256]byte
	dmaCalls int
}

func (p *fakePPU) ReadRegister(address uint16) uint8         { return p.regs[address&7] }
func (p *fakePPU) WriteRegister(address uint16, value uint8) { p.regs[address&7] = value }
func (p *fakePPU) DMAWrite(page [256]byte) {
	p.dmaPage = page
	p.dmaCalls++
}

type fakeAPU struct {
	lastWriteAddr uint16
	lastWriteVal  uint8
	status        uint8
}

func (a *fakeAPU) WriteRegister(address uint16, value uint8) {
	a.lastWriteAddr, a.lastWriteVal = address, value
}
func (a *fakeAPU) ReadStatus() uint8 { return a.status }

type fakeCart struct {
	prg [0x10000]uint8
}

func (c *fakeCart) ReadPRG(address uint16) uint8         { return c.prg[address] }
func (c *fakeCart) WritePRG(address uint16, value uint8) { c.prg[address] = value }

type fakeInput struct {
	lastWrite uint8
}

func (i *fakeInput) Read(address uint16) uint8 {
	if address == 0x4016 {
		return 1
	}
	return 0
}
func (i *fakeInput) Write(address uint16, value uint8) { i.lastWrite = value }

func TestRead_WRAMMirrorsEvery0x800(t *testing.T) {
	b := New(&fakePPU{}, &fakeAPU{}, &fakeInput{}, &fakeCart{})
	b.Write(0x0001, 0x42)
	if got := b.Read(0x0801); got != 0x42 {
		t.Fatalf("Read($0801) = %#x, want $42 (mirrors $0001)", got)
	}
}

func TestRead_PPURegistersMirrorEvery8Bytes(t *testing.T) {
	ppu := &fakePPU{}
	b := New(ppu, &fakeAPU{}, &fakeInput{}, &fakeCart{})
	b.Write(0x2000, 0x99)
	if got := b.Read(0x2008); got != 0x99 {
		t.Fatalf("Read($2008) = %#x, want $99 (mirrors $2000)", got)
	}
}

func TestWrite_OAMDMATransfersPageAndStalls513Cycles(t *testing.T) {
	ppu := &fakePPU{}
	b := New(ppu, &fakeAPU{}, &fakeInput{}, &fakeCart{})
	b.Write(0x0300, 0xAB) // put the byte in WRAM so the DMA source page reads it back
	stolen := b.Write(0x4014, 0x03)
	if stolen != 513 {
		t.Fatalf("OAM DMA stole %d cycles, want 513", stolen)
	}
	if ppu.dmaCalls != 1 {
		t.Fatalf("DMAWrite must be called exactly once, got %d", ppu.dmaCalls)
	}
	if ppu.dmaPage[0] != 0xAB {
		t.Fatalf("DMA page[0] = %#x, want $AB", ppu.dmaPage[0])
	}
}

func TestWrite_NonDMARegisterStealsNoCycles(t *testing.T) {
	b := New(&fakePPU{}, &fakeAPU{}, &fakeInput{}, &fakeCart{})
	if stolen := b.Write(0x4000, 0x01); stolen != 0 {
		t.Fatalf("non-DMA write stole %d cycles, want 0", stolen)
	}
}

func TestRead_OpenBusRegionsReturnZero(t *testing.T) {
	b := New(&fakePPU{}, &fakeAPU{}, &fakeInput{}, nil)
	if got := b.Read(0x4020); got != 0 {
		t.Fatalf("Read($4020) = %#x, want $00 (open bus, no cartridge)", got)
	}
	if got := b.Read(0x8000); got != 0 {
		t.Fatalf("Read($8000) with no cartridge = %#x, want $00", got)
	}
}

func TestReadPRGByte_ForwardsToCartridge(t *testing.T) {
	cart := &fakeCart{}
	cart.prg[0xC123] = 0x77
	b := New(&fakePPU{}, &fakeAPU{}, &fakeInput{}, cart)
	if got := b.ReadPRGByte(0xC123); got != 0x77 {
		t.Fatalf("ReadPRGByte($C123) = %#x, want $77", got)
	}
}

func TestWrite_ControllerStrobeRoutesToInput(t *testing.T) {
	in := &fakeInput{}
	b := New(&fakePPU{}, &fakeAPU{}, in, &fakeCart{})
	b.Write(0x4016, 1)
	if in.lastWrite != 1 {
		t.Fatalf("controller strobe write did not reach the input system")
	}
}
