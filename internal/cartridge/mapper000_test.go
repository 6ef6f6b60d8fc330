package cartridge

import "testing"

func newTestCart(prgBanks int, chrRAM bool) *Cartridge {
	cart := &Cartridge{
		prgROM:    make([]uint8, prgBanks*0x4000),
		chrROM:    make([]uint8, 0x2000),
		hasCHRRAM: chrRAM,
	}
	cart.mapper = NewMapper000(cart)
	return cart
}

func TestMapper000_PRGMirroringFor16KB(t *testing.T) {
	cart := newTestCart(1, false)
	cart.prgROM[0x1234] = 0x99

	got := cart.ReadPRG(0x8000 + 0x1234)
	if got != 0x99 {
		t.Fatalf("ReadPRG($8000+$1234) = %#x, want $99", got)
	}
	mirrored := cart.ReadPRG(0xC000 + 0x1234)
	if mirrored != 0x99 {
		t.Fatalf("ReadPRG($C000+$1234) = %#x, want mirror of $8000 window", mirrored)
	}
}

func TestMapper000_PRGNotMirroredFor32KB(t *testing.T) {
	cart := newTestCart(2, false)
	cart.prgROM[0x1234] = 0x11
	cart.prgROM[0x4000+0x1234] = 0x22

	if got := cart.ReadPRG(0x8000 + 0x1234); got != 0x11 {
		t.Fatalf("low bank: got %#x want $11", got)
	}
	if got := cart.ReadPRG(0xC000 + 0x1234); got != 0x22 {
		t.Fatalf("high bank: got %#x want $22, banks must not mirror when ROM is 32KB", got)
	}
}

func TestMapper000_SRAMReadWrite(t *testing.T) {
	cart := newTestCart(1, false)
	cart.WritePRG(0x6123, 0x55)
	if got := cart.ReadPRG(0x6123); got != 0x55 {
		t.Fatalf("SRAM round-trip: got %#x want $55", got)
	}
}

func TestMapper000_WritesToROMAreIgnored(t *testing.T) {
	cart := newTestCart(1, false)
	before := cart.ReadPRG(0x8000)
	cart.WritePRG(0x8000, 0xFF)
	after := cart.ReadPRG(0x8000)
	if before != after {
		t.Fatalf("write to $8000-$FFFF must be a no-op under mapper 0")
	}
}

func TestMapper000_CHRRAMIsWritable(t *testing.T) {
	cart := newTestCart(1, true)
	cart.WriteCHR(0x0010, 0x42)
	if got := cart.ReadCHR(0x0010); got != 0x42 {
		t.Fatalf("CHR-RAM round-trip: got %#x want $42", got)
	}
}

func TestMapper000_CHRROMIgnoresWrites(t *testing.T) {
	cart := newTestCart(1, false)
	cart.chrROM[0x0010] = 0x33
	cart.WriteCHR(0x0010, 0x99)
	if got := cart.ReadCHR(0x0010); got != 0x33 {
		t.Fatalf("CHR-ROM write must be ignored, got %#x want $33", got)
	}
}

func TestMapper000_Mirroring(t *testing.T) {
	cart := newTestCart(1, false)
	cart.mirror = MirrorVertical
	if got := cart.Mirroring(); got != MirrorVertical {
		t.Fatalf("Mirroring() = %v, want %v", got, MirrorVertical)
	}
}
