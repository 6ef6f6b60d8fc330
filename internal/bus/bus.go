// Package bus implements the NES CPU bus: WRAM, the PPU/APU register
// windows, the controller ports, and OAM DMA orchestration. The PPU's own
// VRAM/palette/OAM bus is owned by the ppu package directly and never routed
// through here.
package bus

// PPU is the register-file seam the CPU bus talks to. It is satisfied by
// *ppu.PPU without this package importing ppu's concrete type.
type PPU interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
	DMAWrite(page [256]byte)
}

// APU is the register-file seam the CPU bus talks to.
type APU interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// Cartridge is the PRG-side half of the mapper seam.
type Cartridge interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
}

// Input dispatches $4016/$4017 controller traffic.
type Input interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Bus is the CPU-bus side of the console: WRAM plus the register windows and
// DMA wiring needed to satisfy cpu.Bus. It holds no PPU VRAM state and no
// cycle-driving loop of its own — the console clocks the CPU, which calls
// into this bus one access at a time.
type Bus struct {
	ram [0x800]uint8

	ppu   PPU
	apu   APU
	cart  Cartridge
	input Input
}

// New creates a CPU bus wired to its register-file collaborators. cart may
// be nil until a cartridge is loaded; reads/writes to cartridge space are
// open bus until then.
func New(ppu PPU, apu APU, input Input, cart Cartridge) *Bus {
	return &Bus{ppu: ppu, apu: apu, input: input, cart: cart}
}

// AttachCartridge swaps in a freshly loaded cartridge.
func (b *Bus) AttachCartridge(cart Cartridge) {
	b.cart = cart
}

// Read implements cpu.Bus. Unmapped regions return literal 0 (open bus);
// this module does not model the capacitive "bus lingers" behavior real
// hardware shows on unmapped reads.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return b.ram[address&0x07FF]

	case address < 0x4000:
		return b.ppu.ReadRegister(0x2000 + (address & 0x0007))

	case address == 0x4015:
		return b.apu.ReadStatus()

	case address == 0x4016 || address == 0x4017:
		if b.input != nil {
			return b.input.Read(address)
		}
		return 0

	case address < 0x4020:
		return 0

	case address >= 0x6000 && address < 0x8000:
		if b.cart != nil {
			return b.cart.ReadPRG(address)
		}
		return 0

	case address < 0x8000:
		return 0

	default:
		if b.cart != nil {
			return b.cart.ReadPRG(address)
		}
		return 0
	}
}

// Write implements cpu.Bus, returning the number of extra cycles this access
// stole from the CPU: 513 for an OAM DMA trigger at $4014 (the "odd CPU
// cycle" +1 refinement is deliberately not modeled, see DESIGN.md), 0
// otherwise.
func (b *Bus) Write(address uint16, value uint8) uint16 {
	switch {
	case address < 0x2000:
		b.ram[address&0x07FF] = value
		return 0

	case address < 0x4000:
		b.ppu.WriteRegister(0x2000+(address&0x0007), value)
		return 0

	case address == 0x4014:
		b.performOAMDMA(value)
		return 513

	case address == 0x4016:
		if b.input != nil {
			b.input.Write(address, value)
		}
		return 0

	case address <= 0x4013 || address == 0x4015 || address == 0x4017:
		b.apu.WriteRegister(address, value)
		return 0

	case address < 0x4020:
		return 0

	case address >= 0x6000 && address < 0x8000:
		if b.cart != nil {
			b.cart.WritePRG(address, value)
		}
		return 0

	default:
		if b.cart != nil {
			b.cart.WritePRG(address, value)
		}
		return 0
	}
}

// performOAMDMA copies the 256-byte page starting at page<<8 straight into
// the PPU's OAM, bypassing the per-byte WriteRegister path the real DMA
// circuit also bypasses (it writes OAM directly, not through $2004).
func (b *Bus) performOAMDMA(page uint8) {
	var buf [256]byte
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		buf[i] = b.Read(base + uint16(i))
	}
	b.ppu.DMAWrite(buf)
}

// ReadPRGByte satisfies apu.PRGReader, letting the DMC channel pull sample
// bytes from cartridge PRG space through the same bus the CPU uses.
func (b *Bus) ReadPRGByte(address uint16) uint8 {
	if b.cart == nil {
		return 0
	}
	return b.cart.ReadPRG(address)
}
