// Package ppu implements the NES Picture Processing Unit (2C02): register
// I/O, the VRAM/palette/OAM address space, and the scanline/cycle rendering
// loop that fills a palette-indexed frame buffer.
package ppu

import "nesgo/internal/cartridge"

// Cartridge is the seam the PPU needs from a loaded cartridge: CHR pattern
// data and the nametable mirroring mode it reports.
type Cartridge interface {
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirroring() cartridge.MirrorMode
}

// PPU is the NES Picture Processing Unit (2C02).
type PPU struct {
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8

	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address / address latch (15 bits)
	x uint8  // fine X scroll (3 bits)
	w bool   // write toggle, shared by PPUSCROLL and PPUADDR

	readBuffer uint8 // buffered PPUDATA read

	cart Cartridge

	vram       [0x800]uint8 // 2KB nametable RAM
	paletteRAM [32]uint8

	scanline int // 0 through 261 (261 is pre-render)
	cycle    int // 0 through 340
	frame    uint64
	oddFrame bool

	oam          [256]uint8
	secondaryOAM [32]uint8
	spriteIndex  [8]uint8 // original OAM index of each secondary-OAM entry
	spriteCount  uint8

	sprite0Hit       bool
	spriteOverflow   bool
	sprite0OnScanline bool
	lastEvalScanline int

	bgTileLow, bgTileHigh uint8
	bgPaletteIndex        uint8

	backgroundEnabled bool
	spritesEnabled    bool
	renderingEnabled  bool

	frameBuffer [256 * 240]uint8
}

// New creates a PPU with no cartridge attached; call AttachCartridge before
// stepping it.
func New() *PPU {
	p := &PPU{scanline: 0, lastEvalScanline: -999}
	return p
}

// AttachCartridge wires the PPU's VRAM bus to a loaded cartridge's CHR data
// and mirroring mode.
func (p *PPU) AttachCartridge(cart Cartridge) {
	p.cart = cart
}

// Reset returns the PPU to its power-up state.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0
	p.v, p.t = 0, 0
	p.x = 0
	p.w = false
	p.readBuffer = 0

	p.scanline = 0
	p.cycle = 0
	p.frame = 0
	p.oddFrame = false

	p.spriteCount = 0
	p.sprite0Hit = false
	p.spriteOverflow = false
	p.lastEvalScanline = -999

	p.backgroundEnabled = false
	p.spritesEnabled = false
	p.renderingEnabled = false

	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// ReadRegister reads a CPU-visible PPU register at $2000-$2007 (mirrored
// every 8 bytes by the bus before it reaches here).
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		status := p.ppuStatus
		p.ppuStatus &= 0x7F // clear VBL flag only; sprite0hit/overflow persist until pre-render
		p.w = false
		return status
	case 0x2004:
		return p.oam[p.oamAddr]
	case 0x2007:
		return p.readPPUData()
	default:
		// $2000/$2001/$2003/$2005/$2006 are write-only.
		return 0
	}
}

// WriteRegister writes a CPU-visible PPU register at $2000-$2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x2000:
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
	case 0x2001:
		p.ppuMask = value
		p.backgroundEnabled = value&0x08 != 0
		p.spritesEnabled = value&0x10 != 0
		p.renderingEnabled = p.backgroundEnabled || p.spritesEnabled
	case 0x2002:
		// read-only
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		p.writePPUScroll(value)
	case 0x2006:
		p.writePPUAddr(value)
	case 0x2007:
		p.writePPUData(value)
	}
}

// DMAWrite performs an OAM DMA transfer of a full CPU page into OAM,
// starting at the current OAMADDR and wrapping modulo 256.
func (p *PPU) DMAWrite(page [256]byte) {
	for i := 0; i < 256; i++ {
		p.oam[uint8(int(p.oamAddr)+i)] = page[i]
	}
}

// NMILine reports the PPU's NMI output: true whenever vblank is active and
// PPUCTRL's NMI-enable bit is set. The console samples this level and feeds
// its rising edge to the CPU.
func (p *PPU) NMILine() bool {
	return p.ppuCtrl&0x80 != 0 && p.ppuStatus&0x80 != 0
}

// Screen returns the current frame buffer as NES system-palette indices.
func (p *PPU) Screen() *[256 * 240]uint8 {
	return &p.frameBuffer
}

func (p *PPU) FrameCount() uint64 { return p.frame }
func (p *PPU) Scanline() int      { return p.scanline }
func (p *PPU) Cycle() int         { return p.cycle }

// preRenderLine is scanline 261: the last line of the 262-line frame, which
// clears vblank/sprite-0-hit/overflow at its dot 1 instead of rendering.
const preRenderLine = 261

// Step advances the PPU by one PPU cycle (1/3 of a CPU cycle).
func (p *PPU) Step() {
	p.cycle++
	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > preRenderLine {
			p.scanline = 0
			p.frame++
			p.oddFrame = !p.oddFrame
			// Odd-frame skip: the first visible scanline's idle cycle 0
			// is skipped on odd frames when rendering is on.
			if p.oddFrame && p.renderingEnabled {
				p.cycle = 1
			}
		}
	}

	if p.scanline < 240 && p.cycle >= 1 && p.cycle <= 256 {
		p.renderPixel()
	}

	if p.renderingEnabled && (p.scanline < 240 || p.scanline == preRenderLine) {
		if p.cycle >= 1 && p.cycle <= 256 && p.cycle%8 == 0 {
			p.incrementX()
		}
		if p.cycle == 256 {
			p.incrementY()
		}
		if p.cycle == 257 {
			p.copyX()
		}
		if p.scanline == preRenderLine && p.cycle >= 280 && p.cycle <= 304 {
			p.copyY()
		}
	}

	if p.spritesEnabled && p.scanline < 240 && p.cycle == 1 {
		if p.lastEvalScanline != p.scanline {
			p.evaluateSprites()
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.ppuStatus |= 0x80
	}
	if p.scanline == preRenderLine && p.cycle == 1 {
		// pre-render: vblank, sprite-0-hit, and overflow all clear here.
		p.ppuStatus &= 0x1F
		p.sprite0Hit = false
		p.spriteOverflow = false
	}
}

func (p *PPU) renderPixel() {
	pixelX := p.cycle - 1
	pixelY := p.scanline
	tileCycle := (p.cycle - 1) % 8

	if p.backgroundEnabled && tileCycle == 0 {
		p.fetchBackgroundTile()
	}

	bgColorIndex, bgPalette, bgOpaque := uint8(0), uint8(0), false
	if p.backgroundEnabled {
		bit := 7 - uint8(tileCycle)
		lowBit := (p.bgTileLow >> bit) & 1
		highBit := (p.bgTileHigh >> bit) & 1
		bgColorIndex = (highBit << 1) | lowBit
		bgPalette = p.bgPaletteIndex
		bgOpaque = bgColorIndex != 0
		if pixelX < 8 && p.ppuMask&0x02 == 0 {
			bgOpaque = false
		}
	}

	spriteColorIndex, spritePalette, spritePriority, spriteOpaque, isSprite0 := uint8(0), uint8(0), false, false, false
	if p.spritesEnabled {
		spriteColorIndex, spritePalette, spritePriority, spriteOpaque, isSprite0 = p.spritePixelAt(pixelX, pixelY)
		if pixelX < 8 && p.ppuMask&0x04 == 0 {
			spriteOpaque = false
		}
	}

	if isSprite0 && bgOpaque && spriteOpaque && pixelX != 255 && !p.sprite0Hit {
		p.sprite0Hit = true
		p.ppuStatus |= 0x40
	}

	var paletteAddr uint16
	switch {
	case !bgOpaque && !spriteOpaque:
		paletteAddr = 0x3F00
	case !spriteOpaque || (bgOpaque && spritePriority):
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgColorIndex)
	default:
		paletteAddr = 0x3F10 + uint16(spritePalette)*4 + uint16(spriteColorIndex)
	}

	p.frameBuffer[pixelY*256+pixelX] = p.readPalette(paletteAddr)
}

func (p *PPU) fetchBackgroundTile() {
	nametableAddr := 0x2000 | (p.v & 0x0FFF)
	tileID := p.readVRAM(nametableAddr)

	attrAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	attrByte := p.readVRAM(attrAddr)
	quadrant := ((p.v >> 4) & 4) | (p.v & 2)
	p.bgPaletteIndex = (attrByte >> quadrant) & 0x03

	var patternBase uint16
	if p.ppuCtrl&0x10 != 0 {
		patternBase = 0x1000
	}
	fineY := p.getFineY()
	patternAddr := patternBase + uint16(tileID)*16 + uint16(fineY)
	p.bgTileLow = p.readVRAM(patternAddr)
	p.bgTileHigh = p.readVRAM(patternAddr + 8)
}

// spritePixelAt returns the highest-priority opaque sprite pixel covering
// (x, y), or opaque=false if none of this scanline's sprites cover it.
func (p *PPU) spritePixelAt(x, y int) (colorIndex, paletteIndex uint8, priority, opaque, isSprite0 bool) {
	spriteHeight := 8
	if p.ppuCtrl&0x20 != 0 {
		spriteHeight = 16
	}

	for i := 0; i < int(p.spriteCount); i++ {
		base := i * 4
		sY := int(p.secondaryOAM[base])
		tile := p.secondaryOAM[base+1]
		attr := p.secondaryOAM[base+2]
		sX := int(p.secondaryOAM[base+3])

		if x < sX || x >= sX+8 || y < sY+1 || y >= sY+1+spriteHeight {
			continue
		}

		col := x - sX
		row := y - (sY + 1)
		if attr&0x40 != 0 {
			col = 7 - col
		}
		if attr&0x80 != 0 {
			row = spriteHeight - 1 - row
		}

		ci := p.spritePatternPixel(tile, col, row, spriteHeight)
		if ci == 0 {
			continue
		}

		return ci, attr & 0x03, attr&0x20 != 0, true, p.spriteIndex[i] == 0
	}

	return 0, 0, false, false, false
}

func (p *PPU) spritePatternPixel(tileIndex uint8, col, row, spriteHeight int) uint8 {
	var patternBase uint16
	if spriteHeight == 8 {
		if p.ppuCtrl&0x08 != 0 {
			patternBase = 0x1000
		}
	} else {
		if tileIndex&0x01 != 0 {
			patternBase = 0x1000
		}
		tileIndex &= 0xFE
		if row >= 8 {
			tileIndex++
			row -= 8
		}
	}

	addr := patternBase + uint16(tileIndex)*16 + uint16(row)
	low := p.readVRAM(addr)
	high := p.readVRAM(addr + 8)
	bit := 7 - uint8(col)
	return (((high >> bit) & 1) << 1) | ((low >> bit) & 1)
}

// evaluateSprites scans OAM for the sprites visible on the current scanline,
// copying up to 8 into secondary OAM and setting the overflow flag past that.
func (p *PPU) evaluateSprites() {
	p.lastEvalScanline = p.scanline
	p.spriteCount = 0
	p.sprite0OnScanline = false

	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}

	spriteHeight := 8
	if p.ppuCtrl&0x20 != 0 {
		spriteHeight = 16
	}

	found := 0
	for sprite := 0; sprite < 64; sprite++ {
		base := sprite * 4
		sY := int(p.oam[base])
		if p.scanline < sY+1 || p.scanline >= sY+1+spriteHeight {
			continue
		}

		if found >= 8 {
			p.spriteOverflow = true
			p.ppuStatus |= 0x20
			break
		}

		secBase := found * 4
		p.secondaryOAM[secBase] = p.oam[base]
		p.secondaryOAM[secBase+1] = p.oam[base+1]
		p.secondaryOAM[secBase+2] = p.oam[base+2]
		p.secondaryOAM[secBase+3] = p.oam[base+3]
		p.spriteIndex[found] = uint8(sprite)
		if sprite == 0 {
			p.sprite0OnScanline = true
		}
		found++
	}
	p.spriteCount = uint8(found)
}

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
		p.x = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | ((uint16(value) & 0x07) << 12)
		p.t = (p.t & 0xFC1F) | ((uint16(value) & 0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) readPPUData() uint8 {
	addr := p.v & 0x3FFF
	var data uint8
	if addr >= 0x3F00 {
		data = p.readVRAM(addr)
		p.readBuffer = p.readVRAM(addr & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.readVRAM(addr)
	}
	p.advanceVRAMAddress()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	p.writeVRAM(p.v&0x3FFF, value)
	p.advanceVRAMAddress()
}

func (p *PPU) advanceVRAMAddress() {
	if p.ppuCtrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x3FFF
}

// readVRAM/writeVRAM implement the PPU's own $0000-$3FFF address space:
// cartridge CHR, nametables (mirrored per cartridge), and palette RAM.
func (p *PPU) readVRAM(address uint16) uint8 {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		if p.cart == nil {
			return 0
		}
		return p.cart.ReadCHR(address)
	case address < 0x3F00:
		return p.vram[p.nametableIndex(address&0x2FFF)]
	default:
		return p.readPalette(address)
	}
}

func (p *PPU) writeVRAM(address uint16, value uint8) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		if p.cart != nil {
			p.cart.WriteCHR(address, value)
		}
	case address < 0x3F00:
		p.vram[p.nametableIndex(address&0x2FFF)] = value
	default:
		p.writePalette(address, value)
	}
}

func (p *PPU) nametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	table := (address >> 10) & 3
	offset := address & 0x3FF

	mirror := cartridge.MirrorHorizontal
	if p.cart != nil {
		mirror = p.cart.Mirroring()
	}

	switch mirror {
	case cartridge.MirrorVertical:
		if table == 1 || table == 3 {
			return 0x400 + offset
		}
		return offset
	case cartridge.MirrorSingleScreen0:
		return offset
	case cartridge.MirrorSingleScreen1:
		return 0x400 + offset
	case cartridge.MirrorFourScreen:
		return table*0x400 + offset
	default: // horizontal
		if table >= 2 {
			return 0x400 + offset
		}
		return offset
	}
}

func (p *PPU) readPalette(address uint16) uint8 {
	index := (address - 0x3F00) & 0x1F
	if index&0x13 == 0x10 {
		index &= 0x0F
	}
	return p.paletteRAM[index] & 0x3F
}

func (p *PPU) writePalette(address uint16, value uint8) {
	index := (address - 0x3F00) & 0x1F
	if index&0x13 == 0x10 {
		index &= 0x0F
	}
	p.paletteRAM[index] = value
}

func (p *PPU) getFineY() int { return int((p.v >> 12) & 0x0007) }

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

// SystemPalette is the NES 2C02's 64-entry NTSC RGB palette, indexed by the
// same 6-bit color codes stored in palette RAM and returned by Screen().
var SystemPalette = [64][3]uint8{
	{0x66, 0x66, 0x66}, {0x00, 0x2A, 0x88}, {0x14, 0x12, 0xA7}, {0x3B, 0x00, 0xA4},
	{0x5C, 0x00, 0x7E}, {0x6E, 0x00, 0x40}, {0x6C, 0x06, 0x00}, {0x56, 0x1D, 0x00},
	{0x33, 0x35, 0x00}, {0x0B, 0x48, 0x00}, {0x00, 0x52, 0x00}, {0x00, 0x4F, 0x08},
	{0x00, 0x40, 0x4D}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xAD, 0xAD, 0xAD}, {0x15, 0x5F, 0xD9}, {0x42, 0x40, 0xFF}, {0x75, 0x27, 0xFE},
	{0xA0, 0x1A, 0xCC}, {0xB7, 0x1E, 0x7B}, {0xB5, 0x31, 0x20}, {0x99, 0x4E, 0x00},
	{0x6B, 0x6D, 0x00}, {0x38, 0x87, 0x00}, {0x0C, 0x93, 0x00}, {0x00, 0x8F, 0x32},
	{0x00, 0x7C, 0x8D}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xFF, 0xFE, 0xFF}, {0x64, 0xB0, 0xFF}, {0x92, 0x90, 0xFF}, {0xC6, 0x76, 0xFF},
	{0xF3, 0x6A, 0xFF}, {0xFE, 0x6E, 0xCC}, {0xFE, 0x81, 0x70}, {0xEA, 0x9E, 0x22},
	{0xBC, 0xBE, 0x00}, {0x88, 0xD8, 0x00}, {0x5C, 0xE4, 0x30}, {0x45, 0xE0, 0x82},
	{0x48, 0xCD, 0xDE}, {0x4F, 0x4F, 0x4F}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xFF, 0xFE, 0xFF}, {0xC0, 0xDF, 0xFF}, {0xD3, 0xD2, 0xFF}, {0xE8, 0xC8, 0xFF},
	{0xFB, 0xC2, 0xFF}, {0xFE, 0xC4, 0xEA}, {0xFE, 0xCC, 0xC5}, {0xF7, 0xD8, 0xA5},
	{0xE4, 0xE5, 0x94}, {0xCF, 0xF2, 0x9B}, {0xBE, 0xFB, 0xB3}, {0xB8, 0xF8, 0xD8},
	{0xB8, 0xF8, 0xF8}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
}
