// Package cartridge implements iNES ROM loading and the mapper seam between
// cartridge storage and the CPU/PPU buses.
package cartridge

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// MirrorMode is the nametable mirroring mode a cartridge (or, for mappers
// that switch it at runtime, a mapper) reports to the PPU's VRAM bus.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// Mapper is the seam between a Cartridge and its two buses. Mapper 0 (NROM)
// is the only implementation required by this module; future bank-switching
// mappers plug in here without touching CPU, PPU, or APU code.
type Mapper interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirroring() MirrorMode
}

// LoadErrorReason enumerates why a ROM image failed to load.
type LoadErrorReason uint8

const (
	HeaderInvalid LoadErrorReason = iota
	UnsupportedMapper
)

// LoadError is the one error kind Load ever returns.
type LoadError struct {
	Reason   LoadErrorReason
	MapperID uint8
}

func (e *LoadError) Error() string {
	switch e.Reason {
	case UnsupportedMapper:
		return fmt.Sprintf("cartridge: unsupported mapper %d", e.MapperID)
	default:
		return "cartridge: invalid iNES header"
	}
}

// Cartridge holds immutable ROM data plus the small amount of mutable state
// (extended/battery RAM, CHR-RAM) that a loaded NROM cartridge owns.
type Cartridge struct {
	prgROM []uint8
	chrROM []uint8

	mapperID uint8
	mapper   Mapper

	mirror MirrorMode

	hasBattery bool
	sram       [0x2000]uint8

	hasCHRRAM bool
}

type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8
	CHRROMSize uint8
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// LoadFromFile loads a cartridge from a path on disk.
func LoadFromFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening rom %q", filename)
	}
	defer file.Close()

	return Load(file)
}

// Load parses an iNES image from r into a ready-to-use Cartridge, or returns
// a *LoadError if the header is malformed or the mapper is unimplemented.
func Load(r io.Reader) (*Cartridge, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, &LoadError{Reason: HeaderInvalid}
	}

	if string(header.Magic[:]) != "NES\x1A" {
		return nil, &LoadError{Reason: HeaderInvalid}
	}
	if header.PRGROMSize == 0 {
		return nil, &LoadError{Reason: HeaderInvalid}
	}

	cart := &Cartridge{
		mapperID:   (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		hasBattery: (header.Flags6 & 0x02) != 0,
	}

	switch {
	case header.Flags6&0x08 != 0:
		cart.mirror = MirrorFourScreen
	case header.Flags6&0x01 != 0:
		cart.mirror = MirrorVertical
	default:
		cart.mirror = MirrorHorizontal
	}

	if header.Flags6&0x04 != 0 {
		trainer := make([]uint8, 512)
		if _, err := io.ReadFull(r, trainer); err != nil {
			return nil, &LoadError{Reason: HeaderInvalid}
		}
	}

	prgSize := int(header.PRGROMSize) * 16384
	cart.prgROM = make([]uint8, prgSize)
	if _, err := io.ReadFull(r, cart.prgROM); err != nil {
		return nil, &LoadError{Reason: HeaderInvalid}
	}

	// CHR-RAM presence is a property of the header alone: a zero CHR-bank
	// count means CHR-RAM, full stop, never inferred from ROM content.
	cart.hasCHRRAM = header.CHRROMSize == 0
	chrSize := int(header.CHRROMSize) * 8192
	if chrSize > 0 {
		cart.chrROM = make([]uint8, chrSize)
		if _, err := io.ReadFull(r, cart.chrROM); err != nil {
			return nil, &LoadError{Reason: HeaderInvalid}
		}
	} else {
		cart.chrROM = make([]uint8, 8192)
	}

	mapper, err := newMapper(cart.mapperID, cart)
	if err != nil {
		return nil, err
	}
	cart.mapper = mapper

	return cart, nil
}

func (c *Cartridge) ReadPRG(address uint16) uint8         { return c.mapper.ReadPRG(address) }
func (c *Cartridge) WritePRG(address uint16, value uint8) { c.mapper.WritePRG(address, value) }
func (c *Cartridge) ReadCHR(address uint16) uint8         { return c.mapper.ReadCHR(address) }
func (c *Cartridge) WriteCHR(address uint16, value uint8) { c.mapper.WriteCHR(address, value) }
func (c *Cartridge) Mirroring() MirrorMode                { return c.mapper.Mirroring() }

func (c *Cartridge) PRGROM() []uint8    { return c.prgROM }
func (c *Cartridge) CHRROM() []uint8    { return c.chrROM }
func (c *Cartridge) MapperID() uint8    { return c.mapperID }
func (c *Cartridge) HasBattery() bool   { return c.hasBattery }
func (c *Cartridge) HasCHRRAM() bool    { return c.hasCHRRAM }

func newMapper(id uint8, cart *Cartridge) (Mapper, error) {
	switch id {
	case 0:
		return NewMapper000(cart), nil
	default:
		return nil, &LoadError{Reason: UnsupportedMapper, MapperID: id}
	}
}
