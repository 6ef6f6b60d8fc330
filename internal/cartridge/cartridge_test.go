package cartridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildINES assembles a minimal iNES image: header + prgBanks*16KiB PRG +
// chrBanks*8KiB CHR, with the requested mapper id and mirroring/battery bits.
func buildINES(mapperID uint8, prgBanks, chrBanks uint8, fourScreen, vertical, battery bool) []byte {
	var flags6 uint8
	if vertical {
		flags6 |= 0x01
	}
	if battery {
		flags6 |= 0x02
	}
	if fourScreen {
		flags6 |= 0x08
	}
	flags6 |= (mapperID & 0x0F) << 4
	flags7 := mapperID & 0xF0

	header := []byte{'N', 'E', 'S', 0x1A, prgBanks, chrBanks, flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	buf := bytes.NewBuffer(header)
	buf.Write(make([]byte, int(prgBanks)*16384))
	buf.Write(make([]byte, int(chrBanks)*8192))
	return buf.Bytes()
}

func TestLoad_RejectsBadMagic(t *testing.T) {
	data := buildINES(0, 1, 1, false, false, false)
	data[0] = 'X'
	_, err := Load(bytes.NewReader(data))
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, HeaderInvalid, loadErr.Reason)
}

func TestLoad_RejectsZeroPRG(t *testing.T) {
	data := buildINES(0, 0, 1, false, false, false)
	_, err := Load(bytes.NewReader(data))
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, HeaderInvalid, loadErr.Reason)
}

func TestLoad_UnsupportedMapperIsAnError(t *testing.T) {
	data := buildINES(4, 1, 1, false, false, false)
	_, err := Load(bytes.NewReader(data))
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, UnsupportedMapper, loadErr.Reason)
	assert.Equal(t, uint8(4), loadErr.MapperID)
}

func TestLoad_CHRRAMIsDeterminedByHeaderAlone(t *testing.T) {
	// Zero CHR banks: CHR-RAM regardless of content (there's no content).
	zeroChr := buildINES(0, 1, 0, false, false, false)
	cart, err := Load(bytes.NewReader(zeroChr))
	require.NoError(t, err)
	assert.True(t, cart.HasCHRRAM())
	assert.Len(t, cart.CHRROM(), 8192)

	// Non-zero CHR banks, even if every byte happens to be zero: still ROM.
	allZeroChr := buildINES(0, 1, 1, false, false, false)
	cart2, err := Load(bytes.NewReader(allZeroChr))
	require.NoError(t, err)
	assert.False(t, cart2.HasCHRRAM())
}

func TestLoad_MirroringModes(t *testing.T) {
	cases := []struct {
		name       string
		fourScreen bool
		vertical   bool
		want       MirrorMode
	}{
		{"horizontal default", false, false, MirrorHorizontal},
		{"vertical", false, true, MirrorVertical},
		{"four-screen overrides vertical", true, true, MirrorFourScreen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := buildINES(0, 1, 1, tc.fourScreen, tc.vertical, false)
			cart, err := Load(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tc.want, cart.Mirroring())
		})
	}
}

func TestLoad_TrainerIsSkipped(t *testing.T) {
	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0x04, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	buf := bytes.NewBuffer(header)
	trainer := make([]byte, 512)
	buf.Write(trainer)
	prg := make([]byte, 16384)
	prg[0] = 0xEA
	buf.Write(prg)
	buf.Write(make([]byte, 8192))

	cart, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint8(0xEA), cart.PRGROM()[0])
}

func TestCartridge_PRGMirrors16KBWindow(t *testing.T) {
	data := buildINES(0, 1, 1, false, false, false)
	// Patch a byte near the top of the 16KB PRG bank so we can see it mirrored.
	data = append(data[:len(data)-8192], data[len(data)-8192:]...)
	offsetInFile := 16 + 0x3FFF
	data[offsetInFile] = 0x42
	cart, err := Load(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, uint8(0x42), cart.ReadPRG(0xBFFF))
	assert.Equal(t, uint8(0x42), cart.ReadPRG(0xFFFF), "16KB PRG must mirror into the upper half of the window")
}
