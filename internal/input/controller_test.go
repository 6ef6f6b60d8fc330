package input

import "testing"

func TestController_StrobeThenEightReadsReturnButtonOrder(t *testing.T) {
	c := New()
	c.SetButtons(Buttons{A: true})

	c.Write(0x01)
	c.Write(0x00)

	want := []uint8{1, 0, 0, 0, 0, 0, 0, 0}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("read %d: got %d, want %d", i, got, w)
		}
	}
}

func TestController_ReadsPastEighthWrapModulo8(t *testing.T) {
	c := New()
	c.SetButtons(Buttons{A: true})
	c.Write(0x01)
	c.Write(0x00)

	var got []uint8
	for i := 0; i < 16; i++ {
		got = append(got, c.Read())
	}
	for i := 0; i < 8; i++ {
		if got[i] != got[i+8] {
			t.Fatalf("read %d (%d) should equal read %d (%d): modulo-8 wraparound", i, got[i], i+8, got[i+8])
		}
	}
}

func TestController_StrobeHighAlwaysReturnsA(t *testing.T) {
	c := New()
	c.SetButtons(Buttons{A: true, B: true})
	c.Write(0x01)

	for i := 0; i < 5; i++ {
		if got := c.Read(); got != 1 {
			t.Fatalf("read %d while strobed: got %d, want 1 (A is pressed)", i, got)
		}
	}
}

func TestInputState_Controller2HasBit6Set(t *testing.T) {
	is := NewInputState()
	is.Write(0x4016, 0x01)
	is.Write(0x4016, 0x00)
	got := is.Read(0x4017)
	if got&0x40 == 0 {
		t.Fatalf("$4017 read = %#x, bit 6 must always be set", got)
	}
}

func TestInputState_BothControllersShareStrobe(t *testing.T) {
	is := NewInputState()
	is.Controller1.SetButtons(Buttons{A: true})
	is.Controller2.SetButtons(Buttons{B: true})
	is.Write(0x4016, 0x01)
	is.Write(0x4016, 0x00)

	if got := is.Read(0x4016); got != 1 {
		t.Fatalf("controller 1 first read = %d, want 1 (A pressed)", got)
	}
	if got := is.Read(0x4017) & 1; got != 0 {
		t.Fatalf("controller 2 first read = %d, want 0 (A not pressed on pad 2)", got)
	}
}
