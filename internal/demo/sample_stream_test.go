package demo

import "testing"

func TestSampleStream_ReadReturnsSilenceWhenEmpty(t *testing.T) {
	s := newSampleStream()
	buf := make([]byte, 8)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("Read returned %d bytes, want %d", n, len(buf))
	}
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("expected silence, got %v", buf)
		}
	}
}

func TestSampleStream_PushThenReadRoundTripsPCM(t *testing.T) {
	s := newSampleStream()
	s.push([]float32{1.0, -1.0}, false)

	buf := make([]byte, 8) // 2 stereo 16-bit frames
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 8 {
		t.Fatalf("Read returned %d bytes, want 8", n)
	}

	first := int16(uint16(buf[0]) | uint16(buf[1])<<8)
	if first <= 0 {
		t.Fatalf("first sample decoded to %d, want a positive 16-bit value for raw 1.0", first)
	}
}

func TestSampleStream_MutedPushProducesSilence(t *testing.T) {
	s := newSampleStream()
	s.push([]float32{1.0}, true)

	buf := make([]byte, 4)
	if _, err := s.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("muted push produced non-silent PCM: %v", buf)
		}
	}
}

func TestSampleStream_ReadDrainsBufferedBytesBeforeReturningSilence(t *testing.T) {
	s := newSampleStream()
	s.push([]float32{0.5}, false) // 4 bytes buffered

	buf := make([]byte, 8) // ask for more than is buffered
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 8 {
		t.Fatalf("Read returned %d, want 8 (padded with silence)", n)
	}
	for _, b := range buf[4:] {
		if b != 0 {
			t.Fatalf("tail past buffered PCM should be silence, got %v", buf)
		}
	}
}
