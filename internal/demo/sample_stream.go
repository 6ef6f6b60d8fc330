package demo

import (
	"encoding/binary"
	"io"
	"sync"
)

// sampleStream adapts the Console's mono float32 samples to the 16-bit
// little-endian stereo PCM stream ebiten's audio.Player reads from. push is
// called once per frame from Update; Read is called from ebiten's own audio
// goroutine, so both sides go through a mutex.
type sampleStream struct {
	mu  sync.Mutex
	buf []byte
}

func newSampleStream() *sampleStream {
	return &sampleStream{}
}

// push converts this frame's downsampled mono samples to stereo 16-bit PCM
// and appends them to the pending buffer.
func (s *sampleStream) push(samples []float32, mute bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, raw := range samples {
		v := raw
		if mute {
			v = 0
		}
		pcm := int16(v * 32767)
		var frame [4]byte
		binary.LittleEndian.PutUint16(frame[0:2], uint16(pcm))
		binary.LittleEndian.PutUint16(frame[2:4], uint16(pcm))
		s.buf = append(s.buf, frame[:]...)
	}
}

// Read implements io.Reader for audio.Context.NewPlayer. It hands back
// whatever PCM is buffered, or silence if the emulator hasn't produced a
// frame's worth yet (ebiten's audio goroutine polls faster than 60Hz).
func (s *sampleStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	if n < len(p) {
		for i := n; i < len(p); i++ {
			p[i] = 0
		}
		n = len(p)
	}
	return n, nil
}

var _ io.Reader = (*sampleStream)(nil)
