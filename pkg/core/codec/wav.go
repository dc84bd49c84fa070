package codec

import "encoding/binary"

// WAV serializes the buffer into a canonical 44-byte-header PCM WAV
// container. Sample rate, channel count, and 16-bit depth match the source
// buffer exactly.
func (b *AudioBuffer) WAV() []byte {
	ch := b.NumChannels()
	if ch == 0 {
		ch = 1
	}
	dataLen := b.Frames() * ch * 2
	total := 44 + dataLen
	out := make([]byte, total)

	le := binary.LittleEndian
	copy(out[0:4], "RIFF")
	le.PutUint32(out[4:8], uint32(total-8))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	le.PutUint32(out[16:20], 16)
	le.PutUint16(out[20:22], 1) // PCM
	le.PutUint16(out[22:24], uint16(ch))
	le.PutUint32(out[24:28], uint32(b.SampleRate))
	le.PutUint32(out[28:32], uint32(b.SampleRate*2*ch))
	le.PutUint16(out[32:34], uint16(ch*2))
	le.PutUint16(out[34:36], 16)
	copy(out[36:40], "data")
	le.PutUint32(out[40:44], uint32(dataLen))

	copy(out[44:], EncodePCM16(b.Channels))
	return out
}
