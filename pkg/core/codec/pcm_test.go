package codec

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestDecodePCM16_OddLength(t *testing.T) {
	// 5 bytes: two full samples plus a trailing byte that must be dropped.
	data := []byte{0x00, 0x40, 0x00, 0xC0, 0x7F}
	buf := DecodePCM16(data, 24000, 1)

	if buf.Frames() != 2 {
		t.Fatalf("Frames() = %d, want 2", buf.Frames())
	}
	if got := buf.Channels[0][0]; got != 0.5 {
		t.Errorf("sample 0 = %v, want 0.5", got)
	}
	if got := buf.Channels[0][1]; got != -0.5 {
		t.Errorf("sample 1 = %v, want -0.5", got)
	}
}

func TestDecodePCM16_OddLengthFrameCount(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7, 9, 101} {
		data := make([]byte, n)
		for channels := 1; channels <= 2; channels++ {
			buf := DecodePCM16(data, 16000, channels)
			want := (n / 2) / channels
			if buf.Frames() != want {
				t.Errorf("len=%d ch=%d: Frames() = %d, want %d", n, channels, buf.Frames(), want)
			}
		}
	}
}

func TestDecodePCM16_Stereo(t *testing.T) {
	// Interleaved L/R: L=0.25, R=-0.25.
	left, right := int16(8192), int16(-8192)
	var data []byte
	data = binary.LittleEndian.AppendUint16(data, uint16(left))
	data = binary.LittleEndian.AppendUint16(data, uint16(right))
	buf := DecodePCM16(data, 44100, 2)

	if buf.NumChannels() != 2 || buf.Frames() != 1 {
		t.Fatalf("got %d channels, %d frames", buf.NumChannels(), buf.Frames())
	}
	if buf.Channels[0][0] != 0.25 || buf.Channels[1][0] != -0.25 {
		t.Errorf("samples = %v / %v, want 0.25 / -0.25", buf.Channels[0][0], buf.Channels[1][0])
	}
}

func TestEncodePCM16_RoundTrip(t *testing.T) {
	// Every interesting int16 value must survive decode -> encode exactly.
	values := []int16{-32768, -32767, -16384, -1, 0, 1, 16384, 32766, 32767}
	var data []byte
	for _, v := range values {
		data = binary.LittleEndian.AppendUint16(data, uint16(v))
	}

	buf := DecodePCM16(data, 24000, 1)
	got := EncodePCM16(buf.Channels)
	if !bytes.Equal(got, data) {
		t.Errorf("round-trip mismatch:\n got %v\nwant %v", got, data)
	}
}

func TestEncodePCM16_Clamps(t *testing.T) {
	out := EncodePCM16([][]float32{{2.0, -2.0}})
	hi := int16(binary.LittleEndian.Uint16(out[0:2]))
	lo := int16(binary.LittleEndian.Uint16(out[2:4]))
	if hi != 32767 {
		t.Errorf("over-range sample = %d, want 32767", hi)
	}
	if lo != -32768 {
		t.Errorf("under-range sample = %d, want -32768", lo)
	}
}

func TestRMSEnergy(t *testing.T) {
	if got := RMSEnergy(nil); got != 0 {
		t.Errorf("RMSEnergy(nil) = %v, want 0", got)
	}

	// Constant half-scale signal has RMS 0.5.
	var data []byte
	for i := 0; i < 100; i++ {
		data = binary.LittleEndian.AppendUint16(data, uint16(int16(16384)))
	}
	if got := RMSEnergy(data); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("RMSEnergy = %v, want 0.5", got)
	}
}

func TestPeakAmplitude(t *testing.T) {
	var data []byte
	for _, v := range []int16{100, -32768, 5000} {
		data = binary.LittleEndian.AppendUint16(data, uint16(v))
	}
	if got := PeakAmplitude(data); got != 1.0 {
		t.Errorf("PeakAmplitude = %v, want 1.0", got)
	}
}
