package codec

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// readWAV is a minimal standard PCM16 WAV reader used to verify the
// container written by WAV().
func readWAV(t *testing.T, data []byte) (sampleRate, channels int, pcm []byte) {
	t.Helper()
	if len(data) < 44 {
		t.Fatalf("WAV too short: %d bytes", len(data))
	}
	le := binary.LittleEndian
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("bad RIFF header: %q %q", data[0:4], data[8:12])
	}
	if string(data[12:16]) != "fmt " {
		t.Fatalf("bad fmt chunk id: %q", data[12:16])
	}
	if format := le.Uint16(data[20:22]); format != 1 {
		t.Fatalf("audio format = %d, want 1 (PCM)", format)
	}
	channels = int(le.Uint16(data[22:24]))
	sampleRate = int(le.Uint32(data[24:28]))
	if bits := le.Uint16(data[34:36]); bits != 16 {
		t.Fatalf("bit depth = %d, want 16", bits)
	}
	if string(data[36:40]) != "data" {
		t.Fatalf("bad data chunk id: %q", data[36:40])
	}
	dataLen := int(le.Uint32(data[40:44]))
	if 44+dataLen != len(data) {
		t.Fatalf("data length %d does not match container size %d", dataLen, len(data))
	}
	return sampleRate, channels, data[44:]
}

func TestWAV_RoundTrip(t *testing.T) {
	src := make([]byte, 0, 64)
	for _, v := range []int16{0, 1, -1, 12345, -12345, 32767, -32768} {
		src = binary.LittleEndian.AppendUint16(src, uint16(v))
	}

	buf := DecodePCM16(src, 24000, 1)
	wav := buf.WAV()

	rate, ch, pcm := readWAV(t, wav)
	if rate != 24000 || ch != 1 {
		t.Errorf("rate/channels = %d/%d, want 24000/1", rate, ch)
	}
	if !bytes.Equal(pcm, src) {
		t.Errorf("PCM payload mismatch:\n got %v\nwant %v", pcm, src)
	}
}

func TestWAV_StereoHeader(t *testing.T) {
	src := make([]byte, 8) // two stereo frames of silence
	buf := DecodePCM16(src, 44100, 2)
	wav := buf.WAV()

	rate, ch, pcm := readWAV(t, wav)
	if rate != 44100 || ch != 2 {
		t.Errorf("rate/channels = %d/%d, want 44100/2", rate, ch)
	}
	le := binary.LittleEndian
	if byteRate := le.Uint32(wav[28:32]); byteRate != 44100*2*2 {
		t.Errorf("byte rate = %d, want %d", byteRate, 44100*2*2)
	}
	if align := le.Uint16(wav[32:34]); align != 4 {
		t.Errorf("block align = %d, want 4", align)
	}
	if len(pcm) != 8 {
		t.Errorf("payload = %d bytes, want 8", len(pcm))
	}
}

func TestWAV_EmptyBuffer(t *testing.T) {
	buf := DecodePCM16(nil, 24000, 1)
	wav := buf.WAV()
	if len(wav) != 44 {
		t.Errorf("empty buffer WAV = %d bytes, want 44 (header only)", len(wav))
	}
}
