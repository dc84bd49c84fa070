// Package codec provides the pure audio transforms used by both playback
// pipelines: little-endian 16-bit PCM decoding, WAV serialization, and
// amplitude measurement for the visualizer signal.
package codec

import "math"

// AudioBuffer is decoded audio: one float32 slice per channel, samples
// normalized to [-1, 1].
type AudioBuffer struct {
	SampleRate int
	Channels   [][]float32
}

// NumChannels returns the channel count.
func (b *AudioBuffer) NumChannels() int { return len(b.Channels) }

// Frames returns the per-channel frame count.
func (b *AudioBuffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *AudioBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// DecodePCM16 interprets data as little-endian signed 16-bit PCM
// interleaved across channels and normalizes it by dividing by 32768.
// An odd trailing byte is dropped silently.
func DecodePCM16(data []byte, sampleRate, channels int) *AudioBuffer {
	if channels <= 0 {
		channels = 1
	}
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	samples := len(data) / 2
	frames := samples / channels

	buf := &AudioBuffer{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for ch := 0; ch < channels; ch++ {
		buf.Channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames*channels; i++ {
		s := int16(data[i*2]) | int16(data[i*2+1])<<8
		buf.Channels[i%channels][i/channels] = float32(s) / 32768.0
	}
	return buf
}

// EncodePCM16 converts float frames back to interleaved little-endian
// 16-bit PCM. Samples are clamped to [-1, 1] and scaled by 32768 (capped
// at 32767), the inverse of DecodePCM16, so decoded buffers re-encode to
// the original bytes exactly.
func EncodePCM16(channels [][]float32) []byte {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]byte, frames*len(channels)*2)
	p := 0
	for i := 0; i < frames; i++ {
		for ch := range channels {
			v := float64(channels[ch][i])
			if v < -1 {
				v = -1
			} else if v > 1 {
				v = 1
			}
			scaled := v * 32768
			if scaled > 32767 {
				scaled = 32767
			}
			s := int16(scaled)
			out[p] = byte(s)
			out[p+1] = byte(s >> 8)
			p += 2
		}
	}
	return out
}

// RMSEnergy computes the root-mean-square energy of little-endian 16-bit
// PCM, between 0.0 and 1.0. This is the amplitude signal consumed by the
// background visualizers.
func RMSEnergy(pcm []byte) float64 {
	samples := len(pcm) / 2
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(pcm[i]) | int16(pcm[i+1])<<8
		n := float64(s) / 32768.0
		sum += n * n
	}
	return math.Sqrt(sum / float64(samples))
}

// PeakAmplitude returns the maximum absolute amplitude in the PCM data,
// between 0.0 and 1.0.
func PeakAmplitude(pcm []byte) float64 {
	if len(pcm) < 2 {
		return 0
	}
	var maxAbs float64
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(pcm[i]) | int16(pcm[i+1])<<8
		if abs := math.Abs(float64(s)); abs > maxAbs {
			maxAbs = abs
		}
	}
	return maxAbs / 32768.0
}
