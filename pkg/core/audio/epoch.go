// Package audio serializes speech playback: an epoch-tagged FIFO queue for
// synthesized clips and a gapless scheduler for streamed PCM.
package audio

import "sync/atomic"

// Token is one generation of the audio session. Asynchronous productions
// capture the current token and are discarded at the consumption point if
// the epoch has advanced since.
type Token uint64

// Epoch is a monotonically increasing generation counter. It is the sole
// cancellation primitive: stopping playback or starting a new exchange
// advances it, making every in-flight result inert on arrival.
type Epoch struct {
	n atomic.Uint64
}

// Current returns the active token.
func (e *Epoch) Current() Token {
	return Token(e.n.Load())
}

// Advance invalidates all tokens issued so far and returns the new one.
func (e *Epoch) Advance() Token {
	return Token(e.n.Add(1))
}
