// Package transcript folds the two independently-timed transcription
// streams of a live session (user speech and model speech) into one
// ordered, role-alternating turn history.
package transcript

import (
	"strings"

	"github.com/mano-habib/gimanoui/pkg/core/types"
)

// Turn accumulates one role's contiguous speech, together with any media
// the model generated while the turn was open.
type Turn struct {
	Role   types.Role
	Text   string
	Images [][]byte // generated image payloads
	Videos []string // generated video URIs
}

// Reducer is a pure state machine over (role, text-delta) events. At most
// one turn is open at a time; a delta for the other role finalizes the
// open turn before a new one opens. Not safe for concurrent use; the
// session controller owns it from a single goroutine.
type Reducer struct {
	history []Turn
	open    *Turn
}

// Add appends a delta to the turn for role, finalizing any open turn of
// the opposite role first.
func (r *Reducer) Add(role types.Role, delta string) {
	if delta == "" {
		return
	}
	if r.open != nil && r.open.Role != role {
		r.finalize()
	}
	if r.open == nil {
		r.open = &Turn{Role: role}
	}
	r.open.Text += delta
}

// FinishTurn handles an explicit turn-complete signal: the open turn, if
// it has any content, is finalized. An empty open turn is dropped.
func (r *Reducer) FinishTurn() {
	if r.open == nil {
		return
	}
	if strings.TrimSpace(r.open.Text) == "" && len(r.open.Images) == 0 && len(r.open.Videos) == 0 {
		r.open = nil
		return
	}
	r.finalize()
}

// Open returns the currently accumulating turn, or nil.
func (r *Reducer) Open() *Turn { return r.open }

// SetOpenText replaces the open turn's text. Used to strip a directive
// token out of the visible transcript.
func (r *Reducer) SetOpenText(text string) {
	if r.open != nil {
		r.open.Text = text
	}
}

// AttachImage adds a generated image to the open model turn, or to the
// most recent finalized model turn if none is open. The attachment is
// never lost regardless of how generation latency races turn completion.
func (r *Reducer) AttachImage(data []byte) {
	if t := r.attachTarget(); t != nil {
		t.Images = append(t.Images, data)
	}
}

// AttachVideo adds a generated video URI under the same placement rule as
// AttachImage.
func (r *Reducer) AttachVideo(uri string) {
	if t := r.attachTarget(); t != nil {
		t.Videos = append(t.Videos, uri)
	}
}

func (r *Reducer) attachTarget() *Turn {
	if r.open != nil && r.open.Role == types.RoleModel {
		return r.open
	}
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Role == types.RoleModel {
			return &r.history[i]
		}
	}
	// No model turn exists yet: open one so the media still lands in the
	// transcript.
	if r.open == nil {
		r.open = &Turn{Role: types.RoleModel}
		return r.open
	}
	return nil
}

// Close finalizes any open turn and returns the complete ordered history.
// The reducer is drained afterwards.
func (r *Reducer) Close() []Turn {
	r.FinishTurn()
	out := r.history
	r.history = nil
	return out
}

// History returns the finalized turns so far without closing the reducer.
func (r *Reducer) History() []Turn { return r.history }

func (r *Reducer) finalize() {
	if r.open == nil {
		return
	}
	r.history = append(r.history, *r.open)
	r.open = nil
}

// Messages converts finalized turns into chat-history messages, attaching
// generated images as inline PNG media and video URIs as playable video
// media. Turns that end up with no text and no media are skipped.
func Messages(turns []Turn) []types.ChatMessage {
	var out []types.ChatMessage
	for _, turn := range turns {
		msg := types.NewMessage(turn.Role, strings.TrimSpace(turn.Text))
		for _, img := range turn.Images {
			msg.Media = append(msg.Media, types.MediaItem{Data: img, MIMEType: "image/png"})
		}
		for _, uri := range turn.Videos {
			msg.Media = append(msg.Media, types.MediaItem{URI: uri, MIMEType: "video/mp4"})
		}
		if msg.Text == "" && len(msg.Media) == 0 {
			continue
		}
		out = append(out, msg)
	}
	return out
}
