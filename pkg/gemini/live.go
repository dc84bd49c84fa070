package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mano-habib/gimanoui/pkg/core"
	"github.com/mano-habib/gimanoui/pkg/core/live"
)

const (
	liveEndpoint       = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	liveConnectTimeout = 15 * time.Second
)

// LiveOptions configures one duplex voice session.
// LiveSystemInstruction is the default live persona. Voice conversations
// favor short answers; the directive grammar matches the chat persona.
const LiveSystemInstruction = `IDENTITY: You are **Gimanoui** (جمانوي), developed by **Mano Habib**.
CAPABILITIES: Vision, Search, Image Gen, GIF/Video Gen.

RULES:
1. Be concise and fast.
2. If asked for a song or video, use 'googleSearch' to find the **valid** YouTube link. Return the full link in your response.
3. If asked for a GIF or animation, output [GENERATE_GIF: prompt].
4. If asked to draw, output [GENERATE_IMAGE: prompt].`

type LiveOptions struct {
	// VoiceName is the backend voice for generated speech.
	VoiceName string
	// SystemInstruction sets the companion's live persona.
	SystemInstruction string
	// CaptureRate is the outbound PCM rate in Hz. Default: 16000.
	CaptureRate int
}

// Wire frames for the duplex protocol. Only the fields this client uses
// are modeled.

type liveClientFrame struct {
	Setup         *liveSetup         `json:"setup,omitempty"`
	RealtimeInput *liveRealtimeInput `json:"realtimeInput,omitempty"`
	ClientContent *liveClientContent `json:"clientContent,omitempty"`
}

type liveSetup struct {
	Model                    string          `json:"model"`
	GenerationConfig         *liveGenConfig  `json:"generationConfig,omitempty"`
	SystemInstruction        *liveContent    `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}       `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}       `json:"outputAudioTranscription,omitempty"`
	Tools                    []liveSetupTool `json:"tools,omitempty"`
}

type liveSetupTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type liveGenConfig struct {
	ResponseModalities []string          `json:"responseModalities,omitempty"`
	SpeechConfig       *liveSpeechConfig `json:"speechConfig,omitempty"`
}

type liveSpeechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type liveRealtimeInput struct {
	MediaChunks []liveBlob `json:"mediaChunks,omitempty"`
}

type liveBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type liveClientContent struct {
	Turns        []liveContent `json:"turns,omitempty"`
	TurnComplete bool          `json:"turnComplete,omitempty"`
}

type liveContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []livePart `json:"parts,omitempty"`
}

type livePart struct {
	Text       string    `json:"text,omitempty"`
	InlineData *liveBlob `json:"inlineData,omitempty"`
}

type liveServerFrame struct {
	SetupComplete *struct{}          `json:"setupComplete,omitempty"`
	ServerContent *liveServerContent `json:"serverContent,omitempty"`
}

type liveServerContent struct {
	ModelTurn           *liveContent       `json:"modelTurn,omitempty"`
	Interrupted         bool               `json:"interrupted,omitempty"`
	TurnComplete        bool               `json:"turnComplete,omitempty"`
	InputTranscription  *liveTranscription `json:"inputTranscription,omitempty"`
	OutputTranscription *liveTranscription `json:"outputTranscription,omitempty"`
}

type liveTranscription struct {
	Text string `json:"text,omitempty"`
}

// LiveTransport is a websocket connection speaking the duplex protocol.
// It implements live.Transport. Writes are serialized; Receive is called
// from a single goroutine.
type LiveTransport struct {
	conn        *websocket.Conn
	captureRate int

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// DialLive opens a duplex voice session and completes the setup
// handshake before returning.
func (c *Client) DialLive(ctx context.Context, opts LiveOptions) (*LiveTransport, error) {
	if opts.CaptureRate == 0 {
		opts.CaptureRate = 16000
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, liveConnectTimeout)
		defer cancel()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, liveEndpoint+"?key="+c.apiKey, nil)
	if err != nil {
		if resp != nil {
			return nil, core.NewAPIError(fmt.Sprintf("live dial failed (status %d): %v", resp.StatusCode, err))
		}
		return nil, core.NewAPIError("live dial failed: " + err.Error())
	}

	speech := &liveSpeechConfig{}
	speech.VoiceConfig.PrebuiltVoiceConfig.VoiceName = opts.VoiceName
	setup := liveClientFrame{Setup: &liveSetup{
		Model: "models/" + liveModel,
		GenerationConfig: &liveGenConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       speech,
		},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
		Tools:                    []liveSetupTool{{GoogleSearch: &struct{}{}}},
	}}
	if opts.SystemInstruction != "" {
		setup.Setup.SystemInstruction = &liveContent{
			Parts: []livePart{{Text: opts.SystemInstruction}},
		}
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, core.NewAPIError("send live setup: " + err.Error())
	}

	_ = conn.SetReadDeadline(time.Now().Add(liveConnectTimeout))
	var first liveServerFrame
	if err := conn.ReadJSON(&first); err != nil {
		_ = conn.Close()
		return nil, core.NewAPIError("read live setup ack: " + err.Error())
	}
	_ = conn.SetReadDeadline(time.Time{})
	if first.SetupComplete == nil {
		_ = conn.Close()
		return nil, core.NewAPIError("live setup was not acknowledged")
	}

	return &LiveTransport{conn: conn, captureRate: opts.CaptureRate}, nil
}

// SendAudio transmits one PCM16 frame as a realtime media chunk.
func (t *LiveTransport) SendAudio(pcm []byte) error {
	return t.writeJSON(liveClientFrame{RealtimeInput: &liveRealtimeInput{
		MediaChunks: []liveBlob{{
			MIMEType: fmt.Sprintf("audio/pcm;rate=%d", t.captureRate),
			Data:     base64.StdEncoding.EncodeToString(pcm),
		}},
	}})
}

// SendVideoFrame transmits one JPEG frame as a realtime media chunk.
func (t *LiveTransport) SendVideoFrame(jpeg []byte) error {
	return t.writeJSON(liveClientFrame{RealtimeInput: &liveRealtimeInput{
		MediaChunks: []liveBlob{{
			MIMEType: "image/jpeg",
			Data:     base64.StdEncoding.EncodeToString(jpeg),
		}},
	}})
}

// SendText transmits a system text notice as a completed user turn.
func (t *LiveTransport) SendText(text string) error {
	return t.writeJSON(liveClientFrame{ClientContent: &liveClientContent{
		Turns:        []liveContent{{Role: "user", Parts: []livePart{{Text: text}}}},
		TurnComplete: true,
	}})
}

// Receive blocks for the next server event. Frames with no modeled
// content map to an empty event.
func (t *LiveTransport) Receive() (*live.ServerEvent, error) {
	var frame liveServerFrame
	if err := t.conn.ReadJSON(&frame); err != nil {
		return nil, err
	}
	return serverEventFromFrame(&frame), nil
}

func serverEventFromFrame(frame *liveServerFrame) *live.ServerEvent {
	ev := &live.ServerEvent{}
	sc := frame.ServerContent
	if sc == nil {
		return ev
	}
	ev.Interrupted = sc.Interrupted
	ev.TurnComplete = sc.TurnComplete
	if sc.InputTranscription != nil {
		ev.InputTranscript = sc.InputTranscription.Text
	}
	if sc.OutputTranscription != nil {
		ev.OutputTranscript = sc.OutputTranscription.Text
	}
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				continue
			}
			ev.Audio = append(ev.Audio, data...)
		}
	}
	return ev
}

// Close shuts the connection down. Idempotent.
func (t *LiveTransport) Close() error {
	t.closeOnce.Do(func() {
		t.writeMu.Lock()
		_ = t.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.writeMu.Unlock()
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func (t *LiveTransport) writeJSON(frame liveClientFrame) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}
