package gemini

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestServerEventFromFrame_AllFields(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	raw := `{
		"serverContent": {
			"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "` +
		base64.StdEncoding.EncodeToString(pcm) + `"}}]},
			"inputTranscription": {"text": "hi "},
			"outputTranscription": {"text": "hello"},
			"interrupted": true,
			"turnComplete": true
		}
	}`
	var frame liveServerFrame
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ev := serverEventFromFrame(&frame)
	if string(ev.Audio) != string(pcm) {
		t.Errorf("audio = %v, want %v", ev.Audio, pcm)
	}
	if ev.InputTranscript != "hi " || ev.OutputTranscript != "hello" {
		t.Errorf("transcripts = %q / %q", ev.InputTranscript, ev.OutputTranscript)
	}
	if !ev.Interrupted || !ev.TurnComplete {
		t.Error("interrupted/turnComplete flags lost")
	}
}

func TestServerEventFromFrame_EmptyFrame(t *testing.T) {
	ev := serverEventFromFrame(&liveServerFrame{})
	if ev == nil || len(ev.Audio) != 0 || ev.Interrupted || ev.TurnComplete {
		t.Errorf("empty frame mapped to %+v", ev)
	}
}

func TestSetupFrameShape(t *testing.T) {
	speech := &liveSpeechConfig{}
	speech.VoiceConfig.PrebuiltVoiceConfig.VoiceName = "Puck"
	frame := liveClientFrame{Setup: &liveSetup{
		Model: "models/" + liveModel,
		GenerationConfig: &liveGenConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       speech,
		},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}}

	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	setup, ok := decoded["setup"].(map[string]any)
	if !ok {
		t.Fatalf("no setup object in %s", data)
	}
	if setup["model"] != "models/"+liveModel {
		t.Errorf("model = %v", setup["model"])
	}
	if _, ok := setup["inputAudioTranscription"]; !ok {
		t.Error("inputAudioTranscription missing from setup")
	}
	gc, ok := setup["generationConfig"].(map[string]any)
	if !ok {
		t.Fatal("generationConfig missing")
	}
	mods, _ := gc["responseModalities"].([]any)
	if len(mods) != 1 || mods[0] != "AUDIO" {
		t.Errorf("responseModalities = %v", mods)
	}
}

func TestCleanJSON(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1,2]\n```", "[1,2]"},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, c := range cases {
		if got := cleanJSON(c.in); got != c.want {
			t.Errorf("cleanJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
