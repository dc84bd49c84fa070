package directive

import "testing"

func TestExtract_Image(t *testing.T) {
	d, ok := Extract("Sure! [GENERATE_IMAGE: a cat] coming up")
	if !ok {
		t.Fatal("Extract found nothing")
	}
	if d.Kind != KindImage {
		t.Errorf("Kind = %q, want image", d.Kind)
	}
	if d.Prompt != "a cat" {
		t.Errorf("Prompt = %q, want %q", d.Prompt, "a cat")
	}
	if d.Raw != "[GENERATE_IMAGE: a cat]" {
		t.Errorf("Raw = %q", d.Raw)
	}
}

func TestExtract_Video(t *testing.T) {
	d, ok := Extract("[GENERATE_GIF: dancing robot]")
	if !ok || d.Kind != KindVideo || d.Prompt != "dancing robot" {
		t.Fatalf("Extract = %+v, %v", d, ok)
	}
}

func TestExtract_GreedyToFirstBracket(t *testing.T) {
	d, ok := Extract("[GENERATE_IMAGE: a [weird prompt] with more]")
	if !ok {
		t.Fatal("Extract found nothing")
	}
	// Matching stops at the first closing bracket.
	if d.Prompt != "a [weird prompt" {
		t.Errorf("Prompt = %q, want %q", d.Prompt, "a [weird prompt")
	}
}

func TestExtract_None(t *testing.T) {
	for _, text := range []string{
		"no directive here",
		"[GENERATE_IMAGE: unterminated",
		"",
	} {
		if _, ok := Extract(text); ok {
			t.Errorf("Extract(%q) matched, want no match", text)
		}
	}
}

func TestExtract_EmptyPrompt(t *testing.T) {
	d, ok := Extract("[GENERATE_IMAGE: ]")
	if !ok || d.Prompt != "" {
		t.Errorf("Extract = %+v, %v; want empty prompt match", d, ok)
	}
}

func TestStrip(t *testing.T) {
	got := Strip("Here [GENERATE_IMAGE: a cat] and [GENERATE_GIF: a dog] done")
	want := "Here  and  done"
	if got != want {
		t.Errorf("Strip = %q, want %q", got, want)
	}
}

func TestContains(t *testing.T) {
	if !Contains("x [GENERATE_GIF: y] z") {
		t.Error("Contains missed a video directive")
	}
	if Contains("GENERATE_IMAGE without brackets") {
		t.Error("Contains matched a non-token")
	}
}
