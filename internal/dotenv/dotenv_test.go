package dotenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileIsNoop(t *testing.T) {
	t.Parallel()
	if err := Load(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("Load missing file error: %v", err)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	input := strings.NewReader("" +
		"# comment\n" +
		"\n" +
		"PLAIN=value\n" +
		"QUOTED=\"hello world\"\n" +
		"SINGLE='single quoted'\n" +
		"export EXPORTED=ok\n" +
		"SPACED =  padded  \n" +
		"EQUALS=a=b=c\n" +
		"noequals\n" +
		"=nokey\n")

	pairs, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	want := map[string]string{
		"PLAIN":    "value",
		"QUOTED":   "hello world",
		"SINGLE":   "single quoted",
		"EXPORTED": "ok",
		"SPACED":   "padded",
		"EQUALS":   "a=b=c",
	}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d: %v", len(pairs), len(want), pairs)
	}
	for key, val := range want {
		if got := pairs[key]; got != val {
			t.Errorf("%s=%q, want %q", key, got, val)
		}
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "FROM_FILE=loaded\nEXISTING=from_file\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("EXISTING", "already_set")

	if err := Load(envPath); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := os.Getenv("FROM_FILE"); got != "loaded" {
		t.Fatalf("FROM_FILE=%q, want %q", got, "loaded")
	}
	if got := os.Getenv("EXISTING"); got != "already_set" {
		t.Fatalf("EXISTING=%q, want existing value preserved", got)
	}
}
