package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestVoiceIDFromScan(t *testing.T) {
	// A missing row is an empty selection, not an error.
	id, err := voiceIDFromScan("", pgx.ErrNoRows)
	if err != nil || id != "" {
		t.Fatalf("no rows = %q, %v, want empty and nil", id, err)
	}

	id, err = voiceIDFromScan("layla_soft", nil)
	if err != nil || id != "layla_soft" {
		t.Fatalf("scan hit = %q, %v", id, err)
	}

	// Any other failure (a dropped connection, a bad query) surfaces.
	cause := errors.New("connection refused")
	if _, err = voiceIDFromScan("", cause); !errors.Is(err, cause) {
		t.Fatalf("query failure = %v, want wrapped %v", err, cause)
	}
}
