package voice

import "testing"

func TestCatalogLoads(t *testing.T) {
	voices, err := All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(voices) == 0 {
		t.Fatal("catalog is empty")
	}
	seen := map[string]bool{}
	for _, v := range voices {
		if v.ID == "" || v.APIName == "" || v.Language == "" {
			t.Errorf("voice %+v missing required fields", v)
		}
		if seen[v.ID] {
			t.Errorf("duplicate voice id %q", v.ID)
		}
		seen[v.ID] = true
	}
}

func TestByID(t *testing.T) {
	v, err := ByID("rami_bold")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if v.APIName != "Puck" {
		t.Errorf("APIName = %q, want Puck", v.APIName)
	}
	if _, err := ByID("nope"); err == nil {
		t.Error("ByID(unknown) did not fail")
	}
}

func TestDisplayNameFallback(t *testing.T) {
	v, err := ByID("ahmed_news")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got := v.DisplayName("ar"); got != "أحمد (المذيع)" {
		t.Errorf("DisplayName(ar) = %q", got)
	}
	if got := v.DisplayName("xx"); got != "Ahmed" {
		t.Errorf("DisplayName fallback = %q, want Ahmed", got)
	}
}

func TestDefault(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if v.ID == "" {
		t.Error("default voice has empty id")
	}
}
