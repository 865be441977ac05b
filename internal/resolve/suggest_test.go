package resolve

import (
	"math"
	"testing"
)

func TestSuggestBound(t *testing.T) {
	for _, token := range []string{"stdy", "x", "zzzzzzzz", "translatee", "a"} {
		got := Suggest(token)
		if len(got) > 3 {
			t.Errorf("Suggest(%q) returned %d candidates, want <= 3", token, len(got))
		}
	}
	if got := Suggest(""); got != nil {
		t.Errorf("Suggest(\"\") = %v, want nil", got)
	}
}

func TestSuggestTypo(t *testing.T) {
	got := Suggest("stdy")
	want := []string{"study", "translate", "presentation"}
	if len(got) != len(want) {
		t.Fatalf("got %d suggestions, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("suggestion[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestSuggestPrefixBonus(t *testing.T) {
	got := Suggest("hel")
	if got[0].Name != "help" {
		t.Errorf("top suggestion for %q = %q, want help", "hel", got[0].Name)
	}
	// excel and clear score identically on character overlap alone; the
	// stable sort must keep excel first because it precedes clear in the
	// catalog.
	if got[1].Name != "excel" || got[2].Name != "clear" {
		t.Errorf("tie-break order = [%s %s], want [excel clear]", got[1].Name, got[2].Name)
	}
}

func TestSimilarityScoring(t *testing.T) {
	tests := []struct {
		token string
		name  string
		want  float64
	}{
		// No prefix or containment, four of four characters overlap,
		// length delta 1.
		{token: "stdy", name: "study", want: 4},
		// Prefix and containment both apply additively, plus full
		// character overlap, length delta 1.
		{token: "hel", name: "help", want: 18},
		// Exact match: 10 + 5 + len overlap, delta clamped to 1.
		{token: "study", name: "study", want: 20},
		// Repeated token letters cannot double-count a single name
		// character: only one 'l' in excel.
		{token: "lll", name: "excel", want: 1 / math.Sqrt(2)},
		{token: "q", name: "study", want: 0},
	}

	for _, tt := range tests {
		got := similarity(tt.token, tt.name)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.token, tt.name, got, tt.want)
		}
	}
}

func TestSuggestDescendingScores(t *testing.T) {
	got := Suggest("transl")
	for i := 1; i < len(got); i++ {
		a := similarity("transl", got[i-1].Name)
		b := similarity("transl", got[i].Name)
		if b > a {
			t.Errorf("suggestions not sorted: %q (%v) before %q (%v)", got[i-1].Name, a, got[i].Name, b)
		}
	}
	if got[0].Name != "translate" {
		t.Errorf("top suggestion = %q, want translate", got[0].Name)
	}
}
