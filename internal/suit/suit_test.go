package suit

import "testing"

func TestMirrorPairs(t *testing.T) {
	tests := []struct {
		in   Suit
		want Suit
	}{
		{Diamond, Spade},
		{Spade, Diamond},
		{Heart, Club},
		{Club, Heart},
	}
	for _, tt := range tests {
		if got := tt.in.Mirror(); got != tt.want {
			t.Errorf("Mirror(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMirrorIsInvolution(t *testing.T) {
	for _, s := range All {
		if got := s.Mirror().Mirror(); got != s {
			t.Errorf("Mirror(Mirror(%s)) = %s, want %s", s, got, s)
		}
	}
}

func TestMirrorHasNoFixedPoint(t *testing.T) {
	for _, s := range All {
		if s.Mirror() == s {
			t.Errorf("Mirror(%s) maps to itself", s)
		}
	}
}

func TestMirrorInvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid suit")
		}
	}()
	Suit('x').Mirror()
}

func TestAllOrderAndLabels(t *testing.T) {
	want := [4]Suit{Spade, Heart, Diamond, Club}
	if All != want {
		t.Fatalf("All = %v, want %v", All, want)
	}
	seen := make(map[string]bool)
	for _, s := range All {
		l := s.Label()
		if l == "" {
			t.Errorf("empty label for %s", s)
		}
		if seen[l] {
			t.Errorf("duplicate label %q", l)
		}
		seen[l] = true
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   rune
		want Suit
		ok   bool
	}{
		{'♠', Spade, true},
		{'♤', Spade, true},
		{'♥', Heart, true},
		{'❤', Heart, true},
		{'♡', Heart, true},
		{'♦', Diamond, true},
		{'♢', Diamond, true},
		{'♣', Club, true},
		{'♧', Club, true},
		{'A', 0, false},
		{'\uFE0F', 0, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Parse(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValid(t *testing.T) {
	for _, s := range All {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Suit('♡').Valid() {
		t.Error("outline glyph should not be a canonical suit")
	}
}
