package textutil

import (
	"reflect"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Crate: A  ", "Crate- A"},
		{"a/b\\c", "a-b-c"},
		{"what?\"<>|", "what"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Show", "My_Show"},
		{" Crate A ", "Crate_A"},
		{"_Hero_", "Hero"},
		{"..", ""},
		{"   ", ""},
		{"Cafe\u0301", "Caf\u00e9"},
	}
	for _, tt := range tests {
		if got := SanitizeSegment(tt.in); got != tt.want {
			t.Errorf("SanitizeSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Crate A!"); got != "crate_a" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken("  "); got != "unknown" {
		t.Fatalf("SanitizeToken blank = %q", got)
	}
}

func TestOffendingChars(t *testing.T) {
	got := OffendingChars("my file#1 #2.png", "#", false)
	want := []rune{' ', '#'}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("OffendingChars = %q, want %q", string(got), string(want))
	}
	if got := OffendingChars("my file.png", "#", true); len(got) != 0 {
		t.Fatalf("expected spaces to be allowed, got %q", string(got))
	}
}

func TestFoldKey(t *testing.T) {
	if FoldKey("Hero.FBX") != FoldKey("hero.fbx") {
		t.Fatal("expected case-insensitive keys to match")
	}
	if FoldKey("Cafe\u0301.png") != FoldKey("caf\u00e9.png") {
		t.Fatal("expected decomposed and composed names to match")
	}
}
