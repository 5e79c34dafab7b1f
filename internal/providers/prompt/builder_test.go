package prompt

import (
	"strings"
	"testing"
)

func TestPresetLookup(t *testing.T) {
	preset, ok := Preset(" Flux ")
	if !ok {
		t.Fatal("flux preset not found")
	}
	if preset.ID != "black-forest-labs/flux-1.1-pro" {
		t.Fatalf("ID = %q", preset.ID)
	}
	if preset.Config["aspect_ratio"] != "1:1" {
		t.Fatalf("aspect_ratio = %v", preset.Config["aspect_ratio"])
	}

	if _, ok := Preset("dall-e"); ok {
		t.Fatal("unknown preset should not resolve")
	}

	if got := DefaultPreset().ID; got != preset.ID {
		t.Fatalf("default preset = %q", got)
	}
}

func TestForHeadline(t *testing.T) {
	got := ForHeadline("  Cities ban private cars  ")
	if !strings.Contains(got, `"Cities ban private cars"`) {
		t.Fatalf("prompt = %q, want the trimmed headline quoted", got)
	}
	if !strings.HasPrefix(got, "Generate a vivid, realistic image") {
		t.Fatalf("prompt = %q", got)
	}
}

func TestCaption(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the dreamers", "The Dreamers"},
		{"  team ROCKET  ", "Team Rocket"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := Caption(tc.in); got != tc.want {
			t.Fatalf("Caption(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
