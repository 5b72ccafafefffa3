package engine

import "testing"

func TestSafeFileToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pexels-12345", "pexels-12345"},
		{"Sunset Beach.mp4", "sunset-beach.mp4"},
		{"../../etc/passwd", "etc-passwd"},
		{"  ", "asset"},
		{"a//b\\c", "a-b-c"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeFileToken(tt.in); got != tt.want {
				t.Errorf("SafeFileToken(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUniqueFileToken(t *testing.T) {
	if got := UniqueFileToken("pexels_pexels-12345"); got != "pexels_pexels-12345" {
		t.Errorf("safe input changed: %q", got)
	}

	inputs := []string{
		"ai_search_ai-日落",
		"ai_search_ai-海滩",
		"ai_search_ai-Sunset",
		"ai_search_ai-sunset",
		"ai_search_ai-sunset!",
		"ai_search_ai sunset",
	}
	seen := map[string]string{}
	for _, in := range inputs {
		got := UniqueFileToken(in)
		if prev, ok := seen[got]; ok {
			t.Errorf("UniqueFileToken(%q) = UniqueFileToken(%q) = %q", in, prev, got)
		}
		seen[got] = in
		if got != UniqueFileToken(in) {
			t.Errorf("UniqueFileToken(%q) is not stable", in)
		}
		if SafeFileToken(got) != got {
			t.Errorf("UniqueFileToken(%q) = %q, not file-safe", in, got)
		}
	}
}
