package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeLeavesSafeInput(t *testing.T) {
	input := "plain text, ünïcode and 你好"
	if got := Sanitize(input); got != input {
		t.Fatalf("expected %q to remain untouched, got %q", input, got)
	}
}

func TestSanitizeStripsEscapeSequences(t *testing.T) {
	got := Sanitize("bad\x1b[31mred\x1b[0m path")
	if got != "badred path" {
		t.Fatalf("Sanitize = %q, want %q", got, "badred path")
	}
	if got := Sanitize("a\nb\x07"); got != "a b?" {
		t.Fatalf("Sanitize controls = %q", got)
	}
	if containsControl(got) {
		t.Fatalf("sanitized text still contains control characters: %q", got)
	}
}

func TestSanitizeLabelsBidiOverrides(t *testing.T) {
	got := Sanitize("a" + string(rune(0x202E)) + "b")
	if !strings.Contains(got, "⟪RLO⟫") {
		t.Fatalf("expected RLO label, got %q", got)
	}
}

func TestSanitizeKeepsZeroWidthJoiner(t *testing.T) {
	family := "👨‍👩‍👧"
	if got := Sanitize(family); got != family {
		t.Fatalf("ZWJ sequence altered: %q", got)
	}
}

func TestSanitizeCodeKeepsTabs(t *testing.T) {
	got := SanitizeCode("\tx\x07")
	if got != "\tx?" {
		t.Fatalf("SanitizeCode = %q", got)
	}
}

func containsControl(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
