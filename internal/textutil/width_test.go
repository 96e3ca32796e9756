package textutil

import "testing"

func TestDisplayWidthGraphemeClusters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"ascii", "hello", 5},
		{"wide cjk", "你好", 4},
		{"warning emoji with VS16", "⚠️", 2},
		{"family zwj", "👨‍👩‍👧", 2},
		{"combining accent", "é", 1},
		{"mixed", "a⚠️b", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayWidth(tt.text); got != tt.want {
				t.Fatalf("DisplayWidth(%q)=%d want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplitAtWidth(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		width     int
		wantHead  string
		wantRest  string
		wantWidth int
	}{
		{"fits", "abc", 5, "abc", "", 3},
		{"exact", "abcdef", 3, "abc", "def", 3},
		{"wide does not straddle", "a你好", 2, "a", "你好", 1},
		{"progress on width 1 with wide rune", "你好", 1, "你", "好", 2},
		{"zero width still progresses", "xy", 0, "x", "y", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, rest, w := SplitAtWidth(tt.text, tt.width)
			if head != tt.wantHead || rest != tt.wantRest || w != tt.wantWidth {
				t.Fatalf("SplitAtWidth(%q,%d) = (%q,%q,%d), want (%q,%q,%d)",
					tt.text, tt.width, head, rest, w, tt.wantHead, tt.wantRest, tt.wantWidth)
			}
		})
	}
}

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		width     int
		want      string
		truncated bool
	}{
		{"fits without truncation", "file.txt", 20, "file.txt", false},
		{"adds ellipsis when needed", "verylongname", 6, "veryl…", true},
		{"only ellipsis when width too small", "example", 1, "…", true},
		{"multi-byte characters respected", "你好世界", 5, "你好…", true},
		{"returns empty when width is zero", "anything", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := TruncateToWidth(tt.text, tt.width, "…")
			if got != tt.want || cut != tt.truncated {
				t.Fatalf("TruncateToWidth(%q,%d) = (%q,%v), want (%q,%v)", tt.text, tt.width, got, cut, tt.want, tt.truncated)
			}
			if DisplayWidth(got) > tt.width {
				t.Fatalf("result %q wider than %d", got, tt.width)
			}
		})
	}
}

func TestSkipWidth(t *testing.T) {
	if got := SkipWidth("abcdef", 2); got != "cdef" {
		t.Fatalf("SkipWidth ascii = %q", got)
	}
	if got := SkipWidth("你好", 1); got != " 好" {
		t.Fatalf("SkipWidth straddling wide rune = %q", got)
	}
	if got := SkipWidth("ab", 5); got != "" {
		t.Fatalf("SkipWidth past end = %q", got)
	}
}

func TestExpandTabs(t *testing.T) {
	if got := ExpandTabs("a\tb", 4); got != "a   b" {
		t.Fatalf("ExpandTabs = %q", got)
	}
	if got := ExpandTabs("你\tb", 4); got != "你  b" {
		t.Fatalf("ExpandTabs wide = %q", got)
	}
	if got := ExpandTabs("\t", 0); got != "\t" {
		t.Fatalf("ExpandTabs with zero width should be a no-op, got %q", got)
	}
}
