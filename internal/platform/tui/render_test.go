package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/trust-snake/internal/core"
)

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawTextColored(0, 0, "ab", core.ColorRed)
	s.DrawTextColored(2, 0, "cd", core.ColorGreen)
	s.DrawText(0, 1, "xyz")

	lines := strings.Split(RenderScreen(s), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "ab") || !strings.Contains(lines[0], "cd") {
		t.Errorf("line 0 = %q, missing text", lines[0])
	}
	if !strings.Contains(lines[1], "xyz") {
		t.Errorf("line 1 = %q, missing text", lines[1])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"Connected: 0x1234", 10, "Connected…"},
		{"abc", 1, "a"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText = %q", got)
	}
	if got := centerText("toolong", 3); got != "toolong" {
		t.Errorf("centerText = %q", got)
	}
}

func TestDPadHit(t *testing.T) {
	const width = 42
	for _, b := range dpadLayout(width) {
		if got := dpadHit(width, b.rect.X, b.rect.Y); got != b.action {
			t.Errorf("left edge of %s = %v", b.label, got)
		}
		if got := dpadHit(width, b.rect.Right()-1, b.rect.Y); got != b.action {
			t.Errorf("right edge of %s = %v", b.label, got)
		}
	}
	if got := dpadHit(width, 0, 0); got != core.ActionNone {
		t.Errorf("corner hit = %v, want none", got)
	}
	if got := dpadHit(width, 20, 2); got != core.ActionNone {
		t.Errorf("hint row hit = %v, want none", got)
	}
}

func TestRenderDPadDimsWhenDisabled(t *testing.T) {
	s := core.NewScreen(42, dpadRows)
	renderDPad(s, false)

	up := dpadLayout(42)[0]
	if c := s.GetCell(up.rect.X, up.rect.Y); c.Color != core.ColorDim || c.Rune != '[' {
		t.Errorf("up button cell = %+v", c)
	}

	renderDPad(s, true)
	if c := s.GetCell(up.rect.X, up.rect.Y); c.Color != core.ColorBrightCyan {
		t.Errorf("enabled color = %v", c.Color)
	}
}
