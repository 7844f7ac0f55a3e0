package entryui

import "testing"

func plainRunes(text string) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		if r == '\n' {
			out = append(out, styledRune{isBreak: true})
			continue
		}
		width := 1
		if r > 0x2000 {
			width = 2
		}
		out = append(out, styledRune{s: string(r), width: width, isSpace: r == ' '})
	}
	return out
}

func TestBuildStyledRunesByKind(t *testing.T) {
	runes := buildStyledRunes("Wordle 1 3/6\n\nnoise")
	if runes[0].s != headerStyle.Render("W") {
		t.Fatalf("expected header style for first rune")
	}
	breaks := 0
	for _, r := range runes {
		if r.isBreak {
			breaks++
		}
	}
	if breaks != 1 {
		t.Fatalf("expected blank lines to be dropped, got %d breaks", breaks)
	}
	last := runes[len(runes)-1]
	if last.s != otherStyle.Render("e") {
		t.Fatalf("expected muted style for unrecognised line")
	}
}

func TestBuildStyledRunesLeavesMarkersUnstyled(t *testing.T) {
	runes := buildStyledRunes("🟩🟨")
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != "🟩" || runes[1].s != "🟨" {
		t.Fatalf("expected raw marker emoji, got %q %q", runes[0].s, runes[1].s)
	}
	if runes[0].width != 2 {
		t.Fatalf("expected double-width marker, got %d", runes[0].width)
	}
}

func TestBuildStyledRunesHintLine(t *testing.T) {
	runes := buildStyledRunes("💡 hint")
	if runes[0].s != "💡" {
		t.Fatalf("expected raw bulb")
	}
	if runes[2].s != hintStyle.Render("h") {
		t.Fatalf("expected hint style for hint text")
	}
}

func TestWrapStyledRunesAtSpace(t *testing.T) {
	got := wrapStyledRunes(plainRunes("ab cd ef"), 5)
	if got != "ab\ncd ef" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesKeepsBreaks(t *testing.T) {
	got := wrapStyledRunes(plainRunes("ab\ncd"), 10)
	if got != "ab\ncd" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesWideRunes(t *testing.T) {
	got := wrapStyledRunes(plainRunes("🟩🟩🟩"), 4)
	if got != "🟩🟩\n🟩" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesNoWidth(t *testing.T) {
	got := wrapStyledRunes(plainRunes("ab cd"), 0)
	if got != "ab cd" {
		t.Fatalf("unexpected render: %q", got)
	}
}
