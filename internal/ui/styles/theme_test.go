// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestPaletteByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"indigo-mint", "indigo-mint"},
		{"teal-gold", "teal-gold"},
		{"dark-green-ivory", "dark-green-ivory"},
		{"nonsense", "indigo-mint"},
		{"", "indigo-mint"},
	}
	for _, tt := range tests {
		if got := PaletteByName(tt.name); got.Name != tt.want {
			t.Errorf("PaletteByName(%q) = %q, want %q", tt.name, got.Name, tt.want)
		}
	}
}

func TestNextPaletteCycles(t *testing.T) {
	seen := map[string]bool{}
	name := Palettes[0].Name
	for range Palettes {
		seen[name] = true
		name = NextPalette(name).Name
	}
	if len(seen) != len(Palettes) {
		t.Errorf("cycle visited %d of %d presets", len(seen), len(Palettes))
	}
	if name != Palettes[0].Name {
		t.Errorf("cycle did not wrap: ended at %q", name)
	}
}

func TestWithPaletteBuildsFreshTheme(t *testing.T) {
	base := newThemeWithProfile(PaletteByName("indigo-mint"), termenv.TrueColor, true)
	next := base.WithPalette(PaletteByName("teal-gold"))

	if next == base {
		t.Fatal("WithPalette must return a new theme")
	}
	if base.Palette.Name != "indigo-mint" {
		t.Errorf("original theme mutated: %q", base.Palette.Name)
	}
	if next.Palette.Name != "teal-gold" {
		t.Errorf("new theme palette = %q", next.Palette.Name)
	}
	if next.ColorProfile != base.ColorProfile || next.IsDark != base.IsDark {
		t.Error("terminal capabilities not carried over")
	}
}
