// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the threatintel-ai TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Slightly darker/lighter surface for headers/footers
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators, subtle backgrounds
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, failed exchanges
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, screening notices
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Emerald - Success states, connected indicator
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// =============================================================================
// THEME PALETTES
// =============================================================================

// Palette carries the two accents that distinguish one theme preset from
// another. Everything else (surfaces, text) is shared.
type Palette struct {
	Name string

	// Primary colors user-side chrome: the input prompt, user bubbles,
	// the selected sidebar entry.
	Primary lipgloss.AdaptiveColor

	// Accent colors assistant-side chrome: assistant bubbles, the
	// header brand, the spinner.
	Accent lipgloss.AdaptiveColor
}

// Palettes holds the named theme presets in selection order.
var Palettes = []Palette{
	{
		Name:    "indigo-mint",
		Primary: lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"},
		Accent:  lipgloss.AdaptiveColor{Light: "#059669", Dark: "#6EE7B7"},
	},
	{
		Name:    "teal-gold",
		Primary: lipgloss.AdaptiveColor{Light: "#0D9488", Dark: "#2DD4BF"},
		Accent:  lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"},
	},
	{
		Name:    "slate-cyan",
		Primary: lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"},
		Accent:  lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"},
	},
	{
		Name:    "purple-sky",
		Primary: lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"},
		Accent:  lipgloss.AdaptiveColor{Light: "#0284C7", Dark: "#7DD3FC"},
	},
	{
		Name:    "dark-green-ivory",
		Primary: lipgloss.AdaptiveColor{Light: "#14532D", Dark: "#4ADE80"},
		Accent:  lipgloss.AdaptiveColor{Light: "#78716C", Dark: "#FFFFF0"},
	},
}

// PaletteByName returns the named palette, or the first preset when the
// name is unknown.
func PaletteByName(name string) Palette {
	for _, p := range Palettes {
		if p.Name == name {
			return p
		}
	}
	return Palettes[0]
}

// NextPalette returns the preset after the named one, wrapping around.
// Used by the runtime theme-cycle key.
func NextPalette(name string) Palette {
	for i, p := range Palettes {
		if p.Name == name {
			return Palettes[(i+1)%len(Palettes)]
		}
	}
	return Palettes[0]
}
