package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pantheon/pkg/rings"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns hex on TrueColor terminals and no color otherwise, so
// 16/256-color terminals keep their own background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns hex on ANSI256+ terminals and ANSI white below that.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds every style the viewer draws with.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor

	// Highlight colors
	Active  lipgloss.AdaptiveColor
	Related lipgloss.AdaptiveColor
	Sibling lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor

	Base        lipgloss.Style
	Header      lipgloss.Style
	Panel       lipgloss.Style
	PanelFocus  lipgloss.Style
	PanelTitle  lipgloss.Style
	Central     lipgloss.Style
	Action      lipgloss.Style
	Indicator   lipgloss.Style
	Message     lipgloss.Style
	ErrorText   lipgloss.Style
	MutedText   lipgloss.Style
	Match       lipgloss.Style
	Card        lipgloss.Style
	CardActive  lipgloss.Style
	CardRelated lipgloss.Style
	CardSibling lipgloss.Style
	CardMuted   lipgloss.Style
	CardFading  lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme. mode "dark" or
// "light" pins the background instead of detecting it.
func DefaultTheme(r *lipgloss.Renderer, mode string) Theme {
	switch mode {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}

	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},

		Active:  lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Related: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Sibling: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Muted:   lipgloss.AdaptiveColor{Light: "#999999", Dark: "#4D5370"},
		Danger:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
	t.PanelFocus = t.Panel.BorderForeground(t.Primary)
	t.PanelTitle = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Central = r.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Primary).
		Align(lipgloss.Center)
	t.Action = r.NewStyle().Foreground(t.Primary).Underline(true)
	t.Indicator = r.NewStyle().Foreground(t.Secondary)
	t.Message = r.NewStyle().Foreground(t.Subtext).Italic(true)
	t.ErrorText = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.Match = r.NewStyle().Foreground(t.Active).Bold(true)

	t.Card = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"})
	t.CardActive = r.NewStyle().
		Background(ThemeBg("#44475A")).
		Foreground(t.Active).
		Bold(true)
	t.CardRelated = r.NewStyle().Foreground(t.Related)
	t.CardSibling = r.NewStyle().Foreground(t.Sibling)
	t.CardMuted = r.NewStyle().Foreground(t.Muted)
	t.CardFading = r.NewStyle().Foreground(t.Muted).Faint(true)

	return t
}

// CardStyle picks the style of a ring card. Active wins over the highlight;
// an animating card is drawn faint until it settles.
func (t Theme) CardStyle(h rings.Highlight, active, settled bool) lipgloss.Style {
	switch {
	case !settled:
		return t.CardFading
	case active:
		return t.CardActive
	}
	switch h {
	case rings.HighlightRelated:
		return t.CardRelated
	case rings.HighlightSibling:
		return t.CardSibling
	case rings.HighlightMuted:
		return t.CardMuted
	}
	return t.Card
}

// HighlightMarker is the glyph drawn before a card name.
func HighlightMarker(h rings.Highlight, active bool) string {
	if active {
		return "▶"
	}
	switch h {
	case rings.HighlightRelated:
		return "●"
	case rings.HighlightSibling:
		return "◆"
	case rings.HighlightMuted:
		return "·"
	}
	return "○"
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout), "dark")
}
