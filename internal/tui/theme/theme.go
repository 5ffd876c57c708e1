// Package theme defines the color themes used by the runway dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Active tab, selected row
	SurfaceBright lipgloss.Color
	Border        lipgloss.Color
	BorderBright  lipgloss.Color // Cards, focus
	BorderAccent  lipgloss.Color
	TextDim       lipgloss.Color // Hints, disabled
	TextMuted     lipgloss.Color // Labels, metadata
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	AccentDim     lipgloss.Color

	// Cash roles. Inflow and Outflow color amounts by direction; the band
	// colors shade the 90% and 95% confidence intervals.
	Inflow  lipgloss.Color
	Outflow lipgloss.Color
	Band90  lipgloss.Color
	Band95  lipgloss.Color

	Green       lipgloss.Color
	GreenBright lipgloss.Color
	Orange      lipgloss.Color
	Red         lipgloss.Color
	Blue        lipgloss.Color
	BlueBright  lipgloss.Color
	Yellow      lipgloss.Color
	Magenta     lipgloss.Color
	Cyan        lipgloss.Color
}

// Ledger is the default dark theme, green ink on a near-black page.
var Ledger = Theme{
	Name:          "ledger",
	Background:    lipgloss.Color("#0F1412"),
	Surface:       lipgloss.Color("#18201C"),
	SurfaceHover:  lipgloss.Color("#222C27"),
	SurfaceBright: lipgloss.Color("#2D3832"),
	Border:        lipgloss.Color("#34413A"),
	BorderBright:  lipgloss.Color("#4B5A52"),
	BorderAccent:  lipgloss.Color("#4FB58A"),
	TextDim:       lipgloss.Color("#4B5A52"),
	TextMuted:     lipgloss.Color("#8A9A90"),
	TextPrimary:   lipgloss.Color("#E8F0EA"),
	Accent:        lipgloss.Color("#4FB58A"),
	AccentBright:  lipgloss.Color("#72D3A8"),
	AccentDim:     lipgloss.Color("#1B3328"),
	Inflow:        lipgloss.Color("#6CC285"),
	Outflow:       lipgloss.Color("#E0796F"),
	Band90:        lipgloss.Color("#45A8A8"),
	Band95:        lipgloss.Color("#2E6E6E"),
	Green:         lipgloss.Color("#5FAE5A"),
	GreenBright:   lipgloss.Color("#80CF7A"),
	Orange:        lipgloss.Color("#E08A3C"),
	Red:           lipgloss.Color("#E0605A"),
	Blue:          lipgloss.Color("#5B8FD1"),
	BlueBright:    lipgloss.Color("#82AEE6"),
	Yellow:        lipgloss.Color("#D8B440"),
	Magenta:       lipgloss.Color("#C277B5"),
	Cyan:          lipgloss.Color("#45A8A8"),
}

// Paper is a light theme for bright terminals and screenshots in reports.
var Paper = Theme{
	Name:          "paper",
	Background:    lipgloss.Color("#FAF7EE"),
	Surface:       lipgloss.Color("#F2EEE1"),
	SurfaceHover:  lipgloss.Color("#E6E1D2"),
	SurfaceBright: lipgloss.Color("#DAD4C3"),
	Border:        lipgloss.Color("#CFC8B4"),
	BorderBright:  lipgloss.Color("#A8A08A"),
	BorderAccent:  lipgloss.Color("#1F7A6B"),
	TextDim:       lipgloss.Color("#A8A08A"),
	TextMuted:     lipgloss.Color("#6B6553"),
	TextPrimary:   lipgloss.Color("#1F1D17"),
	Accent:        lipgloss.Color("#1F7A6B"),
	AccentBright:  lipgloss.Color("#178F7C"),
	AccentDim:     lipgloss.Color("#D5E6DF"),
	Inflow:        lipgloss.Color("#3D8B2F"),
	Outflow:       lipgloss.Color("#B2372E"),
	Band90:        lipgloss.Color("#1B7D7D"),
	Band95:        lipgloss.Color("#8CBDBD"),
	Green:         lipgloss.Color("#4E7A1E"),
	GreenBright:   lipgloss.Color("#3D8B2F"),
	Orange:        lipgloss.Color("#B35A14"),
	Red:           lipgloss.Color("#B2372E"),
	Blue:          lipgloss.Color("#275E99"),
	BlueBright:    lipgloss.Color("#1E70C2"),
	Yellow:        lipgloss.Color("#9A7A06"),
	Magenta:       lipgloss.Color("#9C3F78"),
	Cyan:          lipgloss.Color("#1B7D7D"),
}

// ANSI sticks to the 16 base colors for terminals without true color.
var ANSI = Theme{
	Name:          "ansi",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("2"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("2"),
	AccentBright:  lipgloss.Color("10"),
	AccentDim:     lipgloss.Color("0"),
	Inflow:        lipgloss.Color("10"),
	Outflow:       lipgloss.Color("9"),
	Band90:        lipgloss.Color("6"),
	Band95:        lipgloss.Color("4"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("11"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// Default is the theme used when the config names none or an unknown one.
var Default = Ledger

// Active is the currently selected theme.
var Active = Default

// All available themes, in display order.
var All = []Theme{Ledger, Paper, ANSI}

// ByName returns a theme by its name, falling back to Default.
func ByName(name string) Theme {
	if t, ok := lookup(name); ok {
		return t
	}
	return Default
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the available theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Known reports whether name is one of the built-in themes.
func Known(name string) bool {
	_, ok := lookup(name)
	return ok
}

func lookup(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Signed colors an amount as cash in when non-negative and cash out otherwise.
func (t Theme) Signed(v float64) lipgloss.Color {
	if v < 0 {
		return t.Outflow
	}
	return t.Inflow
}

// Status maps a liquidity status or burn trend label to a color.
func (t Theme) Status(status string) lipgloss.Color {
	switch status {
	case "Excellent", "Good", "Improving":
		return t.GreenBright
	case "Adequate", "Stable":
		return t.Yellow
	case "Tight":
		return t.Orange
	case "Insufficient data":
		return t.TextMuted
	default:
		return t.Red
	}
}
