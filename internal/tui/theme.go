package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette — true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorRosewater lipgloss.Color = "#f5e0dc"
	colorFlamingo  lipgloss.Color = "#f2cdcd"
	colorPink      lipgloss.Color = "#f5c2e7"
	colorMauve     lipgloss.Color = "#cba6f7"
	colorRed       lipgloss.Color = "#f38ba8"
	colorMaroon    lipgloss.Color = "#eba0ac"
	colorPeach     lipgloss.Color = "#fab387"
	colorYellow    lipgloss.Color = "#f9e2af"
	colorGreen     lipgloss.Color = "#a6e3a1"
	colorTeal      lipgloss.Color = "#94e2d5"
	colorSky       lipgloss.Color = "#89dceb"
	colorSapphire  lipgloss.Color = "#74c7ec"
	colorBlue      lipgloss.Color = "#89b4fa"
	colorLavender  lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
	colorCrust    lipgloss.Color = "#11111b"
)

// Semantic aliases; the accent is swappable from config.
const (
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var accentByName = map[string]lipgloss.Color{
	"rosewater": colorRosewater,
	"flamingo":  colorFlamingo,
	"pink":      colorPink,
	"mauve":     colorMauve,
	"red":       colorRed,
	"maroon":    colorMaroon,
	"peach":     colorPeach,
	"yellow":    colorYellow,
	"green":     colorGreen,
	"teal":      colorTeal,
	"sky":       colorSky,
	"sapphire":  colorSapphire,
	"blue":      colorBlue,
	"lavender":  colorLavender,
}

// accentColor resolves a configured accent name, defaulting to mauve.
func accentColor(name string) lipgloss.Color {
	if c, ok := accentByName[name]; ok {
		return c
	}
	return colorMauve
}

// styles groups every lipgloss style the views use, built once per accent.
type styles struct {
	Title      lipgloss.Style
	TabActive  lipgloss.Style
	Tab        lipgloss.Style
	Help       lipgloss.Style
	Breadcrumb lipgloss.Style

	CellEmpty    lipgloss.Style
	CellSample   lipgloss.Style
	CellLocation lipgloss.Style
	CellSelected lipgloss.Style
	CellAnchor   lipgloss.Style
	CellCursor   lipgloss.Style
	RowHeader    lipgloss.Style

	TreeCursor  lipgloss.Style
	RowSelected lipgloss.Style

	BannerSuccess lipgloss.Style
	BannerError   lipgloss.Style
	BannerInfo    lipgloss.Style

	InputLabel  lipgloss.Style
	InputActive lipgloss.Style
}

func newStyles(accent lipgloss.Color) styles {
	banner := lipgloss.NewStyle().Padding(0, 1).Foreground(colorCrust)
	return styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		TabActive:  lipgloss.NewStyle().Bold(true).Foreground(colorBase).Background(accent).Padding(0, 1),
		Tab:        lipgloss.NewStyle().Foreground(colorSubtext0).Padding(0, 1),
		Help:       lipgloss.NewStyle().Foreground(colorOverlay0),
		Breadcrumb: lipgloss.NewStyle().Foreground(colorSubtext0),

		CellEmpty:    lipgloss.NewStyle().Foreground(colorOverlay0),
		CellSample:   lipgloss.NewStyle().Foreground(colorTeal),
		CellLocation: lipgloss.NewStyle().Foreground(colorBlue),
		CellSelected: lipgloss.NewStyle().Foreground(colorBase).Background(accent),
		CellAnchor:   lipgloss.NewStyle().Foreground(colorBase).Background(colorFocus),
		CellCursor:   lipgloss.NewStyle().Bold(true).Reverse(true),
		RowHeader:    lipgloss.NewStyle().Foreground(colorSubtext0),

		TreeCursor:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		RowSelected: lipgloss.NewStyle().Foreground(colorBase).Background(accent),

		BannerSuccess: banner.Background(colorSuccess),
		BannerError:   banner.Background(colorError),
		BannerInfo:    banner.Background(colorInfo),

		InputLabel:  lipgloss.NewStyle().Foreground(colorSubtext0),
		InputActive: lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0),
	}
}
