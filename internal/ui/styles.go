package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorAccent    = lipgloss.Color("#10B981")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorDanger    = lipgloss.Color("#EF4444")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorUserBg    = lipgloss.Color("#EDE9FE")
	ColorUserFg    = lipgloss.Color("#4C1D95")
	ColorSkeleton  = lipgloss.Color("#374151")
	ColorPositive  = lipgloss.Color("#22C55E")
	ColorNegative  = lipgloss.Color("#F97316")
	ColorNeutralFg = lipgloss.Color("#A3A3A3")
)

// Styles holds every style the display uses
type Styles struct {
	Title      lipgloss.Style
	Subtle     lipgloss.Style
	Info       lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Prompt     lipgloss.Style
	UserLabel  lipgloss.Style
	UserBubble lipgloss.Style
	BotLabel   lipgloss.Style
	Pending    lipgloss.Style
	Active     lipgloss.Style
	Skeleton   lipgloss.Style
	Notice     lipgloss.Style
	Positive   lipgloss.Style
	Negative   lipgloss.Style
	Neutral    lipgloss.Style
}

// DefaultStyles returns the standard palette
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Subtle:    lipgloss.NewStyle().Foreground(ColorMuted),
		Info:      lipgloss.NewStyle().Foreground(ColorInfo),
		Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
		Error:     lipgloss.NewStyle().Foreground(ColorDanger),
		Success:   lipgloss.NewStyle().Foreground(ColorAccent),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		UserLabel: lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		UserBubble: lipgloss.NewStyle().
			Foreground(ColorUserFg).
			Background(ColorUserBg).
			Padding(0, 1),
		BotLabel: lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Pending:  lipgloss.NewStyle().Italic(true).Foreground(ColorMuted),
		Active:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Skeleton: lipgloss.NewStyle().Foreground(ColorSkeleton),
		Notice: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDanger).
			Padding(0, 1),
		Positive: lipgloss.NewStyle().Foreground(ColorPositive),
		Negative: lipgloss.NewStyle().Foreground(ColorNegative),
		Neutral:  lipgloss.NewStyle().Foreground(ColorNeutralFg),
	}
}
