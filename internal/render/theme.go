package render

import "charm.land/lipgloss/v2"

var (
	primary   = lipgloss.Color("#8B5CF6")
	secondary = lipgloss.Color("#14B8A6")
	accent    = lipgloss.Color("#F97316")
	success   = lipgloss.Color("#22C55E")
	danger    = lipgloss.Color("#F43F5E")
	textDim   = lipgloss.Color("#94A3B8")
	border    = lipgloss.Color("#334155")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	metaStyle = lipgloss.NewStyle().
			Foreground(textDim)

	headerCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondary).
			MarginTop(1)

	questionStyle = lipgloss.NewStyle().Bold(true)

	typeStyle = lipgloss.NewStyle().
			Foreground(accent).
			Italic(true)

	optionStyle = lipgloss.NewStyle().
			PaddingLeft(3)

	correctStyle = lipgloss.NewStyle().
			PaddingLeft(3).
			Foreground(success).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(success)

	warnStyle = lipgloss.NewStyle().
			Foreground(danger)

	statusStyles = map[string]lipgloss.Style{
		"draft":     lipgloss.NewStyle().Foreground(textDim),
		"published": lipgloss.NewStyle().Foreground(success).Bold(true),
		"archived":  lipgloss.NewStyle().Foreground(danger),
	}
)
