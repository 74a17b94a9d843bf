package tui

import "github.com/charmbracelet/lipgloss"

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	// 基础色 / Base colors
	Primary lipgloss.Color
	Danger  lipgloss.Color
	Success lipgloss.Color
	Idea    lipgloss.Color
	Query   lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color
	BgCard  lipgloss.Color
	Border  lipgloss.Color

	// 预构建样式 / Pre-built styles
	TitleStyle       lipgloss.Style
	TaglineStyle     lipgloss.Style
	CountStyle       lipgloss.Style
	ActiveTabStyle   lipgloss.Style
	InactiveTabStyle lipgloss.Style
	StatusBarStyle   lipgloss.Style
	InputStyle       lipgloss.Style
	UserStyle        lipgloss.Style
	AILabelStyle     lipgloss.Style
	SectionStyle     lipgloss.Style
	SelectedStyle    lipgloss.Style
	ErrorStyle       lipgloss.Style
	SuccessStyle     lipgloss.Style
	MutedStyle       lipgloss.Style
	DangerStyle      lipgloss.Style
}

// DarkTheme 暗色主题（默认），金色强调
// DarkTheme is the default dark theme with a gold accent.
func DarkTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#E8C87A"),
		Danger:  lipgloss.Color("#E87A7A"),
		Success: lipgloss.Color("#8FD694"),
		Idea:    lipgloss.Color("#F0D894"),
		Query:   lipgloss.Color("#7AB8E8"),
		Muted:   lipgloss.Color("#666666"),
		Text:    lipgloss.Color("#E8E2D9"),
		TextDim: lipgloss.Color("#999999"),
		BgCard:  lipgloss.Color("#1A1A1A"),
		Border:  lipgloss.Color("#2A2A2A"),
	}

	t.TitleStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	t.TaglineStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#555555"))

	t.CountStyle = lipgloss.NewStyle().
		Foreground(t.Muted).
		Background(t.BgCard).
		Padding(0, 1)

	t.ActiveTabStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Underline(true).
		Padding(0, 2).
		Bold(true)

	t.InactiveTabStyle = lipgloss.NewStyle().
		Foreground(t.Muted).
		Padding(0, 2)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(lipgloss.Color("#111111"))

	t.InputStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	t.UserStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Background(lipgloss.Color("#222222")).
		Padding(0, 1)

	t.AILabelStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.SectionStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.SelectedStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Background(lipgloss.Color("#333333"))

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	t.MutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.DangerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Danger).
		Bold(true).
		Padding(0, 1)

	return t
}

// TagStyle colors a classification badge.
func (t Theme) TagStyle(tag string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch tag {
	case "todo":
		return base.Foreground(t.Success)
	case "idea":
		return base.Foreground(t.Idea)
	case "query":
		return base.Foreground(t.Query)
	case "error":
		return base.Foreground(t.Danger)
	default:
		return base.Foreground(t.Muted)
	}
}
