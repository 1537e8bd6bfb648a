package cmd

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	ok       lipgloss.Style
	mismatch lipgloss.Style
	note     lipgloss.Style
}

// ANSI colors: 1 red, 2 green, 3 yellow, 6 cyan, 7 white, 8 gray

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		label:    lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(3)),
		ok:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		mismatch: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		note:     lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)),
	}
}

var style = newStyles()
