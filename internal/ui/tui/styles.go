package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryBackground = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#0284c7"}
	primaryForeground = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	mutedText         = lipgloss.AdaptiveColor{Light: "#8c8c8c", Dark: "#DDDDDD"}
	dangerText        = lipgloss.AdaptiveColor{Light: "#c53030", Dark: "#fc8181"}
)

var alertStyle = lipgloss.NewStyle().Padding(0, 1)

var alertSuccessStyle = alertStyle.
	Background(lipgloss.AdaptiveColor{Light: "#bbf7d0", Dark: "#bbf7d0"}).
	Foreground(lipgloss.AdaptiveColor{Light: "#14532d", Dark: "#166534"})

var alertDangerStyle = alertStyle.
	Background(lipgloss.AdaptiveColor{Light: "#fecaca", Dark: "#fecaca"}).
	Foreground(lipgloss.AdaptiveColor{Light: "#7f1d1d", Dark: "#991b1b"})

var titleStyle = lipgloss.NewStyle().
	MarginBottom(1).
	Padding(0, 1).
	Bold(true).
	Background(primaryBackground).
	Foreground(primaryForeground)

var subtitleStyle = lipgloss.NewStyle().Foreground(mutedText)

var cardStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240")).
	Width(48).
	Padding(0, 1)

var fieldErrorStyle = lipgloss.NewStyle().Foreground(dangerText)

func errorAlert(message string) string {
	return alertDangerStyle.Render(message)
}

func successAlert(message string) string {
	return alertSuccessStyle.Render(message)
}

func title(text, subtitle string) string {
	if subtitle == "" {
		return titleStyle.Render(text)
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(text), subtitleStyle.Render(subtitle))
}

type cardRow struct {
	Key   string
	Value string
}

func card(rows []cardRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Key+" "+r.Value)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
