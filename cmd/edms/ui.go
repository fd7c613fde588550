package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleHeader  = lipgloss.NewStyle().Bold(true).Underline(true)

	styleBanner = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("3")).
			Padding(0, 2)
)

// announceAdmin prints the credentials of a freshly created admin
func announceAdmin(username, password string) {
	fmt.Fprintln(os.Stderr, adminBanner(username, password))
}

func adminBanner(username, password string) string {
	return styleBanner.Render(strings.Join([]string{
		styleSuccess.Render("Superuser created successfully."),
		"",
		"Username: " + styleValue.Render(username),
		"Password: " + styleValue.Render(password),
		"",
		styleMuted.Render("Change this password after the first login."),
	}, "\n"))
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// printTable renders rows as aligned columns under a header
func printTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Width(widths[i]).Render(cell)
		}
		return strings.Join(parts, "  ")
	}

	fmt.Fprintln(w, render(header, styleHeader))
	for _, row := range rows {
		fmt.Fprintln(w, render(row, lipgloss.NewStyle()))
	}
}
