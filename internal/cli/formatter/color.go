// Package formatter renders catalog users, prompts, simulation results and
// the backend roster for the terminal.
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

// Palette. Each color has a light and a dark terminal variant.
var (
	ColorOk     = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#a3be8c"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#b26a00", Dark: "#ebcb8b"}
	ColorErr    = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#bf616a"}
	ColorInfo   = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#81a1c1"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#6a1b9a", Dark: "#b48ead"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#7b8394"}
	ColorText   = lipgloss.AdaptiveColor{Light: "#212121", Dark: "#e5e9f0"}
	ColorTitle  = lipgloss.AdaptiveColor{Light: "#00838f", Dark: "#88c0d0"}
)

var (
	StyleOk     = lipgloss.NewStyle().Foreground(ColorOk)
	StyleWarn   = lipgloss.NewStyle().Foreground(ColorWarn)
	StyleErr    = lipgloss.NewStyle().Foreground(ColorErr)
	StyleInfo   = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAccent = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleMuted  = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleText   = lipgloss.NewStyle().Foreground(ColorText)
	StyleTitle  = lipgloss.NewStyle().Foreground(ColorTitle).Bold(true)
	StyleStrong = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
)

// SourceStyle colors a slot by where its result came from.
func SourceStyle(src simulation.Source) lipgloss.Style {
	switch src {
	case simulation.SourceLive:
		return StyleOk
	case simulation.SourceFallback:
		return StyleWarn
	case simulation.SourceError:
		return StyleErr
	default:
		return StyleMuted
	}
}

// SourceBadge returns a colored marker such as "● live".
func SourceBadge(src simulation.Source) string {
	if src == "" {
		return StyleMuted.Render("○ pending")
	}
	return SourceStyle(src).Render("● " + string(src))
}

// RoleStyle gives each backend role its own accent.
func RoleStyle(role domain.BackendRole) lipgloss.Style {
	switch role {
	case domain.RoleTeacher:
		return StyleInfo
	case domain.RoleStudent:
		return StyleAccent
	case domain.RoleFineTuned:
		return StyleTitle
	default:
		return StyleText
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleTitle.Render(upper), StyleMuted.Render(line))
}

func Dim(text string) string {
	return StyleMuted.Render(text)
}

func Bold(text string) string {
	return StyleStrong.Render(text)
}
