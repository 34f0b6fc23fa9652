package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/habitcanvas/timerd/internal/model"
	"github.com/habitcanvas/timerd/internal/protocol"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	clockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")).Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#cba6f7"))
)

// formatClock renders whole seconds as mm:ss, or h:mm:ss past an hour.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func renderEvent(msg protocol.Outbound) string {
	left := 0
	if msg.TimeLeft != nil {
		left = *msg.TimeLeft
	}

	switch msg.Type {
	case "tick":
		return clockStyle.Render(formatClock(left))
	case "finished":
		return doneStyle.Render("finished")
	case "paused":
		return warnStyle.Render("paused") + " " + mutedStyle.Render(formatClock(left)+" left")
	case "stopped":
		return warnStyle.Render("stopped")
	case "state":
		running := msg.IsRunning != nil && *msg.IsRunning
		line := titleStyle.Render("state") + " " + clockStyle.Render(formatClock(left))
		if running && msg.EndTime != nil {
			line += " " + mutedStyle.Render("ends "+msg.EndTime.Time.Local().Format("15:04:05"))
		} else {
			line += " " + mutedStyle.Render("not running")
		}
		return line
	default:
		return mutedStyle.Render(msg.Type)
	}
}

func renderStats(s *model.SessionStats) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Focus stats"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  sessions %s  avg %s  streak %s  longest %s\n",
		clockStyle.Render(fmt.Sprint(s.TotalSessions)),
		clockStyle.Render(fmt.Sprintf("%.1fm", s.AverageSessionMinutes)),
		doneStyle.Render(fmt.Sprint(s.Streak)),
		mutedStyle.Render(fmt.Sprint(s.LongestStreak)),
	)

	peak := 0
	for _, d := range s.DailyStats {
		peak = max(peak, d.Minutes)
	}
	for _, d := range s.DailyStats {
		width := 0
		if peak > 0 {
			width = d.Minutes * 30 / peak
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			mutedStyle.Render(d.Date),
			barStyle.Render(strings.Repeat("■", width)),
			mutedStyle.Render(fmt.Sprintf("%dm", d.Minutes)),
		)
	}
	return b.String()
}
