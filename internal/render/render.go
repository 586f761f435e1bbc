// Package render draws computed timelines for the terminal.
package render

import (
	"fmt"
	"itinerary-planner-service/internal/domain"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	travelStyle = lipgloss.NewStyle().Faint(true)
	customStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func panel(lines []string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// Timeline renders one line per stop with the travel leg that precedes it,
// followed by a summary footer.
func Timeline(title string, entries []domain.TimelineEntry, summary domain.TimelineSummary) string {
	lines := make([]string, 0, 2*len(entries)+4)
	lines = append(lines, titleStyle.Render(title))

	if len(entries) == 0 {
		lines = append(lines, travelStyle.Render("no stops planned"))
		return panel(lines)
	}

	for i, e := range entries {
		if i > 0 {
			lines = append(lines, travelStyle.Render(fmt.Sprintf("   ↓ %d min", e.TravelTimeFromPrev)))
		}

		name := e.Name
		if !e.HasCoords() {
			name = customStyle.Render(name + " *")
		}

		lines = append(lines, fmt.Sprintf("%s-%s  %s  %s",
			timeStyle.Render(e.ArrivalTime.String()),
			e.DepartureTime.String(),
			name,
			travelStyle.Render("("+e.Note+")"),
		))
	}

	lines = append(lines, "", footer(summary))
	return panel(lines)
}

func footer(s domain.TimelineSummary) string {
	text := fmt.Sprintf("%s → %s · travel %d min · visits %d min",
		s.StartTime, s.EndTime, s.TotalTravelMinutes, s.TotalVisitMinutes)
	if s.CrossesMidnight {
		return warnStyle.Render(text + " · past midnight")
	}
	return okStyle.Render(text)
}

// RouteChange summarises an optimization as distance before and after.
func RouteChange(before, after float64) string {
	return fmt.Sprintf("route distance %.1f → %.1f map units", before, after)
}
