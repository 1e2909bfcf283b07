package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

// FormatResult renders the decision stages of one result.
func FormatResult(r domain.SimulationResult) string {
	var b strings.Builder
	stage := func(name string, s domain.Section, extraName, extra string) {
		fmt.Fprintf(&b, "%s %s\n", StyleTitle.Render(name+":"), s.Text)
		if extra != "" {
			fmt.Fprintf(&b, "  %s %s\n", Dim(extraName+":"), extra)
		}
	}
	stage("Stimulus", r.Stimulus, "Factors", r.Stimulus.Factors)
	stage("Knowledge", r.Knowledge, "Factors", r.Knowledge.Factors)
	stage("Evaluation", r.Evaluation, "Style", r.Evaluation.Style)
	fmt.Fprintf(&b, "%s %s\n", StyleTitle.Render("Behavior:"), behaviorTag(r))
	return b.String()
}

// BehaviorTitle names the exposure item the behavior points at, or "" when
// it points outside the list.
func BehaviorTitle(r domain.SimulationResult, exposure []domain.ExposureItem) string {
	idx := r.BehaviorIndex()
	if idx < 0 || idx >= len(exposure) {
		return ""
	}
	return exposure[idx].Title
}

// FormatSlotLine renders one settled slot on a single line, as printed by
// non-interactive runs.
func FormatSlotLine(u simulation.SlotUpdate, user *domain.User) string {
	name := RoleStyle(u.Role).Render(fmt.Sprintf("%-12s", u.Backend))
	src := SourceStyle(u.Source).Render(fmt.Sprintf("%-8s", u.Source))
	latency := Dim(fmt.Sprintf("%5dms", u.LatencyMs))

	if u.Source == simulation.SourceError {
		return fmt.Sprintf("%s %s %s  %s", name, src, latency, StyleErr.Render(Truncate(u.Error, 80)))
	}
	line := fmt.Sprintf("%s %s %s  %s", name, src, latency, behaviorTag(u.Result))
	if user != nil {
		if title := BehaviorTitle(u.Result, user.Exposure); title != "" {
			line += " " + title
		}
		line += truthMark(u.Result, user.GroundTruth)
	}
	return line
}

// FormatSlot renders a settled slot in full: the line plus the stages.
func FormatSlot(u simulation.SlotUpdate, user *domain.User) string {
	var b strings.Builder
	b.WriteString(FormatSlotLine(u, user))
	b.WriteString("\n")
	if u.Source != simulation.SourceError {
		for _, line := range strings.Split(strings.TrimRight(FormatResult(u.Result), "\n"), "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
	return b.String()
}

// FormatRunSummary renders the closing line of a run.
func FormatRunSummary(s simulation.RunSummary) string {
	counts := map[simulation.Source]int{}
	for _, o := range s.Slots {
		counts[o.Source]++
	}
	parts := []string{
		StyleOk.Render(fmt.Sprintf("%d live", counts[simulation.SourceLive])),
		StyleWarn.Render(fmt.Sprintf("%d fallback", counts[simulation.SourceFallback])),
		StyleErr.Render(fmt.Sprintf("%d error", counts[simulation.SourceError])),
	}
	return fmt.Sprintf("%s %s in %dms (%s)", Dim("run"), s.RunID, s.ElapsedMs, strings.Join(parts, ", "))
}

func behaviorTag(r domain.SimulationResult) string {
	if r.IsError() {
		return StyleErr.Render("[" + domain.BehaviorError + "]")
	}
	return StyleStrong.Render("[" + r.Behavior + "]")
}

func truthMark(r domain.SimulationResult, truth string) string {
	if strings.Trim(strings.TrimSpace(truth), "[]") == "" {
		return ""
	}
	if r.MatchesGroundTruth(truth) {
		return " " + StyleOk.Render("✓")
	}
	return " " + StyleErr.Render("✗")
}
