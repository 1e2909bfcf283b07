package prompt

import (
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// RenderResult writes a result back out in the labelled-line output format.
// Whitespace inside each field is collapsed so every field stays on one line.
func RenderResult(r domain.SimulationResult) string {
	var b strings.Builder
	b.WriteString("Thought:\n")
	b.WriteString("Stimulus: " + oneLine(r.Stimulus.Text) + "\n")
	b.WriteString("Stimulus Factors: " + oneLine(r.Stimulus.Factors) + "\n")
	b.WriteString("Knowledge: " + oneLine(r.Knowledge.Text) + "\n")
	b.WriteString("Knowledge Factors: " + oneLine(r.Knowledge.Factors) + "\n")
	b.WriteString("Evaluation: " + oneLine(r.Evaluation.Text) + "\n")
	b.WriteString("Evaluation Style: " + oneLine(r.Evaluation.Style) + "\n")
	b.WriteString("Behavior: [" + strings.TrimSpace(r.Behavior) + "]\n")
	return b.String()
}
