package interpret

import "github.com/alexanderramin/mirrorer/internal/domain"

// ErrorResult builds the sentinel result a failed backend call is reported
// as. msg replaces the knowledge narrative so the UI can show it.
func ErrorResult(msg string) domain.SimulationResult {
	return domain.SimulationResult{
		Stimulus:   domain.Section{Text: "Error simulating user.", Factors: "API Error"},
		Knowledge:  domain.Section{Text: msg, Factors: "Debug"},
		Evaluation: domain.Section{Text: "Check backend logs for details.", Style: "Error"},
		Behavior:   domain.BehaviorError,
	}
}
