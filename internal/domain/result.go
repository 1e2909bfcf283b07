package domain

import "strings"

const (
	// PlaceholderText fills any narrative field the model did not provide.
	PlaceholderText = "N/A"

	// DefaultBehavior is the behavior assumed when no Behavior line parses.
	DefaultBehavior = "A"

	// BehaviorError marks a result produced from a failed backend call.
	BehaviorError = "Error"
)

// Section is one narrative stage of a simulated decision. Factors is used
// by the stimulus and knowledge stages, Style by the evaluation stage.
type Section struct {
	Text    string `json:"text"`
	Factors string `json:"factors,omitempty"`
	Style   string `json:"style,omitempty"`
}

// SimulationResult is the structured decision record produced from one
// model completion. Results are values; a new call produces a new result.
type SimulationResult struct {
	Stimulus   Section `json:"stimulus"`
	Knowledge  Section `json:"knowledge"`
	Evaluation Section `json:"evaluation"`
	Behavior   string  `json:"behavior"`
}

// DefaultResult returns the placeholder result every parse starts from.
func DefaultResult() SimulationResult {
	return SimulationResult{
		Stimulus:   Section{Text: PlaceholderText, Factors: PlaceholderText},
		Knowledge:  Section{Text: PlaceholderText, Factors: PlaceholderText},
		Evaluation: Section{Text: PlaceholderText, Style: PlaceholderText},
		Behavior:   DefaultBehavior,
	}
}

func (r SimulationResult) IsError() bool {
	return r.Behavior == BehaviorError
}

// BehaviorIndex returns the exposure index the behavior points at, or -1
// for the error sentinel and anything unparseable.
func (r SimulationResult) BehaviorIndex() int {
	if r.IsError() {
		return -1
	}
	return LabelIndex(r.Behavior)
}

// ValidFor reports whether the behavior is one of the labels of an
// exposure list of length n.
func (r SimulationResult) ValidFor(n int) bool {
	idx := r.BehaviorIndex()
	return idx >= 0 && idx < n
}

// MatchesGroundTruth compares the behavior against a ground-truth label,
// tolerating brackets and case differences in the stored label.
func (r SimulationResult) MatchesGroundTruth(label string) bool {
	label = strings.Trim(strings.TrimSpace(label), "[]")
	if label == "" || r.IsError() {
		return false
	}
	return strings.EqualFold(r.Behavior, label)
}
