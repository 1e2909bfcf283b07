// Package interpret turns a free-text model completion into a structured
// simulation result. It is a pure function of its input and never fails:
// unrecognised text degrades to placeholder values.
package interpret

import (
	"regexp"
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

type field int

const (
	fieldStimulus field = iota
	fieldStimulusFactors
	fieldKnowledge
	fieldKnowledgeFactors
	fieldEvaluation
	fieldEvaluationStyle
	fieldBehavior
)

// prefixes is ordered so that the longer label of each pair is tried first;
// "Evaluation Style:" must never be read as "Evaluation:".
var prefixes = []struct {
	label string
	field field
}{
	{"Stimulus Factors:", fieldStimulusFactors},
	{"Stimulus:", fieldStimulus},
	{"Knowledge Factors:", fieldKnowledgeFactors},
	{"Knowledge:", fieldKnowledge},
	{"Evaluation Style:", fieldEvaluationStyle},
	{"Evaluation:", fieldEvaluation},
	{"Behavior:", fieldBehavior},
}

var (
	leadingCode   = regexp.MustCompile(`^\[?\s*([A-Za-z]{1,2})\s*\]?(?:$|[^A-Za-z])`)
	bracketedCode = regexp.MustCompile(`\[\s*([A-Za-z]{1,2})\s*\]`)
	firstLetter   = regexp.MustCompile(`[A-Za-z]`)
)

// Interpret scans raw line by line and fills a result from labelled lines.
// Later occurrences of a label overwrite earlier ones.
func Interpret(raw string) domain.SimulationResult {
	result := domain.DefaultResult()
	for _, line := range strings.Split(raw, "\n") {
		f, rest, ok := matchLine(line)
		if !ok {
			continue
		}
		apply(&result, f, rest)
	}
	return result
}

// Matched returns how many lines of raw carry a recognised label.
func Matched(raw string) int {
	n := 0
	for _, line := range strings.Split(raw, "\n") {
		if _, _, ok := matchLine(line); ok {
			n++
		}
	}
	return n
}

func matchLine(line string) (field, string, bool) {
	trimmed := normalizeLine(line)
	if trimmed == "" {
		return 0, "", false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p.label) {
			return p.field, strings.TrimSpace(trimmed[len(p.label):]), true
		}
	}
	return 0, "", false
}

// normalizeLine trims the line and drops list markers and markdown bold
// around the label ("- **Stimulus:** text" -> "Stimulus: text").
func normalizeLine(line string) string {
	s := strings.TrimSpace(line)
	for _, marker := range []string{"- ", "* ", "• ", "-", "•"} {
		if strings.HasPrefix(s, marker) {
			s = strings.TrimSpace(s[len(marker):])
			break
		}
	}
	if strings.HasPrefix(s, "**") {
		s = strings.TrimPrefix(s, "**")
		if label, rest, ok := strings.Cut(s, ":**"); ok {
			s = label + ":" + rest
		}
	}
	return s
}

func apply(r *domain.SimulationResult, f field, value string) {
	switch f {
	case fieldStimulus:
		r.Stimulus.Text = value
	case fieldStimulusFactors:
		r.Stimulus.Factors = value
	case fieldKnowledge:
		r.Knowledge.Text = value
	case fieldKnowledgeFactors:
		r.Knowledge.Factors = value
	case fieldEvaluation:
		r.Evaluation.Text = value
	case fieldEvaluationStyle:
		r.Evaluation.Style = value
	case fieldBehavior:
		if code, ok := behaviorCode(value); ok {
			r.Behavior = code
		}
	}
}

// behaviorCode extracts the chosen label from the text after "Behavior:".
// The code right after the prefix wins, bracketed or standing alone as a
// token; then a bracketed code later on the line; then the first letter.
func behaviorCode(s string) (string, bool) {
	if m := leadingCode.FindStringSubmatch(s); m != nil {
		return strings.ToUpper(m[1]), true
	}
	if m := bracketedCode.FindStringSubmatch(s); m != nil {
		return strings.ToUpper(m[1]), true
	}
	if m := firstLetter.FindString(s); m != "" {
		return strings.ToUpper(m), true
	}
	return "", false
}
