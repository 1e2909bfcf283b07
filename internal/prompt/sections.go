package prompt

import (
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// Candidate is one exposure line recovered from a built prompt.
type Candidate struct {
	Label string
	Text  string
}

// Sections is the user-specific content recovered from a built prompt.
type Sections struct {
	History  []string
	Exposure []Candidate
}

// ExtractSections recovers history and exposure lines from a prompt produced
// by Build. Edited prompts are handled best-effort: lines that do not carry
// the expected "1." or "A." prefix are skipped.
func ExtractSections(p string) Sections {
	var out Sections
	section := ""
	for _, raw := range strings.Split(p, "\n") {
		line := strings.TrimSpace(raw)
		switch line {
		case HeadingProfile, HeadingHistory, HeadingExposure:
			section = line
			continue
		case "":
			continue
		}

		head, rest, ok := strings.Cut(line, ". ")
		if !ok {
			continue
		}
		switch section {
		case HeadingHistory:
			if isNumber(head) {
				out.History = append(out.History, strings.TrimSpace(rest))
			}
		case HeadingExposure:
			if domain.LabelIndex(head) >= 0 && head == strings.ToUpper(head) {
				out.Exposure = append(out.Exposure, Candidate{Label: head, Text: strings.TrimSpace(rest)})
			}
		}
	}
	return out
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
