// Package prompt renders a simulated user's profile, history and exposure
// list into the natural-language prompt sent to every backend.
package prompt

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// Build renders the full prompt for a catalog user. u must not be nil.
func Build(u *domain.User) string {
	return BuildFor(u.Profile, u.History, u.Exposure)
}

// BuildFor renders the instruction block, the output template, the profile,
// the numbered history and the labelled exposure list, in that order.
// It never rejects input and is deterministic for identical arguments.
func BuildFor(profile domain.UserProfile, history []domain.HistoryItem, exposure []domain.ExposureItem) string {
	var b strings.Builder

	b.WriteString(instructionBlock)
	b.WriteString("\n\n")
	b.WriteString(outputFormat)
	b.WriteString("\n\n")
	writeProfile(&b, profile)
	b.WriteString("\n")
	writeHistory(&b, history)
	b.WriteString("\n")
	writeExposure(&b, exposure)

	return b.String()
}

func writeProfile(b *strings.Builder, p domain.UserProfile) {
	traits := make([]string, 0, len(p.Traits))
	for _, t := range p.Traits {
		if t = oneLine(t); t != "" {
			traits = append(traits, t)
		}
	}

	b.WriteString(HeadingProfile + "\n")
	fmt.Fprintf(b, "- Name: %s\n", domain.OrPlaceholder(oneLine(p.Name)))
	fmt.Fprintf(b, "- Age: %s\n", domain.OrPlaceholder(oneLine(p.Age)))
	fmt.Fprintf(b, "- Gender: %s\n", domain.OrPlaceholder(oneLine(p.Gender)))
	fmt.Fprintf(b, "- Occupation: %s\n", domain.OrPlaceholder(oneLine(p.Occupation)))
	fmt.Fprintf(b, "- Location: %s\n", domain.OrPlaceholder(oneLine(p.Location)))
	fmt.Fprintf(b, "- Traits: %s\n", domain.OrPlaceholder(strings.Join(traits, ", ")))
}

func writeHistory(b *strings.Builder, history []domain.HistoryItem) {
	b.WriteString(HeadingHistory + "\n")
	if len(history) == 0 {
		b.WriteString(domain.PlaceholderText + "\n")
		return
	}
	for i, h := range history {
		line := describeItem(h.Title, h.Year, h.Genre, h.Author, h.PublishedAt, h.Pages)
		if r := oneLine(h.Rating); r != "" {
			line += " - rated " + r
		}
		fmt.Fprintf(b, "%d. %s\n", i+1, line)
	}
}

func writeExposure(b *strings.Builder, exposure []domain.ExposureItem) {
	b.WriteString(HeadingExposure + "\n")
	if len(exposure) == 0 {
		b.WriteString(domain.PlaceholderText + "\n")
		return
	}
	for i, e := range exposure {
		fmt.Fprintf(b, "%s. %s\n", domain.Label(i),
			describeItem(e.Title, e.Year, e.Genre, e.Author, e.PublishedAt, e.Pages))
	}
}

// describeItem renders "Title (Year) - Genre" followed by any long-form
// metadata that is present.
func describeItem(title, year, genre, author, publishedAt, pages string) string {
	s := domain.OrPlaceholder(oneLine(title))
	if y := oneLine(year); y != "" {
		s += " (" + y + ")"
	}
	if g := oneLine(genre); g != "" {
		s += " - " + g
	}
	if a := oneLine(author); a != "" {
		s += " - by " + a
	}
	if p := oneLine(publishedAt); p != "" {
		s += " - published " + p
	}
	if n := oneLine(pages); n != "" {
		s += " - " + n + " pages"
	}
	return s
}

// oneLine collapses all whitespace runs, including newlines, to one space so
// that catalog text cannot break the line structure of the prompt.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
