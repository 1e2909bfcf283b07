package catalog

import (
	"regexp"
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// ParsedProfile holds the lists recovered from a raw profile text.
type ParsedProfile struct {
	History  []domain.HistoryItem
	Exposure []domain.ExposureItem
}

var (
	historyHeading  = regexp.MustCompile(`(?m)^#+\s*History\s*$`)
	exposureHeading = regexp.MustCompile(`(?m)^#+\s*Exposure List\s*$`)
	exposureStart   = regexp.MustCompile(`^\[([A-Z]{1,2})\]\s*`)
	genreSuffix     = regexp.MustCompile(`\((\[.+\])\)\s*$`)
	genreList       = regexp.MustCompile(`\[([^\]]+)\]`)
	publishedLine   = regexp.MustCompile(`(?i)^Published at\s*(.+?)\s*-\s*(.+?)\s*-\s*(.+?)\s*pages`)
)

const viewedPrefix = "A book viewed"

// ParseRawProfile recovers history and exposure items from the free-text
// profile some catalog users carry. History blocks start with
// "A book viewed", exposure blocks with a bracketed label such as "[A]".
// Blocks without a title are skipped.
func ParseRawProfile(text string) ParsedProfile {
	var out ParsedProfile
	text = strings.ReplaceAll(text, "\r\n", "\n")

	historyText, exposureText := splitRawProfile(text)
	for _, block := range splitBlocks(historyText, func(line string) bool {
		return strings.HasPrefix(line, viewedPrefix)
	}) {
		if item, ok := parseHistoryBlock(block); ok {
			out.History = append(out.History, item)
		}
	}
	for _, block := range splitBlocks(exposureText, func(line string) bool {
		return exposureStart.MatchString(line)
	}) {
		if item, ok := parseExposureBlock(block); ok {
			out.Exposure = append(out.Exposure, item)
		}
	}
	return out
}

func splitRawProfile(text string) (history, exposure string) {
	expLoc := exposureHeading.FindStringIndex(text)
	if expLoc != nil {
		exposure = text[expLoc[1]:]
	}
	if loc := historyHeading.FindStringIndex(text); loc != nil {
		end := len(text)
		if expLoc != nil && expLoc[0] > loc[1] {
			end = expLoc[0]
		}
		history = text[loc[1]:end]
	}
	return history, exposure
}

// splitBlocks groups trimmed non-empty lines into blocks, starting a new
// block at every line for which isStart holds.
func splitBlocks(text string, isStart func(string) bool) [][]string {
	var blocks [][]string
	var cur []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if isStart(line) && len(cur) > 0 {
			blocks = append(blocks, cur)
			cur = nil
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

func parseHistoryBlock(lines []string) (domain.HistoryItem, bool) {
	var item domain.HistoryItem
	seenRating := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "Title:"):
			item.Title, item.Genre = splitTitle(strings.TrimPrefix(line, "Title:"))
		case strings.HasPrefix(line, "Description:"):
			item.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
		case strings.HasPrefix(line, "Author:"):
			item.Author = strings.TrimSpace(strings.TrimPrefix(line, "Author:"))
		case strings.HasPrefix(line, "Published at"):
			item.PublishedAt, item.Pages = parsePublished(line)
		case strings.HasPrefix(line, "My Behavior:"):
			item.MyBehavior = strings.TrimSpace(strings.TrimPrefix(line, "My Behavior:"))
		case strings.HasPrefix(line, "Rating:"):
			// The first rating is the global one, the second the user's own.
			v := strings.TrimSpace(strings.TrimPrefix(line, "Rating:"))
			if !seenRating {
				item.GlobalRating = v
				seenRating = true
			} else {
				item.Rating = v
			}
		}
	}
	return item, item.Title != ""
}

func parseExposureBlock(lines []string) (domain.ExposureItem, bool) {
	var item domain.ExposureItem
	for _, line := range lines {
		if m := exposureStart.FindStringIndex(line); m != nil {
			rest := line[m[1]:]
			if strings.HasPrefix(rest, "Title:") {
				item.Title, item.Genre = splitTitle(strings.TrimPrefix(rest, "Title:"))
			}
			continue
		}
		switch {
		case strings.HasPrefix(line, "Author:"):
			item.Author = strings.TrimSpace(strings.TrimPrefix(line, "Author:"))
		case strings.HasPrefix(line, "Published at"):
			item.PublishedAt, item.Pages = parsePublished(line)
		case strings.HasPrefix(line, "Rating:"):
			item.Rating = strings.TrimSpace(strings.TrimPrefix(line, "Rating:"))
		}
	}
	return item, item.Title != ""
}

// splitTitle separates "Title (['g1', 'g2'])" into the title and a
// comma-joined genre list.
func splitTitle(s string) (title, genre string) {
	s = strings.TrimSpace(s)
	m := genreSuffix.FindStringSubmatchIndex(s)
	if m == nil {
		return s, ""
	}
	title = strings.TrimSpace(s[:m[0]])
	return title, strings.Join(parseGenres(s[m[2]:m[3]]), ", ")
}

func parseGenres(s string) []string {
	m := genreList.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	var out []string
	for _, g := range strings.Split(m[1], ",") {
		g = strings.Trim(strings.TrimSpace(g), `'"`)
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}

// parsePublished reads "Published at 2002 - Opera Graphica - 52 pages".
func parsePublished(line string) (publishedAt, pages string) {
	if m := publishedLine.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]) + " - " + strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "Published at")), ""
}
