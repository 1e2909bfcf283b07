package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// FormatUserList renders one row per user.
func FormatUserList(users []*domain.User) string {
	if len(users) == 0 {
		return Dim("No users in the catalog.") + "\n"
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			Bold(u.ID()),
			OrDash(u.Profile.Name),
			string(u.Profile.Domain),
			strconv.Itoa(len(u.History)),
			strconv.Itoa(len(u.Exposure)),
			OrDash(strings.Trim(u.GroundTruth, "[]")),
		})
	}
	return RenderTable([]string{"ID", "NAME", "DOMAIN", "HISTORY", "EXPOSURE", "TRUTH"}, rows)
}

// FormatUserDetail renders the profile, history and labelled exposure list.
func FormatUserDetail(u *domain.User) string {
	var b strings.Builder
	p := u.Profile

	b.WriteString(Header(fmt.Sprintf("%s (%s)", domain.OrPlaceholder(p.Name), p.ID)))
	b.WriteString("\n")
	field := func(name, value string) {
		fmt.Fprintf(&b, "  %s %s\n", Dim(fmt.Sprintf("%-11s", name)), OrDash(value))
	}
	field("Domain", string(p.Domain))
	field("Age", p.Age)
	field("Gender", p.Gender)
	field("Occupation", p.Occupation)
	field("Location", p.Location)
	field("Traits", strings.Join(p.Traits, ", "))

	b.WriteString("\n")
	b.WriteString(Header(fmt.Sprintf("History (%d)", len(u.History))))
	b.WriteString("\n")
	if len(u.History) == 0 {
		b.WriteString("  " + Dim("none") + "\n")
	}
	for _, h := range u.History {
		line := "  • " + h.Title
		if d := describe(h.Year, h.Genre); d != "" {
			line += " " + Dim("("+d+")")
		}
		if h.Rating != "" {
			line += " " + StyleWarn.Render("★ "+h.Rating)
		}
		b.WriteString(line + "\n")
	}

	truth := strings.Trim(strings.TrimSpace(u.GroundTruth), "[]")
	b.WriteString("\n")
	b.WriteString(Header(fmt.Sprintf("Exposure List (%d)", len(u.Exposure))))
	b.WriteString("\n")
	for i, e := range u.Exposure {
		label := domain.Label(i)
		tag := StyleInfo.Render("[" + label + "]")
		line := fmt.Sprintf("  %s %s", tag, e.Title)
		if d := describe(e.Year, e.Genre); d != "" {
			line += " " + Dim("("+d+")")
		}
		if strings.EqualFold(label, truth) {
			line += " " + StyleOk.Render("← chosen")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", Dim("Ground truth:"), OrDash(truth))
	return b.String()
}
