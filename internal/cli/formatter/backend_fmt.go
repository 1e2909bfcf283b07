package formatter

import (
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

// FormatBackends renders the roster. available is indexed like backends;
// a missing entry renders as unknown.
func FormatBackends(backends []simulation.Backend, available []bool) string {
	if len(backends) == 0 {
		return Dim("No backends configured.") + "\n"
	}
	rows := make([][]string, 0, len(backends))
	for i, b := range backends {
		fallback := Dim("no")
		if b.FallbackEligible {
			fallback = StyleWarn.Render("yes (" + b.CacheKey + ")")
		}
		status := Dim("unknown")
		if i < len(available) {
			if available[i] {
				status = StyleOk.Render("● up")
			} else {
				status = StyleErr.Render("● down")
			}
		}
		rows = append(rows, []string{
			Bold(b.Name),
			RoleStyle(b.Role).Render(string(b.Role)),
			string(b.Engine),
			Truncate(b.Model, 40),
			fallback,
			status,
		})
	}
	return RenderTable([]string{"NAME", "ROLE", "ENGINE", "MODEL", "FALLBACK", "STATUS"}, rows)
}
