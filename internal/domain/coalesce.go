package domain

import "strings"

// CoalesceStr returns the first non-blank string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// OrPlaceholder returns v, or PlaceholderText when v is blank.
func OrPlaceholder(v string) string {
	return CoalesceStr(v, PlaceholderText)
}
