package domain

import "strings"

// MaxSingleLetterLabels is the number of exposure positions that get a
// single-letter label. Later positions continue as AA, AB, ... AZ, BA, ...
const MaxSingleLetterLabels = 26

// Label returns the positional label for exposure index i (0 -> "A").
// Negative indexes return "".
func Label(i int) string {
	if i < 0 {
		return ""
	}
	if i < MaxSingleLetterLabels {
		return string(rune('A' + i))
	}
	// Bijective base-26: 26 -> AA, 27 -> AB, 52 -> BA.
	var buf []byte
	n := i + 1
	for n > 0 {
		n--
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}

// LabelIndex is the inverse of Label. It is case-insensitive and returns
// -1 for anything that is not a label.
func LabelIndex(label string) int {
	label = strings.ToUpper(strings.TrimSpace(label))
	if label == "" {
		return -1
	}
	n := 0
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A'+1)
	}
	return n - 1
}
