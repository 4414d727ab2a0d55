package annotate

import "strings"

var displaySuffixes = []string{"_flow", "_homo", "_restim", "_score"}

// DisplayLabel derives a human-facing row label from a variable name:
// organ indicator tokens are removed wherever they appear, method indicator
// suffixes are removed from the end, and the remaining underscores become
// spaces. Cosmetic only; identity, grouping and clustering always use the
// original name.
func DisplayLabel(name string) string {
	label := strings.ReplaceAll(name, OrganDrainingNode, "")
	label = strings.ReplaceAll(label, OrganSpinalCord, "")
	label = stripAllFold(label, "spleen")
	for _, suffix := range displaySuffixes {
		label = stripSuffixFold(label, suffix)
	}
	label = strings.ReplaceAll(label, "_", " ")
	return strings.Join(strings.Fields(label), " ")
}

// stripAllFold removes every case-insensitive occurrence of token.
func stripAllFold(s, token string) string {
	lower := strings.ToLower(s)
	token = strings.ToLower(token)
	var b strings.Builder
	for {
		i := strings.Index(lower, token)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(token):]
		lower = lower[i+len(token):]
	}
}

// stripSuffixFold removes a case-insensitive suffix once.
func stripSuffixFold(s, suffix string) string {
	if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s[:len(s)-len(suffix)]
	}
	return s
}
