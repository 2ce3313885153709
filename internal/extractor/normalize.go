package extractor

import (
	"regexp"
	"strings"
)

var (
	pageSeparatorPattern = regexp.MustCompile(`(?i)-{2,}\s*Page\s*\d+\s*-{2,}`)
	punctuationOnly      = regexp.MustCompile(`^[\W_]+$`)
	dotLeaderPattern     = regexp.MustCompile(`\.{2,}`)
	spaceRunPattern      = regexp.MustCompile(`[ \t]{2,}`)
	blankRunPattern      = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText cleans layout noise out of extracted document text:
// page separators, decorative punctuation lines, dot leaders between an
// item and its price, and runs of spaces. Blank lines survive as
// paragraph boundaries because the chunker splits on them.
func NormalizeText(raw string) string {
	if raw == "" {
		return ""
	}

	text := pageSeparatorPattern.ReplaceAllString(raw, "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			lines = append(lines, "")
			continue
		}
		if len(s) <= 1 || punctuationOnly.MatchString(s) {
			continue
		}
		s = dotLeaderPattern.ReplaceAllString(s, " ")
		s = spaceRunPattern.ReplaceAllString(s, " ")
		lines = append(lines, s)
	}

	text = strings.Join(lines, "\n")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
