package menuparse

import "strings"

// SplitChunks cuts menu text into chunks of roughly maxChars
// characters. Blank-line-delimited paragraphs are the atomic unit and
// are never split: a paragraph longer than maxChars still lands whole
// in its own chunk, so the size is a soft target. Whitespace-only
// accumulations are never emitted.
func SplitChunks(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}

	var chunks []string
	curr := ""
	for _, part := range strings.Split(text, "\n\n") {
		if len(curr)+len(part) > maxChars {
			if strings.TrimSpace(curr) != "" {
				chunks = append(chunks, curr)
			}
			curr = part
			continue
		}
		if curr == "" {
			curr = part
		} else {
			curr += "\n\n" + part
		}
	}
	if strings.TrimSpace(curr) != "" {
		chunks = append(chunks, curr)
	}
	return chunks
}
