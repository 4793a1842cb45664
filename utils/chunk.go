package utils

import "strings"

// DefaultChunkLimit leaves headroom under Discord's 2000-character cap.
const DefaultChunkLimit = 1900

// SplitMessage splits a long reply into multiple Discord-safe messages, being
// careful with ``` code fences so each chunk renders as valid Markdown on its
// own. A fence that is open when a chunk fills up is closed before the flush
// and re-opened, with its original language tag, at the top of the next chunk.
// Lines are never broken in the middle, so a single line longer than maxLen is
// emitted as an oversized chunk.
func SplitMessage(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultChunkLimit
	}

	var parts []string
	current := ""
	inCode := false
	fence := "" // full fence line, e.g. ``` or ```python

	for _, line := range strings.Split(text, "\n") {
		lineStr := line + "\n"
		stripped := strings.TrimSpace(line)
		isFence := strings.HasPrefix(stripped, "```")

		// If adding this line would exceed maxLen, flush the current chunk.
		if len(current)+len(lineStr) > maxLen && current != "" {
			if inCode && !strings.HasSuffix(strings.TrimRight(current, " \t\n"), "```") {
				current += "```\n"
			}
			parts = append(parts, strings.TrimRight(current, "\n"))
			current = ""

			// still inside a code block: reopen it in the new chunk
			if inCode && fence != "" {
				current = fence + "\n"
			}
		}

		// fence toggling happens after the split decision, so a fence line
		// that forces a flush belongs to the new chunk
		if isFence {
			if !inCode {
				inCode = true
				fence = stripped
			} else {
				inCode = false
				fence = ""
			}
		}

		current += lineStr
	}

	if strings.TrimSpace(current) != "" {
		if inCode && !strings.HasSuffix(strings.TrimRight(current, " \t\n"), "```") {
			current += "```\n"
		}
		parts = append(parts, strings.TrimRight(current, "\n"))
	}

	return parts
}
