package instruction

import (
	"fmt"
	"regexp"
	"strings"
)

var fenceLineRE = regexp.MustCompile("(?m)^[ \t]*(`{3,}|~{3,})")

// TruncateFenceSafe caps content at limit characters. When the cut point
// falls inside an open code fence (``` or ~~~, same character, length at
// least the opening fence's), a closing fence of the same marker is
// appended before the truncation notice so the result never contains an
// unclosed fence.
func TruncateFenceSafe(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	truncated := content[:limit]
	marker := fmt.Sprintf("... (truncated, original: %d chars)", len(content))

	fenceChar, fenceLen, open := scanFenceState(truncated)
	if open {
		closeFence := strings.Repeat(string(fenceChar), fenceLen)
		return truncated + "\n" + closeFence + "\n" + marker
	}
	return truncated + marker
}

// scanFenceState walks text line by line tracking whether a code fence is
// open at the end of text, and if so which character/length opened it.
func scanFenceState(text string) (fenceChar byte, fenceLen int, open bool) {
	for _, line := range strings.Split(text, "\n") {
		loc := fenceLineRE.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		marker := line[loc[2]:loc[3]]
		c := marker[0]
		n := len(marker)
		if !open {
			fenceChar, fenceLen, open = c, n, true
		} else if c == fenceChar && n >= fenceLen {
			open = false
		}
	}
	return
}

// WideningFence returns a backtick fence guaranteed to be longer than any
// run of backticks already present in content, so wrapping content in it
// can never be prematurely closed by the content itself.
func WideningFence(content string) string {
	fence := "```"
	for strings.Contains(content, fence) {
		fence += "`"
	}
	return fence
}
