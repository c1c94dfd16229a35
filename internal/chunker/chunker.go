// Package chunker splits lesson text into transmit-sized segments.
package chunker

import (
	"strings"
)

// TelegramLimit is the Bot API hard cap on message length.
const TelegramLimit = 4096

// Split breaks text into ordered segments of at most limit characters.
// Cuts prefer the last newline inside the window, then the last space, and
// fall back to a hard cut at the limit. Segments are trimmed and
// all-whitespace segments are dropped, so nothing empty is ever sent.
// A non-positive limit falls back to TelegramLimit.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = TelegramLimit
	}

	var segments []string
	remaining := text
	for len(remaining) > 0 {
		if len(remaining) <= limit {
			if seg := strings.TrimSpace(remaining); seg != "" {
				segments = append(segments, seg)
			}
			break
		}

		window := remaining[:limit]
		cut := strings.LastIndexByte(window, '\n')
		if cut < 0 {
			cut = strings.LastIndexByte(window, ' ')
		}
		if cut < 0 {
			cut = limit
		}

		if seg := strings.TrimSpace(remaining[:cut]); seg != "" {
			segments = append(segments, seg)
		}

		// Skip the separator itself so it is not carried into the next
		// segment. Each iteration consumes at least one character.
		if cut < len(remaining) && (remaining[cut] == '\n' || remaining[cut] == ' ') {
			cut++
		}
		remaining = remaining[cut:]
	}

	return segments
}
