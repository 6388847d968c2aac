package notify

import (
	"strings"
	"unicode/utf8"
)

const entrySeparator = "\n\n"

// splitMessage breaks text into chunks of at most limit runes, preferring to
// cut between blank-line separated entries. A single entry longer than the
// limit is cut by runes.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		curLen  int
	)

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			curLen = 0
		}
	}

	sepLen := utf8.RuneCountInString(entrySeparator)
	for _, block := range strings.Split(text, entrySeparator) {
		blockLen := utf8.RuneCountInString(block)

		if blockLen > limit {
			flush()
			chunks = append(chunks, splitRunes(block, limit)...)
			continue
		}

		if curLen > 0 && curLen+sepLen+blockLen > limit {
			flush()
		}
		if curLen > 0 {
			current.WriteString(entrySeparator)
			curLen += sepLen
		}
		current.WriteString(block)
		curLen += blockLen
	}
	flush()

	return chunks
}

func splitRunes(s string, limit int) []string {
	runes := []rune(s)
	out := make([]string, 0, len(runes)/limit+1)
	for len(runes) > limit {
		out = append(out, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
