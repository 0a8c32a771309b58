package openai

import "strings"

// Denylist rejects transcripts containing any of its substrings. Whisper
// emits video caption boilerplate ("thanks for watching", "subtitles by")
// when it is fed near silence.
type Denylist []string

func (d Denylist) Match(text string) (string, bool) {
	for _, word := range d {
		if word != "" && strings.Contains(text, word) {
			return word, true
		}
	}
	return "", false
}
