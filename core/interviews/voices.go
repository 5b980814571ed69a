package interviews

import "strings"

// DefaultVoice is used when the setup surface leaves the voice unset.
const DefaultVoice = "asteria"

// Voices lists the interviewer voices the service accepts, in the order the
// setup surface presents them.
func Voices() []string {
	return []string{
		"asteria",
		"luna",
		"stella",
		"athena",
		"hera",
		"orion",
		"arcas",
		"perseus",
		"angus",
		"orpheus",
		"helios",
		"zeus",
	}
}

// IsKnownVoice reports whether the service is expected to accept the voice.
func IsKnownVoice(voice string) bool {
	for _, known := range Voices() {
		if known == voice {
			return true
		}
	}
	return false
}

var exitPhrases = []string{
	"exit",
	"quit",
	"stop interview",
	"end interview",
}

// ContainsExitPhrase reports whether a candidate transcript asks to stop the
// interview outright.
func ContainsExitPhrase(transcript string) bool {
	lowered := strings.ToLower(transcript)
	for _, phrase := range exitPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// FormatTranscript renders a finished transcript as "ROLE: content" lines,
// the layout used for transcript export.
func FormatTranscript(entries []TranscriptEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(strings.ToUpper(string(entry.Role)))
		b.WriteString(": ")
		b.WriteString(entry.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
