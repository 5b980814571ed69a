package interviews

import (
	"strings"
	"testing"
)

func TestContainsExitPhraseMatchesCaseInsensitively(t *testing.T) {
	cases := []struct {
		transcript string
		want       bool
	}{
		{"I think we should Stop Interview here", true},
		{"can we end interview now", true},
		{"I'd like to exit", true},
		{"quit", true},
		{"I once worked on an exciting project", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ContainsExitPhrase(tc.transcript); got != tc.want {
			t.Fatalf("expected ContainsExitPhrase(%q) to be %t, got %t", tc.transcript, tc.want, got)
		}
	}
}

func TestIsKnownVoiceAcceptsCatalogue(t *testing.T) {
	for _, voice := range Voices() {
		if !IsKnownVoice(voice) {
			t.Fatalf("expected catalogue voice %q to be known", voice)
		}
	}
	if IsKnownVoice("narrator") {
		t.Fatalf("expected unknown voice to be rejected")
	}
	if !IsKnownVoice(DefaultVoice) {
		t.Fatalf("expected default voice %q to be known", DefaultVoice)
	}
}

func TestFormatTranscriptRendersRoleLines(t *testing.T) {
	rendered := FormatTranscript([]TranscriptEntry{
		{Role: RoleInterviewer, Content: "Tell me about yourself"},
		{Role: RoleCandidate, Content: "I build backend services"},
	})

	if !strings.Contains(rendered, "INTERVIEWER: Tell me about yourself") {
		t.Fatalf("expected interviewer line in rendered transcript, got %q", rendered)
	}
	if !strings.Contains(rendered, "CANDIDATE: I build backend services") {
		t.Fatalf("expected candidate line in rendered transcript, got %q", rendered)
	}
	if !strings.HasSuffix(rendered, "\n\n") {
		t.Fatalf("expected entries to be separated by blank lines")
	}
}
