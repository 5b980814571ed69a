package orchestration

import (
	"testing"

	"github.com/voxhire/interview-core/core/interviews"
)

func TestTranscriptAlternatesRoles(t *testing.T) {
	var tr transcript
	tr.seed("Welcome to the interview.")
	tr.appendExchange("Thanks, happy to be here.", "Tell me about your last project.")
	tr.appendExchange("I led a migration to event sourcing.", "What went wrong along the way?")

	entries := tr.snapshot()
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries after 2 exchanges, got %d", len(entries))
	}
	for i, entry := range entries {
		want := interviews.RoleInterviewer
		if i%2 == 1 {
			want = interviews.RoleCandidate
		}
		if entry.Role != want {
			t.Fatalf("expected entry %d from %q, got %q", i, want, entry.Role)
		}
	}

	if last := tr.last(); last == nil || last.Content != "What went wrong along the way?" {
		t.Fatalf("unexpected last entry %+v", last)
	}
}

func TestTranscriptSnapshotIsDetached(t *testing.T) {
	var tr transcript
	tr.seed("Welcome.")

	snapshot := tr.snapshot()
	tr.appendExchange("Hello.", "First question.")

	if len(snapshot) != 1 {
		t.Fatalf("expected snapshot to stay at 1 entry, got %d", len(snapshot))
	}
	if tr.len() != 3 {
		t.Fatalf("expected transcript to grow to 3 entries, got %d", tr.len())
	}
}
