package orchestration

import "github.com/voxhire/interview-core/core/interviews"

// transcript is the append-only conversation record for one session. It is
// guarded by the owning Orchestrator's lock; it has no locking of its own.
type transcript struct {
	entries []interviews.TranscriptEntry
}

func (t *transcript) seed(openingMessage string) {
	t.entries = append(t.entries, interviews.TranscriptEntry{
		Role:    interviews.RoleInterviewer,
		Content: openingMessage,
	})
}

// appendExchange records one completed respond exchange: the candidate's
// utterance followed by the interviewer's reply, in that order.
func (t *transcript) appendExchange(candidate, interviewer string) []interviews.TranscriptEntry {
	appended := []interviews.TranscriptEntry{
		{Role: interviews.RoleCandidate, Content: candidate},
		{Role: interviews.RoleInterviewer, Content: interviewer},
	}
	t.entries = append(t.entries, appended...)
	return appended
}

func (t *transcript) last() *interviews.TranscriptEntry {
	if len(t.entries) == 0 {
		return nil
	}
	entry := t.entries[len(t.entries)-1]
	return &entry
}

func (t *transcript) snapshot() []interviews.TranscriptEntry {
	entries := make([]interviews.TranscriptEntry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

func (t *transcript) len() int { return len(t.entries) }
