package interviews

// Role identifies the speaker of a transcript entry.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// TranscriptEntry is one utterance in conversational order. The transcript is
// append-only for the lifetime of a session; entries are never reordered or
// deduplicated.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SatisfactionLevel is the service's own read of how close the interview is
// to a natural stopping point.
type SatisfactionLevel string

const (
	SatisfactionGatheringInfo   SatisfactionLevel = "gathering_info"
	SatisfactionAlmostSatisfied SatisfactionLevel = "almost_satisfied"
	SatisfactionSatisfied       SatisfactionLevel = "satisfied"
)

// Progress is the server-authoritative snapshot of interview advancement.
// The client never mutates it except by wholesale replacement with a newer
// snapshot.
type Progress struct {
	QuestionCount      int               `json:"question_count"`
	MainQuestionsAsked int               `json:"main_questions_asked"`
	SatisfactionLevel  SatisfactionLevel `json:"satisfaction_level"`
	CanPromptEnd       bool              `json:"can_prompt_end"`
	IsComplete         bool              `json:"is_complete"`
}

// SetupConfig is the configuration triple supplied before a session starts.
type SetupConfig struct {
	CandidateName string `json:"candidate_name"`
	Role          string `json:"role"`
	Voice         string `json:"voice"`
}

// StartResult is the outcome of a successful start exchange.
type StartResult struct {
	SessionID      string
	OpeningMessage string
	// OpeningAudio is decoded PCM16 mono at the playback rate.
	OpeningAudio []byte
	Progress     Progress
}

// RespondResult is the outcome of a successful respond exchange.
type RespondResult struct {
	CandidateTranscript string
	InterviewerResponse string
	// Audio is decoded PCM16 mono at the playback rate.
	Audio    []byte
	Progress Progress
}

// EndResult is the outcome of an end exchange. Transcript may be empty when
// the service could not return one; callers fall back to their local copy.
type EndResult struct {
	Transcript []TranscriptEntry
	Progress   Progress
}

// StateResult is a point-in-time reconciliation snapshot from the service.
type StateResult struct {
	Progress   Progress
	Transcript []TranscriptEntry
}

// SkillScores is the per-dimension breakdown inside an analysis report.
type SkillScores struct {
	Communication  int `json:"communication"`
	Technical      int `json:"technical"`
	ProblemSolving int `json:"problem_solving"`
	Confidence     int `json:"confidence"`
}

// Analysis is the post-interview scoring payload. It is produced entirely by
// the service; the client only renders it.
type Analysis struct {
	OverallScore     int         `json:"overall_score"`
	Recommendation   string      `json:"recommendation"`
	Suitability      string      `json:"suitability"`
	Summary          string      `json:"summary"`
	Strengths        []string    `json:"strengths"`
	Improvements     []string    `json:"improvements"`
	Skills           SkillScores `json:"skills"`
	DetailedFeedback string      `json:"detailed_feedback"`
	HiringRationale  string      `json:"hiring_rationale"`
}

// Completion is the result pair handed to the downstream analysis stage once
// a session finalizes.
type Completion struct {
	SessionID  string
	Transcript []TranscriptEntry
	Progress   Progress
}
