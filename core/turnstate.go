package orchestration

// TurnState is the single owner-visible state of the turn machine. Exactly
// one value holds at any instant; only the Orchestrator mutates it.
type TurnState string

const (
	// TurnStateIdle: no device active, waiting for the candidate or a
	// re-arm timer.
	TurnStateIdle TurnState = "idle"
	// TurnStateListening: the microphone is live and recording.
	TurnStateListening TurnState = "listening"
	// TurnStateSpeaking: synthesized interviewer audio is playing.
	TurnStateSpeaking TurnState = "speaking"
	// TurnStateProcessing: a respond exchange is in flight.
	TurnStateProcessing TurnState = "processing"
)
