package orchestration

import "github.com/voxhire/interview-core/core/interviews"

// EndAdvice is the outcome of consulting a progress snapshot about stopping.
type EndAdvice struct {
	// SuggestEnd raises a non-blocking prompt offering early termination.
	SuggestEnd bool
	// ForcedEnd terminates the session once the current turn settles.
	ForcedEnd bool
}

// AdviseEnd decides whether the interview should be offered or forced to
// stop. Pure: same snapshot in, same advice out, no side effects.
func AdviseEnd(progress interviews.Progress) EndAdvice {
	return EndAdvice{
		ForcedEnd: progress.IsComplete,
		SuggestEnd: progress.CanPromptEnd &&
			progress.SatisfactionLevel == interviews.SatisfactionAlmostSatisfied &&
			!progress.IsComplete,
	}
}
