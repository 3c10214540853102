package interview

import "github.com/fmuoria/AI-Interview-agent/internal/models"

// MergeTranscripts combines two views of the same transcript by position.
// Entries from update replace those in base at the same index, and extra
// entries from either side are kept. Question text is never used to match
// turns, so a repeated question stays a separate turn. An answered base
// turn keeps its answer when the update has none.
func MergeTranscripts(base, update []models.TurnView) []models.TurnView {
	n := max(len(base), len(update))
	merged := make([]models.TurnView, n)

	for i := 0; i < n; i++ {
		switch {
		case i >= len(update):
			merged[i] = base[i]
		case i >= len(base):
			merged[i] = update[i]
		default:
			merged[i] = update[i]
			if update[i].UserResponse == nil && base[i].UserResponse != nil {
				merged[i].UserResponse = base[i].UserResponse
				merged[i].CandidateAnsweredTime = base[i].CandidateAnsweredTime
			}
		}
	}
	return merged
}
