package services

import (
	"subdl/internal/models"
)

// SelectBest reduces raw search hits to at most one candidate per
// fingerprint: hits in other languages are discarded before comparison, then
// the highest-rated candidate in each group wins. Exact rating ties go to
// the later-encountered hit (last-write-wins). Fingerprints with no matching
// hit are absent from the result.
func SelectBest(hits []models.SearchHit, language string) map[string]models.SubtitleCandidate {
	best := make(map[string]models.SubtitleCandidate)
	for _, hit := range hits {
		if hit.Candidate.Language != language {
			continue
		}
		current, ok := best[hit.FingerprintHash]
		if !ok || hit.Candidate.Rating >= current.Rating {
			best[hit.FingerprintHash] = hit.Candidate
		}
	}
	return best
}

// FilterToSingle reduces a video's candidate list to the single
// highest-rated entry, with the same last-write-wins tie-break as SelectBest.
// The batch flow attaches one candidate per video out of SelectBest and never
// needs this; it is the in-place reduction for callers that attach a full
// per-video candidate list first. Language filtering has already happened by
// the time candidates are attached, so ratings compare directly.
func FilterToSingle(v *models.Video) {
	if len(v.Candidates) <= 1 {
		return
	}
	keep := 0
	for i, candidate := range v.Candidates {
		if candidate.Rating >= v.Candidates[keep].Rating {
			keep = i
		}
	}
	v.Candidates = v.Candidates[keep : keep+1]
}

// PresentRating reports the rating of the retained candidate for display.
// The second return is false when the video has no candidate. Ratings are
// never combined.
func PresentRating(v *models.Video) (float64, bool) {
	if len(v.Candidates) == 0 {
		return 0, false
	}
	return v.Candidates[0].Rating, true
}
