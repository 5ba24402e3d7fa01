package models

// Report summarizes one batch run for the final count and exit-code policy.
type Report struct {
	// Considered is the number of input paths.
	Considered int
	// Fingerprinted is how many videos produced a fingerprint.
	Fingerprinted int
	// Matched is how many videos retained a subtitle candidate after selection.
	Matched int
	// Saved is how many subtitle files were written.
	Saved int
}
