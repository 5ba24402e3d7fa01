package models

import (
	"subdl/internal/oshash"
)

// SubtitleCandidate is a subtitle record returned by a search round.
// Payload holds the still transport-encoded bytes once downloaded; nil means
// the download round has not produced one.
type SubtitleCandidate struct {
	RemoteID string
	Language string
	Format   string
	Rating   float64 // [0,10], 0 = unrated
	Payload  []byte
}

// SearchHit pairs a fingerprint hash with one candidate from a raw catalog
// search response.
type SearchHit struct {
	FingerprintHash string
	Candidate       SubtitleCandidate
}

// Video tracks one input file through the batch. A nil Fingerprint means
// fingerprinting failed and the video is excluded from search.
type Video struct {
	Path        string
	Fingerprint *oshash.Fingerprint
	Candidates  []SubtitleCandidate
}

// NewVideo creates a video entry for an input path.
func NewVideo(path string) *Video {
	return &Video{Path: path}
}

// Collection creates one video entry per input path, preserving order.
func Collection(paths []string) []*Video {
	videos := make([]*Video, 0, len(paths))
	for _, path := range paths {
		videos = append(videos, NewVideo(path))
	}
	return videos
}
