package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"subdl/internal/apperrors"
	"subdl/internal/models"
)

// SubtitlePath derives the output filename for a subtitle next to its video:
// the video's extension is replaced with "<language>.<format>", so
// movie.mp4 + eng + srt becomes movie.eng.srt in the same directory.
func SubtitlePath(videoPath, language, format string) (string, error) {
	if language == "" || format == "" {
		return "", &apperrors.BadPathError{Path: videoPath}
	}
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "", &apperrors.BadPathError{Path: videoPath}
	}
	name := fmt.Sprintf("%s.%s.%s", stem, language, format)
	return filepath.Join(filepath.Dir(videoPath), name), nil
}

// SaveSubtitle decodes a candidate's payload and writes it next to the
// video. Returns the written path.
func SaveSubtitle(videoPath string, candidate models.SubtitleCandidate) (string, error) {
	content, err := DecodePayload(candidate.Payload)
	if err != nil {
		return "", err
	}
	path, err := SubtitlePath(videoPath, candidate.Language, candidate.Format)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return path, nil
}
