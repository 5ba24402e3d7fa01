package services

import (
	"bytes"
	"encoding/base64"
	"io"

	"github.com/klauspost/compress/gzip"

	"subdl/internal/apperrors"
)

// DecodePayload reverses the catalog's two-stage transport encoding: base64
// first, then gzip. The result is the raw subtitle file content, written to
// disk without further interpretation.
func DecodePayload(payload []byte) ([]byte, error) {
	// The catalog wraps long base64 text; strip whitespace before the strict
	// decode.
	cleaned := make([]byte, 0, len(payload))
	for _, b := range payload {
		switch b {
		case '\n', '\r', '\t', ' ':
		default:
			cleaned = append(cleaned, b)
		}
	}

	raw := make([]byte, base64.StdEncoding.DecodedLen(len(cleaned)))
	n, err := base64.StdEncoding.Decode(raw, cleaned)
	if err != nil {
		return nil, &apperrors.EncodingError{Err: err}
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw[:n]))
	if err != nil {
		return nil, &apperrors.CompressionError{Err: err}
	}
	defer gz.Close()

	content, err := io.ReadAll(gz)
	if err != nil {
		return nil, &apperrors.CompressionError{Err: err}
	}
	return content, nil
}
