// Package oshash computes the OpenSubtitles 64-bit content checksum used to
// identify a video file to the catalog. The hash is the file size plus the
// wraparound sum of the first and last 64 KiB of the file read as
// little-endian 64-bit words. It must match the protocol bit-for-bit or the
// catalog will not recognize the fingerprint.
package oshash

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"subdl/internal/apperrors"
)

// ChunkSize is the size of each of the two windows the checksum reads.
const ChunkSize = 65536

// MinFileSize is the smallest file the algorithm is defined for: one window
// at the start and one at the end.
const MinFileSize = 2 * ChunkSize

// Fingerprint identifies a video to the remote catalog.
type Fingerprint struct {
	// Hash is the checksum as 16 lowercase hex digits.
	Hash string
	// Size is the file length in bytes.
	Size uint64
}

// Compute calculates the fingerprint of the file at path.
//
// Files smaller than MinFileSize are rejected with FileTooSmallError before
// any read: the catalog cannot match such a fingerprint, and failing early is
// better than a silently wrong hash.
func Compute(path string) (*Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat video file: %w", err)
	}
	size := info.Size()
	if size < MinFileSize {
		return nil, &apperrors.FileTooSmallError{Path: path, Size: size}
	}

	hash := uint64(size)

	buf := make([]byte, ChunkSize)
	if _, err := io.ReadFull(file, buf); err != nil {
		return nil, fmt.Errorf("failed to read leading window: %w", err)
	}
	hash += sumWords(buf)

	if _, err := file.Seek(-ChunkSize, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("failed to seek to trailing window: %w", err)
	}
	if _, err := io.ReadFull(file, buf); err != nil {
		return nil, fmt.Errorf("failed to read trailing window: %w", err)
	}
	hash += sumWords(buf)

	return &Fingerprint{
		Hash: fmt.Sprintf("%016x", hash),
		Size: uint64(size),
	}, nil
}

// sumWords adds up the buffer as consecutive little-endian uint64 words.
// Overflow wraps, as the protocol requires.
func sumWords(buf []byte) uint64 {
	var sum uint64
	for i := 0; i+8 <= len(buf); i += 8 {
		sum += binary.LittleEndian.Uint64(buf[i : i+8])
	}
	return sum
}
