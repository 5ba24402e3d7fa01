package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subdl/internal/apperrors"
	"subdl/internal/cache"
	"subdl/internal/client"
	"subdl/internal/models"
	"subdl/internal/testutil"
)

// fakeCatalog implements client.Client for pipeline tests.
type fakeCatalog struct {
	loginErr    error
	searchErr   error
	downloadErr error

	hits     []models.SearchHit
	payloads map[string][]byte

	loginCalls    int
	searchCalls   int
	downloadCalls int
	searchQueries []client.SearchQuery
	downloadIDs   []string
}

func (f *fakeCatalog) Login(_ context.Context, _, _, _ string) (*client.Session, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &client.Session{Token: "tok", Endpoint: "http://fake"}, nil
}

func (f *fakeCatalog) Search(_ context.Context, _ *client.Session, queries []client.SearchQuery) ([]models.SearchHit, error) {
	f.searchCalls++
	f.searchQueries = queries
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeCatalog) Download(_ context.Context, _ *client.Session, ids []string) (map[string][]byte, error) {
	f.downloadCalls++
	f.downloadIDs = ids
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.payloads, nil
}

// writeVideo creates a fingerprintable file: 128 KiB of zeros plus a
// distinguishing byte count so each video gets a unique hash.
func writeVideo(t *testing.T, dir, name string, extra int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, 131072+extra), 0o644); err != nil {
		t.Fatalf("failed to write video file: %v", err)
	}
	return path
}

// zeroHash is the fingerprint hash of an all-zero file of 131072+extra
// bytes: every summed word is zero, so the hash is the size itself.
func zeroHash(extra int) string {
	return fmt.Sprintf("%016x", 131072+extra)
}

func TestPipeline_SavesBestSubtitle(t *testing.T) {
	dir := t.TempDir()
	video := writeVideo(t, dir, "movie.mp4", 0)
	hash := zeroHash(0)
	content := []byte("1\n00:00:01,000 --> 00:00:02,000\nHi.\n")

	catalog := &fakeCatalog{
		hits: []models.SearchHit{
			hit(hash, "101", "eng", 3.0),
			hit(hash, "102", "eng", 8.0),
		},
		payloads: map[string][]byte{
			"102": []byte(testutil.EncodeSubtitlePayload(content)),
		},
	}

	pipe := NewPipeline(catalog, nil, Options{Language: "eng"})
	report, err := pipe.Run(context.Background(), []string{video})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if report.Saved != 1 || report.Matched != 1 || report.Fingerprinted != 1 {
		t.Errorf("report = %+v, want 1/1/1", report)
	}
	if pipe.State() != StateSaved {
		t.Errorf("State() = %v, want %v", pipe.State(), StateSaved)
	}
	if catalog.downloadIDs[0] != "102" {
		t.Errorf("downloaded id = %q, want the higher-rated 102", catalog.downloadIDs[0])
	}

	written, err := os.ReadFile(filepath.Join(dir, "movie.eng.srt"))
	if err != nil {
		t.Fatalf("subtitle file not written: %v", err)
	}
	if string(written) != string(content) {
		t.Errorf("subtitle content = %q, want %q", written, content)
	}
}

func TestPipeline_PartialFingerprintFailure(t *testing.T) {
	dir := t.TempDir()
	good1 := writeVideo(t, dir, "one.mp4", 0)
	missing := filepath.Join(dir, "gone.mp4")
	good2 := writeVideo(t, dir, "two.mp4", 8)

	catalog := &fakeCatalog{
		hits: []models.SearchHit{
			hit(zeroHash(0), "1", "eng", 5.0),
			hit(zeroHash(8), "2", "eng", 5.0),
		},
		payloads: map[string][]byte{
			"1": []byte(testutil.EncodeSubtitlePayload([]byte("a"))),
			"2": []byte(testutil.EncodeSubtitlePayload([]byte("b"))),
		},
	}

	pipe := NewPipeline(catalog, nil, Options{Language: "eng"})
	report, err := pipe.Run(context.Background(), []string{good1, missing, good2})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if report.Considered != 3 || report.Fingerprinted != 2 || report.Saved != 2 {
		t.Errorf("report = %+v, want considered 3, fingerprinted 2, saved 2", report)
	}
	if len(catalog.searchQueries) != 2 {
		t.Errorf("search carried %d queries, want 2", len(catalog.searchQueries))
	}
	if catalog.searchCalls != 1 || catalog.downloadCalls != 1 {
		t.Errorf("calls = %d search, %d download; want 1 each", catalog.searchCalls, catalog.downloadCalls)
	}
}

func TestPipeline_NothingToSearch(t *testing.T) {
	catalog := &fakeCatalog{}
	pipe := NewPipeline(catalog, nil, Options{Language: "eng"})

	_, err := pipe.Run(context.Background(), []string{filepath.Join(t.TempDir(), "gone.mp4")})
	if !errors.Is(err, apperrors.ErrNothingToSearch) {
		t.Fatalf("Run() error = %v, want ErrNothingToSearch", err)
	}
	if catalog.loginCalls != 0 || catalog.searchCalls != 0 {
		t.Error("no network call should be issued when nothing is fingerprinted")
	}
	if pipe.State() != StateFailed {
		t.Errorf("State() = %v, want %v", pipe.State(), StateFailed)
	}
}

func TestPipeline_SearchErrorAbortsBatch(t *testing.T) {
	dir := t.TempDir()
	video := writeVideo(t, dir, "movie.mp4", 0)

	catalog := &fakeCatalog{searchErr: &apperrors.BadStatusError{Status: "503 Backend unavailable"}}
	pipe := NewPipeline(catalog, nil, Options{Language: "eng"})

	_, err := pipe.Run(context.Background(), []string{video})
	if !errors.Is(err, &apperrors.BadStatusError{}) {
		t.Fatalf("Run() error = %v, want BadStatusError", err)
	}
	if catalog.downloadCalls != 0 {
		t.Error("download must not run after a failed search")
	}
	if pipe.State() != StateFailed {
		t.Errorf("State() = %v, want %v", pipe.State(), StateFailed)
	}
}

func TestPipeline_LoginErrorAbortsBatch(t *testing.T) {
	dir := t.TempDir()
	video := writeVideo(t, dir, "movie.mp4", 0)

	catalog := &fakeCatalog{loginErr: apperrors.ErrNoToken}
	pipe := NewPipeline(catalog, nil, Options{Language: "eng"})

	_, err := pipe.Run(context.Background(), []string{video})
	if !errors.Is(err, apperrors.ErrNoToken) {
		t.Fatalf("Run() error = %v, want ErrNoToken", err)
	}
	if catalog.searchCalls != 0 {
		t.Error("search must not run after a failed login")
	}
}

func TestPipeline_MissingPayloadSkipped(t *testing.T) {
	dir := t.TempDir()
	video := writeVideo(t, dir, "movie.mp4", 0)

	catalog := &fakeCatalog{
		hits:     []models.SearchHit{hit(zeroHash(0), "101", "eng", 5.0)},
		payloads: map[string][]byte{}, // catalog omitted the payload
	}
	pipe := NewPipeline(catalog, nil, Options{Language: "eng"})

	report, err := pipe.Run(context.Background(), []string{video})
	if !errors.Is(err, apperrors.ErrNothingToSave) {
		t.Fatalf("Run() error = %v, want ErrNothingToSave", err)
	}
	if report.Matched != 1 || report.Saved != 0 {
		t.Errorf("report = %+v, want matched 1, saved 0", report)
	}
	if pipe.State() != StateFailed {
		t.Errorf("State() = %v, want %v", pipe.State(), StateFailed)
	}
}

func TestPipeline_NoMatches(t *testing.T) {
	dir := t.TempDir()
	video := writeVideo(t, dir, "movie.mp4", 0)

	catalog := &fakeCatalog{}
	pipe := NewPipeline(catalog, nil, Options{Language: "eng"})

	report, err := pipe.Run(context.Background(), []string{video})
	if !errors.Is(err, apperrors.ErrNothingToSave) {
		t.Fatalf("Run() error = %v, want ErrNothingToSave", err)
	}
	if catalog.downloadCalls != 0 {
		t.Error("download must not run with no selected candidates")
	}
	if report.Saved != 0 {
		t.Errorf("report.Saved = %d, want 0", report.Saved)
	}
	if pipe.State() != StateFailed {
		t.Errorf("State() = %v, want %v", pipe.State(), StateFailed)
	}
}

func TestPipeline_DecodeFailureDoesNotAbortOthers(t *testing.T) {
	dir := t.TempDir()
	good := writeVideo(t, dir, "good.mp4", 0)
	bad := writeVideo(t, dir, "bad.mp4", 8)

	catalog := &fakeCatalog{
		hits: []models.SearchHit{
			hit(zeroHash(0), "1", "eng", 5.0),
			hit(zeroHash(8), "2", "eng", 5.0),
		},
		payloads: map[string][]byte{
			"1": []byte(testutil.EncodeSubtitlePayload([]byte("fine"))),
			"2": []byte("corrupt payload !!!"),
		},
	}
	pipe := NewPipeline(catalog, nil, Options{Language: "eng"})

	report, err := pipe.Run(context.Background(), []string{good, bad})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if report.Saved != 1 {
		t.Errorf("report.Saved = %d, want 1", report.Saved)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.eng.srt")); err != nil {
		t.Errorf("good subtitle not written: %v", err)
	}
}

func TestPipeline_FingerprintCacheHit(t *testing.T) {
	dir := t.TempDir()
	video := writeVideo(t, dir, "movie.mp4", 0)

	fingerprints, err := cache.New("memory", cache.ProviderConfig{Size: 8, TTL: time.Minute})
	if err != nil {
		t.Fatalf("cache.New() unexpected error: %v", err)
	}
	defer fingerprints.Close()

	catalog := &fakeCatalog{
		hits: []models.SearchHit{hit(zeroHash(0), "1", "eng", 5.0)},
		payloads: map[string][]byte{
			"1": []byte(testutil.EncodeSubtitlePayload([]byte("x"))),
		},
	}
	pipe := NewPipeline(catalog, fingerprints, Options{Language: "eng"})

	// The same path twice: second fingerprint comes from the cache, and both
	// entries still flow through search and save.
	report, err := pipe.Run(context.Background(), []string{video, video})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if fingerprints.Len() != 1 {
		t.Errorf("cache Len() = %d, want 1", fingerprints.Len())
	}
	if report.Fingerprinted != 2 {
		t.Errorf("report.Fingerprinted = %d, want 2", report.Fingerprinted)
	}
}
