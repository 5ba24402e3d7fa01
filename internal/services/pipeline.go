package services

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"subdl/internal/apperrors"
	"subdl/internal/cache"
	"subdl/internal/client"
	"subdl/internal/config"
	"subdl/internal/models"
	"subdl/internal/oshash"
)

// State tracks a batch through the pipeline.
type State int

const (
	StateIdle State = iota
	StateFingerprintsComputed
	StateSearched
	StateSelected
	StateDownloaded
	StateSaved
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFingerprintsComputed:
		return "fingerprints-computed"
	case StateSearched:
		return "searched"
	case StateSelected:
		return "selected"
	case StateDownloaded:
		return "downloaded"
	case StateSaved:
		return "saved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures one batch run.
type Options struct {
	Username string
	Password string
	// Language is the catalog language code subtitles must match.
	Language string
}

// Pipeline drives a batch of videos through fingerprinting, one search call,
// selection, one download call, and saving. Per-video failures are logged
// and skipped; login, search and download failures abort the whole batch.
type Pipeline struct {
	catalog      client.Client
	fingerprints cache.Cache
	opts         Options
	logger       zerolog.Logger
	state        State
}

// NewPipeline creates a pipeline. The fingerprint cache may be nil, in which
// case every path is hashed unconditionally.
func NewPipeline(catalog client.Client, fingerprints cache.Cache, opts Options) *Pipeline {
	return &Pipeline{
		catalog:      catalog,
		fingerprints: fingerprints,
		opts:         opts,
		logger:       config.GetLogger(),
		state:        StateIdle,
	}
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) transition(s State) {
	p.logger.Debug().Str("from", p.state.String()).Str("to", s.String()).Msg("Pipeline state change")
	p.state = s
}

func (p *Pipeline) fail(err error) error {
	p.transition(StateFailed)
	return err
}

// Run processes one batch and reports how many subtitles were saved.
// The returned report is meaningful even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context, paths []string) (models.Report, error) {
	report := models.Report{Considered: len(paths)}
	videos := models.Collection(paths)

	for _, video := range videos {
		fp, err := p.fingerprint(video.Path)
		if err != nil {
			p.logger.Warn().Err(err).Str("video", video.Path).Msg("Skipping video, fingerprinting failed")
			continue
		}
		video.Fingerprint = fp
		report.Fingerprinted++
		p.logger.Debug().Str("video", video.Path).Str("hash", fp.Hash).Uint64("size", fp.Size).Msg("Fingerprinted video")
	}
	p.transition(StateFingerprintsComputed)

	queries := make([]client.SearchQuery, 0, len(videos))
	for _, video := range videos {
		if video.Fingerprint == nil {
			continue
		}
		queries = append(queries, client.SearchQuery{
			Hash:     video.Fingerprint.Hash,
			Size:     video.Fingerprint.Size,
			Language: p.opts.Language,
		})
	}
	if len(queries) == 0 {
		return report, p.fail(apperrors.ErrNothingToSearch)
	}

	session, err := p.catalog.Login(ctx, p.opts.Username, p.opts.Password, p.opts.Language)
	if err != nil {
		return report, p.fail(fmt.Errorf("login failed: %w", err))
	}
	p.logger.Info().Int("videos", len(queries)).Str("language", p.opts.Language).Msg("Searching for subtitles")

	hits, err := p.catalog.Search(ctx, session, queries)
	if err != nil {
		return report, p.fail(fmt.Errorf("search failed: %w", err))
	}
	p.transition(StateSearched)

	best := SelectBest(hits, p.opts.Language)
	for _, video := range videos {
		if video.Fingerprint == nil {
			continue
		}
		candidate, ok := best[video.Fingerprint.Hash]
		if !ok {
			p.logger.Info().Str("video", video.Path).Msg("No subtitle found")
			continue
		}
		video.Candidates = []models.SubtitleCandidate{candidate}
		report.Matched++
		if rating, ok := PresentRating(video); ok && rating > 0 {
			p.logger.Info().Str("video", video.Path).Float64("rating", rating).Msg("Subtitle found")
		} else {
			p.logger.Info().Str("video", video.Path).Msg("Subtitle found (unrated)")
		}
	}
	p.transition(StateSelected)

	ids := collectRemoteIDs(videos)
	if len(ids) > 0 {
		payloads, err := p.catalog.Download(ctx, session, ids)
		if err != nil {
			return report, p.fail(fmt.Errorf("download failed: %w", err))
		}
		for _, video := range videos {
			for i := range video.Candidates {
				if payload, ok := payloads[video.Candidates[i].RemoteID]; ok {
					video.Candidates[i].Payload = payload
				}
			}
		}
	}
	p.transition(StateDownloaded)

	for _, video := range videos {
		for _, candidate := range video.Candidates {
			if candidate.Payload == nil {
				p.logger.Warn().Str("video", video.Path).Str("subtitle_id", candidate.RemoteID).Msg("Catalog returned no payload, skipping")
				continue
			}
			path, err := SaveSubtitle(video.Path, candidate)
			if err != nil {
				p.logger.Error().Err(err).Str("video", video.Path).Msg("Failed to save subtitle")
				continue
			}
			report.Saved++
			p.logger.Info().Str("video", video.Path).Str("subtitle", path).Msg("Saved subtitle")
		}
	}
	if report.Saved == 0 {
		return report, p.fail(apperrors.ErrNothingToSave)
	}
	p.transition(StateSaved)

	return report, nil
}

// fingerprint computes (or recalls) the checksum for one path.
func (p *Pipeline) fingerprint(path string) (*oshash.Fingerprint, error) {
	if p.fingerprints == nil {
		return oshash.Compute(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat video file: %w", err)
	}
	key := cache.Key(path, info)
	if fp, ok := p.fingerprints.Get(key); ok {
		return fp, nil
	}

	fp, err := oshash.Compute(path)
	if err != nil {
		return nil, err
	}
	p.fingerprints.Set(key, fp)
	return fp, nil
}

// collectRemoteIDs gathers the deduplicated union of the selected
// candidates' ids, preserving encounter order.
func collectRemoteIDs(videos []*models.Video) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, video := range videos {
		for _, candidate := range video.Candidates {
			if seen[candidate.RemoteID] {
				continue
			}
			seen[candidate.RemoteID] = true
			ids = append(ids, candidate.RemoteID)
		}
	}
	return ids
}
