// Package client talks to the remote subtitle catalog over XML-RPC. Each
// batch issues at most one login, one search and one download call; nothing
// is retried.
package client

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"subdl/internal/apperrors"
	"subdl/internal/config"
	"subdl/internal/models"
	"subdl/internal/xmlrpc"
)

// Session carries the token and endpoint all calls after login must use.
type Session struct {
	Token    string
	Endpoint string
}

// SearchQuery identifies one video to the catalog.
type SearchQuery struct {
	Hash     string
	Size     uint64
	Language string
}

// Client defines the interface for querying the subtitle catalog.
type Client interface {
	// Login authenticates against the catalog. An empty username logs in
	// anonymously.
	Login(ctx context.Context, username, password, language string) (*Session, error)

	// Search issues one search call covering all queries and returns the raw
	// hits, one per subtitle record.
	Search(ctx context.Context, session *Session, queries []SearchQuery) ([]models.SearchHit, error)

	// Download issues one download call for all ids and returns a mapping
	// from id to transport-encoded payload. Ids the catalog returned no
	// payload for are absent.
	Download(ctx context.Context, session *Session, ids []string) (map[string][]byte, error)
}

// client implements the Client interface
type client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
}

// New creates a catalog client from configuration.
func New(cfg *config.Config) Client {
	// Parse timeout duration
	timeout := 30 * time.Second // default
	if cfg.ClientTimeout != "" {
		if parsedTimeout, err := time.ParseDuration(cfg.ClientTimeout); err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
		} else {
			timeout = parsedTimeout
		}
	}

	// Clone DefaultTransport to preserve its settings (timeouts, connection
	// pooling, HTTP/2), then wrap it with compression support.
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: newCompressionTransport(baseTransport),
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}

	return &client{
		httpClient: httpClient,
		endpoint:   endpoint,
		userAgent:  cfg.UserAgent,
	}
}

func (c *client) Login(ctx context.Context, username, password, language string) (*Session, error) {
	logger := config.GetLogger()
	logger.Debug().Str("endpoint", c.endpoint).Bool("anonymous", username == "").Msg("Logging in to catalog")

	resp, err := c.call(ctx, c.endpoint, "LogIn",
		xmlrpc.String(username),
		xmlrpc.String(password),
		xmlrpc.String(language),
		xmlrpc.String(c.userAgent),
	)
	if err != nil {
		return nil, err
	}
	if err := responseStatus(resp); err != nil {
		return nil, err
	}

	token, ok := resp.StringField("token")
	if !ok || token == "" {
		return nil, apperrors.ErrNoToken
	}

	// The login response may redirect later calls to a different endpoint.
	endpoint := c.endpoint
	if data, ok := resp.StructField("data"); ok {
		if location, ok := data.StringField("Content-Location"); ok && location != "" {
			endpoint = location
		}
	}

	return &Session{Token: token, Endpoint: endpoint}, nil
}

func (c *client) Search(ctx context.Context, session *Session, queries []SearchQuery) ([]models.SearchHit, error) {
	if len(queries) == 0 {
		return nil, apperrors.ErrNothingToSearch
	}

	prepared := make(xmlrpc.Array, 0, len(queries))
	for _, q := range queries {
		prepared = append(prepared, xmlrpc.Struct{
			"moviehash":     xmlrpc.String(q.Hash),
			"moviebytesize": xmlrpc.Int(q.Size),
			"sublanguageid": xmlrpc.String(q.Language),
		})
	}

	resp, err := c.call(ctx, session.Endpoint, "SearchSubtitles",
		xmlrpc.String(session.Token),
		prepared,
	)
	if err != nil {
		return nil, err
	}
	if err := responseStatus(resp); err != nil {
		return nil, err
	}

	return extractHits(resp), nil
}

// extractHits pulls candidates out of a search response. A missing data
// array means no results. Items missing a required field are skipped, as the
// catalog mixes record shapes.
func extractHits(resp xmlrpc.Struct) []models.SearchHit {
	logger := config.GetLogger()

	data, ok := resp.ArrayField("data")
	if !ok {
		return nil
	}

	var hits []models.SearchHit
	for _, item := range data {
		record, ok := item.(xmlrpc.Struct)
		if !ok {
			continue
		}
		hash, ok := record.StringField("MovieHash")
		if !ok {
			continue
		}
		id, ok := record.StringField("IDSubtitleFile")
		if !ok {
			continue
		}
		format, ok := record.StringField("SubFormat")
		if !ok {
			continue
		}
		ratingText, ok := record.StringField("SubRating")
		if !ok {
			continue
		}
		lang, ok := record.StringField("SubLanguageID")
		if !ok {
			continue
		}

		rating, err := strconv.ParseFloat(ratingText, 64)
		if err != nil {
			rating = 0 // unrated
		}

		hits = append(hits, models.SearchHit{
			FingerprintHash: hash,
			Candidate: models.SubtitleCandidate{
				RemoteID: id,
				Language: lang,
				Format:   format,
				Rating:   rating,
			},
		})
	}

	logger.Debug().Int("hits", len(hits)).Msg("Extracted search hits")
	return hits
}

func (c *client) Download(ctx context.Context, session *Session, ids []string) (map[string][]byte, error) {
	prepared := make(xmlrpc.Array, 0, len(ids))
	for _, id := range ids {
		prepared = append(prepared, xmlrpc.String(id))
	}

	resp, err := c.call(ctx, session.Endpoint, "DownloadSubtitles",
		xmlrpc.String(session.Token),
		prepared,
	)
	if err != nil {
		return nil, err
	}
	if err := responseStatus(resp); err != nil {
		return nil, err
	}

	payloads := make(map[string][]byte)
	data, ok := resp.ArrayField("data")
	if !ok {
		return payloads, nil
	}
	for _, item := range data {
		record, ok := item.(xmlrpc.Struct)
		if !ok {
			continue
		}
		id, ok := record.StringField("idsubtitlefile")
		if !ok {
			continue
		}
		payload, ok := record.StringField("data")
		if !ok {
			continue
		}
		payloads[id] = []byte(payload)
	}
	return payloads, nil
}

// call posts one XML-RPC request and requires a struct response.
func (c *client) call(ctx context.Context, endpoint, method string, args ...xmlrpc.Value) (xmlrpc.Struct, error) {
	value, err := xmlrpc.Call(ctx, c.httpClient, endpoint, c.userAgent, method, args...)
	if err != nil {
		return nil, err
	}
	resp, ok := value.(xmlrpc.Struct)
	if !ok {
		return nil, &apperrors.MalformedError{What: method + " response is not a struct"}
	}
	return resp, nil
}

// responseStatus checks the status field every catalog response must carry.
func responseStatus(resp xmlrpc.Struct) error {
	status, ok := resp.StringField("status")
	if !ok {
		return &apperrors.MalformedError{What: "response has no status field"}
	}
	if status != "200 OK" {
		return &apperrors.BadStatusError{Status: status}
	}
	return nil
}
