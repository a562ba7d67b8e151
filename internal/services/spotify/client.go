package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenURL     = "https://accounts.spotify.com/api/token"
	recommendURL = "https://api.spotify.com/v1/recommendations"
	searchURL    = "https://api.spotify.com/v1/search"
)

// ErrDisabled is returned when no Spotify credentials are configured.
var ErrDisabled = errors.New("spotify integration disabled")

// Track is the subset of a Spotify track we return to clients.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artists     string `json:"artists"`
	PreviewURL  string `json:"preview_url,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
}

// moodSeed maps a mood to recommendation seeds and audio-feature targets.
type moodSeed struct {
	genres  string
	valence float64
	tempo   int
}

var moodSeeds = map[string]moodSeed{
	"happy":     {"pop,feel-good", 0.9, 110},
	"calm":      {"acoustic,ambient", 0.6, 70},
	"anxious":   {"chill,ambient", 0.4, 60},
	"depressed": {"singer-songwriter,acoustic", 0.35, 60},
	"sad":       {"piano,acoustic", 0.3, 60},
	"angry":     {"rock,metal", 0.4, 120},
}

// Client wraps the Spotify Web API using the client-credentials flow. App
// tokens are enough for recommendations and search; playback control would
// need user OAuth and is out of scope.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger

	// Endpoint URLs, overridable in tests.
	recommendURL string
	searchURL    string
}

// NewClient creates a Spotify client. Missing credentials yield a nil client,
// which callers treat as "integration disabled".
func NewClient(clientID, clientSecret string, logger *zap.Logger) *Client {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cfg.Client(context.Background())
	httpClient.Timeout = 10 * time.Second
	return &Client{
		httpClient:   httpClient,
		logger:       logger,
		recommendURL: recommendURL,
		searchURL:    searchURL,
	}
}

// RecommendForMood returns tracks tuned for a mood. Unknown moods get
// unseeded recommendations.
func (c *Client) RecommendForMood(ctx context.Context, mood string, limit int) ([]Track, error) {
	if limit <= 0 || limit > 50 {
		limit = 6
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if seed, ok := moodSeeds[mood]; ok {
		q.Set("seed_genres", seed.genres)
		q.Set("target_valence", strconv.FormatFloat(seed.valence, 'f', 2, 64))
		q.Set("target_tempo", strconv.Itoa(seed.tempo))
	} else {
		q.Set("seed_genres", "pop")
	}

	var payload struct {
		Tracks []apiTrack `json:"tracks"`
	}
	if err := c.get(ctx, c.recommendURL+"?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("spotify recommendations: %w", err)
	}
	return convertTracks(payload.Tracks, limit), nil
}

// SearchTracks runs a plain track search.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 || limit > 50 {
		limit = 8
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))

	var payload struct {
		Tracks struct {
			Items []apiTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, c.searchURL+"?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("spotify search: %w", err)
	}
	return convertTracks(payload.Tracks.Items, limit), nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, detail)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type apiTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	PreviewURL   string `json:"preview_url"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

func convertTracks(items []apiTrack, limit int) []Track {
	if len(items) > limit {
		items = items[:limit]
	}
	tracks := make([]Track, 0, len(items))
	for _, t := range items {
		artists := ""
		for i, a := range t.Artists {
			if i > 0 {
				artists += ", "
			}
			artists += a.Name
		}
		tracks = append(tracks, Track{
			ID:          t.ID,
			Name:        t.Name,
			Artists:     artists,
			PreviewURL:  t.PreviewURL,
			ExternalURL: t.ExternalURLs.Spotify,
		})
	}
	return tracks
}
