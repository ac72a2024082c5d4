// Package feature implements the delegated collaborators: video
// playback, weather, battery, email and direct messaging. Each takes
// one structured request, does its own I/O and failure handling, and
// returns a single human-readable sentence on success.
package feature

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const youtubeSearchEndpoint = "https://www.googleapis.com/youtube/v3/search"

// YouTube plays the top search result for a term. Without an API key,
// or when the lookup errs, it degrades to opening the in-browser
// search-results page.
type YouTube struct {
	APIKey string

	// OpenURL opens the chosen page in the browser.
	OpenURL func(url string) error

	HTTP   *http.Client
	Logger *slog.Logger

	// endpoint is overridable for tests.
	endpoint string
}

func NewYouTube(apiKey string, openURL func(string) error, logger *slog.Logger) *YouTube {
	if logger == nil {
		logger = slog.Default()
	}
	return &YouTube{
		APIKey:   apiKey,
		OpenURL:  openURL,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
		Logger:   logger,
		endpoint: youtubeSearchEndpoint,
	}
}

// PlayTopResult opens the best match for term and returns the spoken
// confirmation.
func (y *YouTube) PlayTopResult(term string) (string, error) {
	if y.APIKey != "" {
		if videoID, title, err := y.topResult(term); err == nil && videoID != "" {
			watch := "https://www.youtube.com/watch?v=" + videoID
			if err := y.OpenURL(watch); err != nil {
				return "", err
			}
			return fmt.Sprintf("Playing %s on YouTube", title), nil
		} else if err != nil {
			y.Logger.Warn("youtube api lookup failed, falling back to search page", "term", term, "err", err)
		}
	}

	search := "https://www.youtube.com/results?search_query=" + url.QueryEscape(term)
	if err := y.OpenURL(search); err != nil {
		return "", err
	}
	return fmt.Sprintf("Searching for %s on YouTube", term), nil
}

func (y *YouTube) topResult(term string) (videoID, title string, err error) {
	q := url.Values{
		"part":       {"snippet"},
		"q":          {term},
		"type":       {"video"},
		"maxResults": {"1"},
		"order":      {"relevance"},
		"key":        {y.APIKey},
	}

	resp, err := y.HTTP.Get(y.endpoint + "?" + q.Encode())
	if err != nil {
		return "", "", fmt.Errorf("youtube search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("youtube search: status %d", resp.StatusCode)
	}

	var body struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("youtube search: decode: %w", err)
	}
	if len(body.Items) == 0 {
		return "", "", nil
	}
	return body.Items[0].ID.VideoID, body.Items[0].Snippet.Title, nil
}
