// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
)

const DefaultBaseURL = "https://api.apify.com"

// runInput is the actor input. Video bytes, transcripts, and comments are
// all fetched elsewhere in the pipeline, so the scrape is metadata only.
type runInput struct {
	Username               []string `json:"username"`
	IncludeDownloadedVideo bool     `json:"includeDownloadedVideo"`
	IncludeTranscript      bool     `json:"includeTranscript"`
	CommentsLimit          int      `json:"commentsLimit"`
}

// ApifyScraper calls an Apify actor synchronously and reads the resulting
// dataset items in one round trip.
type ApifyScraper struct {
	token   string
	actor   string
	baseURL string
	client  *http.Client
}

// NewApifyScraper creates a scraper for the given actor. An empty baseURL
// selects the public Apify API; timeout bounds the whole synchronous run.
func NewApifyScraper(token string, actor string, baseURL string, timeout time.Duration) *ApifyScraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ApifyScraper{
		token:   token,
		actor:   actor,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// ScrapePost runs the actor for one post URL and returns the first dataset
// item. A non-2xx status, an empty dataset, or a provider-reported error on
// the item all surface as errors so the caller can abort the pipeline.
func (s *ApifyScraper) ScrapePost(ctx context.Context, postURL string) (*Item, error) {
	input := runInput{
		Username:               []string{postURL},
		IncludeDownloadedVideo: false,
		IncludeTranscript:      false,
		CommentsLimit:          0,
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		s.baseURL, url.PathEscape(s.actor), url.QueryEscape(s.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("scrape provider returned status %d: %s", resp.StatusCode, string(payload))
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: dataset contained no items for %s", model.ErrNoDataFound, postURL)
	}

	item := items[0]
	if item.ErrorMessage != "" {
		// The actor reports per-item errors for private or removed posts.
		return nil, fmt.Errorf("%w: provider reported %q", model.ErrNoDataFound, item.ErrorMessage)
	}
	return &item, nil
}
