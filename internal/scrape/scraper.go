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

// Package scrape retrieves public post metadata through an external scraping
// provider. The provider is behind an interface so workflow tests can run
// with a canned implementation.
package scrape

import (
	"context"
	"time"
)

// Item is one scraped post as returned by the provider's dataset. Field
// names follow the provider's JSON output.
type Item struct {
	ID             string  `json:"id"`
	ShortCode      string  `json:"shortCode"`
	URL            string  `json:"url"`
	Caption        string  `json:"caption"`
	OwnerUsername  string  `json:"ownerUsername"`
	DisplayURL     string  `json:"displayUrl"`
	Timestamp      string  `json:"timestamp"`
	VideoViewCount int64   `json:"videoViewCount"`
	LikesCount     int64   `json:"likesCount"`
	VideoURL       string  `json:"videoUrl"`
	Location       *Place  `json:"location"`
	ErrorMessage   string  `json:"error"`
	VideoDuration  float64 `json:"videoDuration"`
}

// Place is the tagged location on a post, when present.
type Place struct {
	Name string `json:"name"`
}

// PostedAt parses the provider's RFC 3339 timestamp. Returns nil when the
// field is absent or malformed; the posting time is best-effort metadata.
func (i *Item) PostedAt() *time.Time {
	if i.Timestamp == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, i.Timestamp)
	if err != nil {
		return nil
	}
	return &t
}

// Scraper fetches metadata for a single post identified by its canonical
// URL. Implementations return an error when the provider call fails or the
// dataset comes back empty.
type Scraper interface {
	ScrapePost(ctx context.Context, postURL string) (*Item, error)
}
