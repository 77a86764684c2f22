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

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/cor"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/scrape"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
)

// MetadataScraper invokes the external scraping provider for the resolved
// shortcode and creates the persistent record from the returned metadata.
// This is the second and last hard-fail stage: a provider error or an empty
// dataset aborts the run, because without metadata there is no record to
// degrade gracefully into.
type MetadataScraper struct {
	cor.BaseCommand
	scraper   scrape.Scraper
	reelStore store.ReelStore
}

func NewMetadataScraper(name string, scraper scrape.Scraper, reelStore store.ReelStore) *MetadataScraper {
	return &MetadataScraper{
		BaseCommand: *cor.NewBaseCommand(name),
		scraper:     scraper,
		reelStore:   reelStore,
	}
}

func (t *MetadataScraper) Execute(context cor.Context) {
	ctx := context.GetContext()
	shortCode := context.Get(t.GetInputParam()).(string)

	// The resolver leaves the canonical URL with the submitted path segment
	// intact; rebuild under /reel/ only when invoked without it.
	postURL, _ := context.Get(PostURLKey).(string)
	if postURL == "" {
		postURL = fmt.Sprintf("https://www.instagram.com/reel/%s/", shortCode)
	}
	item, err := t.scraper.ScrapePost(ctx, postURL)
	if err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		if !errors.Is(err, model.ErrNoDataFound) {
			err = fmt.Errorf("%w: %v", model.ErrScrapeFailed, err)
		}
		context.AddError(t.GetName(), err)
		return
	}

	reel := &model.Reel{
		ShortCode:    shortCode,
		InstagramID:  item.ID,
		OriginalURL:  item.URL,
		RawCaption:   item.Caption,
		AuthorHandle: item.OwnerUsername,
		ThumbnailURL: item.DisplayURL,
		PostedAt:     item.PostedAt(),
		ViewCount:    item.VideoViewCount,
		LikeCount:    item.LikesCount,
		CreatedAt:    time.Now().UTC(),
	}
	if item.Location != nil {
		reel.LocationName = item.Location.Name
	}

	if err := t.reelStore.Create(ctx, reel); err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to create record for %s: %w", shortCode, err))
		return
	}

	slog.InfoContext(ctx, "metadata saved", "shortcode", shortCode, "author", reel.AuthorHandle)

	t.GetSuccessCounter().Add(ctx, 1)
	context.Add(ReelKey, reel)
	if item.VideoURL != "" {
		context.Add(CdnURLKey, item.VideoURL)
	}
	context.Add(t.GetOutputParam(), reel)
}
