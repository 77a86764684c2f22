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

package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/scrape"
)

func scrapedItem(shortCode string, caption string, videoURL string) *scrape.Item {
	return &scrape.Item{
		ID:             "3001",
		ShortCode:      shortCode,
		URL:            fmt.Sprintf("https://www.instagram.com/reel/%s/", shortCode),
		Caption:        caption,
		OwnerUsername:  "keralatravels",
		DisplayURL:     "https://cdn.example.com/thumb.jpg",
		Timestamp:      "2024-11-05T14:30:00Z",
		VideoViewCount: 100,
		LikesCount:     10,
		VideoURL:       videoURL,
		Location:       &scrape.Place{Name: "Varkala"},
	}
}

// newCDNServer serves fake video bytes for the download stage.
func newCDNServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not really an mp4 but bytes all the same"))
	}))
	t.Cleanup(server.Close)
	return server
}

// TestScenarioMetadataOnly: the scrape succeeds but offers no video URL.
// The record keeps its metadata, has no artifacts, and is not analyzed.
func TestScenarioMetadataOnly(t *testing.T) {
	h := newHarness(t, testConfig(t),
		&fakeScraper{item: scrapedItem("ABC123", "hello", "")},
		&fakeEngine{frameCount: 10},
		&fakeAnalyzer{reply: `{"transcript":"t","location":"l","district":"d","summary":"s"}`},
		&fakeCommentProvider{comments: []string{"first"}})

	reel, statuses, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/reel/ABC123/?x=1")
	require.NoError(t, err)

	assert.Equal(t, "ABC123", reel.ShortCode)
	assert.Equal(t, "hello", reel.RawCaption)
	assert.False(t, reel.HasVideo())
	assert.False(t, reel.HasAudio())
	assert.False(t, reel.IsProcessed)
	assert.Empty(t, statuses)

	// No video means no analysis attempt at all.
	assert.Equal(t, int32(0), h.analyzer.calls.Load())

	// Comments are independent of media.
	assert.Equal(t, []string{"first"}, reel.Comments)

	frames, err := h.store.ListFrames(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Empty(t, frames)
}

// TestScenarioFullPipeline: video downloads, 10 frames sample, audio
// extracts, and the analyzer returns valid JSON. The stored record carries
// every derived field and the processed flag.
func TestScenarioFullPipeline(t *testing.T) {
	cdn := newCDNServer(t)
	analyzer := &fakeAnalyzer{reply: "```json\n{\"transcript\":\"t\",\"location\":\"Munnar\",\"district\":\"Idukki\",\"summary\":\"s\"}\n```"}
	h := newHarness(t, testConfig(t),
		&fakeScraper{item: scrapedItem("ABC123", "tea gardens", cdn.URL+"/video.mp4")},
		&fakeEngine{frameCount: 10},
		analyzer,
		&fakeCommentProvider{comments: []string{"adipoli", "superb"}})

	reel, statuses, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/reel/ABC123/")
	require.NoError(t, err)
	assert.Empty(t, statuses)

	assert.True(t, reel.HasVideo())
	assert.True(t, reel.HasAudio())
	assert.True(t, reel.IsProcessed)
	assert.Equal(t, "t", reel.TranscriptText)
	assert.Equal(t, "Munnar", reel.AILocationName)
	assert.Equal(t, "Idukki", reel.AIDistrict)

	// The analyzer saw the caption, the audio artifact, and at most six of
	// the ten sampled frames.
	require.NotNil(t, analyzer.last)
	assert.Equal(t, "tea gardens", analyzer.last.Caption)
	assert.Equal(t, reel.AudioPath, analyzer.last.AudioPath)
	assert.Len(t, analyzer.last.Frames, 6)

	// The stored record matches what the call returned.
	stored, err := h.store.GetByShortCode(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.True(t, stored.IsProcessed)
	assert.Equal(t, "Munnar", stored.AILocationName)

	frames, err := h.store.ListFrames(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Len(t, frames, 10)
}

// TestScenarioMalformedAnalysis: the analyzer replies with text that fails
// the schema. The record keeps its artifacts, the derived fields stay
// empty, and the caller still gets a success-shaped response.
func TestScenarioMalformedAnalysis(t *testing.T) {
	cdn := newCDNServer(t)
	h := newHarness(t, testConfig(t),
		&fakeScraper{item: scrapedItem("ABC123", "caption", cdn.URL+"/video.mp4")},
		&fakeEngine{frameCount: 4},
		&fakeAnalyzer{reply: "I have no idea what this video is about."},
		&fakeCommentProvider{})

	reel, statuses, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/reel/ABC123/")
	require.NoError(t, err)

	assert.True(t, reel.HasVideo())
	assert.False(t, reel.IsProcessed)
	assert.Empty(t, reel.TranscriptText)
	assert.Empty(t, reel.AILocationName)
	assert.True(t, statuses.Failed("parse-analysis"))

	stored, err := h.store.GetByShortCode(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.False(t, stored.IsProcessed)
}

// TestScenarioAnalysisCallFailure: a transport failure calling the
// analyzer degrades the record the same way.
func TestScenarioAnalysisCallFailure(t *testing.T) {
	cdn := newCDNServer(t)
	h := newHarness(t, testConfig(t),
		&fakeScraper{item: scrapedItem("ABC123", "caption", cdn.URL+"/video.mp4")},
		&fakeEngine{frameCount: 4},
		&fakeAnalyzer{err: errors.New("rate limit blown")},
		&fakeCommentProvider{})

	reel, statuses, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/reel/ABC123/")
	require.NoError(t, err)
	assert.False(t, reel.IsProcessed)
	assert.True(t, statuses.Failed("invoke-analysis"))
	assert.False(t, statuses.Failed("parse-analysis"))
}

// TestScenarioSessionUnavailable: the comment provider failing leaves an
// empty comment list and degrades nothing else.
func TestScenarioSessionUnavailable(t *testing.T) {
	cdn := newCDNServer(t)
	h := newHarness(t, testConfig(t),
		&fakeScraper{item: scrapedItem("ABC123", "caption", cdn.URL+"/video.mp4")},
		&fakeEngine{frameCount: 4},
		&fakeAnalyzer{reply: `{"transcript":"t","location":"l","district":"d","summary":"s"}`},
		&fakeCommentProvider{err: errors.New("login challenge")})

	reel, statuses, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/reel/ABC123/")
	require.NoError(t, err)

	assert.Empty(t, reel.Comments)
	assert.True(t, statuses.Failed("collect-comments"))
	// Analysis still ran.
	assert.True(t, reel.IsProcessed)
}

// TestScenarioDownloadFailure: a dead CDN leaves the record with metadata
// only; the video-dependent stages are skipped rather than failed.
func TestScenarioDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	analyzer := &fakeAnalyzer{reply: `{"transcript":"t","location":"l","district":"d","summary":"s"}`}
	h := newHarness(t, testConfig(t),
		&fakeScraper{item: scrapedItem("ABC123", "caption", server.URL+"/video.mp4")},
		&fakeEngine{frameCount: 4},
		analyzer,
		&fakeCommentProvider{})

	reel, statuses, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/reel/ABC123/")
	require.NoError(t, err)

	assert.False(t, reel.HasVideo())
	assert.False(t, reel.IsProcessed)
	assert.True(t, statuses.Failed("download-video"))
	assert.Equal(t, int32(0), analyzer.calls.Load())
}

// TestScenarioPostPath: a /p/ reference is fetched from the provider under
// /p/, not rewritten to /reel/, so old-style posts resolve.
func TestScenarioPostPath(t *testing.T) {
	scraper := &fakeScraper{item: scrapedItem("Xy9_-Z", "old post", "")}
	h := newHarness(t, testConfig(t), scraper,
		&fakeEngine{}, &fakeAnalyzer{}, &fakeCommentProvider{})

	reel, _, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/p/Xy9_-Z/")
	require.NoError(t, err)

	assert.Equal(t, "Xy9_-Z", reel.ShortCode)
	assert.Equal(t, "https://www.instagram.com/p/Xy9_-Z/", scraper.lastURL)
}

// TestIdempotency: the second submission of the same shortcode returns the
// stored record without a second scrape.
func TestIdempotency(t *testing.T) {
	scraper := &fakeScraper{item: scrapedItem("ABC123", "hello", "")}
	h := newHarness(t, testConfig(t), scraper,
		&fakeEngine{}, &fakeAnalyzer{}, &fakeCommentProvider{})

	first, _, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/reel/ABC123/")
	require.NoError(t, err)

	second, _, err := h.service.GetOrProcess(context.Background(), "https://www.instagram.com/reel/ABC123/?utm=2")
	require.NoError(t, err)

	assert.Equal(t, int32(1), scraper.calls.Load())
	assert.Equal(t, first.ShortCode, second.ShortCode)
	assert.Equal(t, first.RawCaption, second.RawCaption)
}

// TestHardFailures: an unresolvable URL and a failed scrape both abort and
// surface typed errors; nothing is persisted.
func TestHardFailures(t *testing.T) {
	scraper := &fakeScraper{err: errors.New("actor run failed")}
	h := newHarness(t, testConfig(t), scraper,
		&fakeEngine{}, &fakeAnalyzer{}, &fakeCommentProvider{})

	_, _, err := h.service.GetOrProcess(context.Background(), "https://instagram.com/about/")
	assert.True(t, errors.Is(err, model.ErrInvalidReference))
	assert.Equal(t, int32(0), scraper.calls.Load())

	_, _, err = h.service.GetOrProcess(context.Background(), "https://instagram.com/reel/GONE/")
	assert.True(t, errors.Is(err, model.ErrScrapeFailed))

	stored, storeErr := h.store.GetByShortCode(context.Background(), "GONE")
	require.NoError(t, storeErr)
	assert.Nil(t, stored)
}
