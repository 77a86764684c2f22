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

// Package workflow_test exercises the full ingestion pipeline against fake
// providers: a canned scraper, an in-process CDN, a synthetic video engine,
// and a scripted analyzer. Only the record store is real (SQLite in a temp
// directory), so the tests cover the same persistence paths production
// uses.
package workflow_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/jaycherian/gcp-go-reel-scout/internal/analysis"
	"github.com/jaycherian/gcp-go-reel-scout/internal/cloud"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/services"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/workflow"
	"github.com/jaycherian/gcp-go-reel-scout/internal/scrape"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
	"github.com/jaycherian/gcp-go-reel-scout/internal/video"
)

const tName = "github.com/jaycherian/gcp-go-reel-scout/tests/workflow"

var logger = otelslog.NewLogger(tName)

// fakeScraper returns a fixed item and counts invocations so tests can
// assert the at-most-once external-fetch contract.
type fakeScraper struct {
	item    *scrape.Item
	err     error
	calls   atomic.Int32
	lastURL string
}

func (f *fakeScraper) ScrapePost(_ context.Context, postURL string) (*scrape.Item, error) {
	f.calls.Add(1)
	f.lastURL = postURL
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

// fakeEngine synthesizes frames without touching ffmpeg.
type fakeEngine struct {
	frameCount int
	frameErr   error
	audioErr   error
}

func (f *fakeEngine) SampleFrames(_ context.Context, _ string, outputDir string, interval float64) ([]video.SampledFrame, error) {
	if f.frameErr != nil {
		return nil, f.frameErr
	}
	frames := make([]video.SampledFrame, 0, f.frameCount)
	for i := 0; i < f.frameCount; i++ {
		frames = append(frames, video.SampledFrame{
			Path:      filepath.Join(outputDir, fmt.Sprintf("frame_%04d.jpg", i)),
			Timestamp: float64(i) * interval,
		})
	}
	return frames, nil
}

func (f *fakeEngine) ExtractAudio(_ context.Context, _ string, _ string) error {
	return f.audioErr
}

// fakeAnalyzer replies with a scripted raw text.
type fakeAnalyzer struct {
	reply string
	err   error
	calls atomic.Int32
	last  *analysis.Request
}

func (f *fakeAnalyzer) Generate(_ context.Context, req *analysis.Request) (string, error) {
	f.calls.Add(1)
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeCommentProvider returns a fixed comment list.
type fakeCommentProvider struct {
	comments []string
	err      error
}

func (f *fakeCommentProvider) FetchComments(_ context.Context, _ string, limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.comments) > limit {
		return f.comments[:limit], nil
	}
	return f.comments, nil
}

// harness bundles the wired service and its fakes for one test.
type harness struct {
	service  *services.ReelService
	store    *store.SQLiteStore
	scraper  *fakeScraper
	engine   *fakeEngine
	analyzer *fakeAnalyzer
	comments *fakeCommentProvider
}

func testConfig(t *testing.T) *cloud.Config {
	t.Helper()
	config := cloud.NewConfig()
	config.Application.Name = "reel-scout-test"
	config.Application.TargetLanguage = "Malayalam"
	config.Application.MaxAnalysisFrames = 6
	config.Instagram.CommentLimit = 100
	config.Video.SamplingIntervalSeconds = 2.0
	config.Video.DownloadTimeoutInSeconds = 5
	config.Storage.MediaRoot = filepath.Join(t.TempDir(), "media")
	return config
}

func newHarness(t *testing.T, config *cloud.Config, scraper *fakeScraper, engine *fakeEngine, analyzer *fakeAnalyzer, comments *fakeCommentProvider) *harness {
	t.Helper()

	reelStore, err := store.OpenSQLite(filepath.Join(t.TempDir(), "reels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reelStore.Close() })

	ingestion := workflow.NewReelIngestionWorkflow(
		"reel-ingestion-test",
		config,
		scraper,
		comments,
		engine,
		analyzer,
		reelStore,
		store.NewArtifactLayout(config.Storage.MediaRoot),
		store.NoopArchiver{})

	logger.Info("test harness ready", "media_root", config.Storage.MediaRoot)

	return &harness{
		service:  services.NewReelService(ingestion, reelStore),
		store:    reelStore,
		scraper:  scraper,
		engine:   engine,
		analyzer: analyzer,
		comments: comments,
	}
}
