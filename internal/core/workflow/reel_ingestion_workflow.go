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

// Package workflow combines the pipeline commands into the reel ingestion
// orchestration.
package workflow

import (
	"net/http"
	"time"

	"github.com/jaycherian/gcp-go-reel-scout/internal/analysis"
	"github.com/jaycherian/gcp-go-reel-scout/internal/cloud"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/commands"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/cor"
	"github.com/jaycherian/gcp-go-reel-scout/internal/instagram"
	"github.com/jaycherian/gcp-go-reel-scout/internal/scrape"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
	"github.com/jaycherian/gcp-go-reel-scout/internal/video"
)

// ReelIngestionWorkflow runs the full ingestion pipeline for one submitted
// URL. It is a two-level chain:
//
//   - The outer chain stops at the first error. Only the identifier
//     resolution and the metadata scrape live directly on it, because those
//     are the only hard-fail stages.
//   - The artifact chain is nested inside the outer chain with
//     ContinueOnFailure set. Its stages (download, frames, audio, comments,
//     analysis) record their failures as stage status rather than chain
//     errors, so one broken artifact never blocks the rest.
type ReelIngestionWorkflow struct {
	cor.BaseCommand
	scraper   scrape.Scraper
	provider  instagram.CommentProvider
	engine    video.Engine
	analyzer  analysis.Analyzer
	reelStore store.ReelStore
	layout    *store.ArtifactLayout
	archiver  store.Archiver
	config    *cloud.Config
	chain     cor.Chain
}

// NewReelIngestionWorkflow wires the commands. The http client used for the
// CDN byte fetch carries the configured download timeout.
func NewReelIngestionWorkflow(
	name string,
	config *cloud.Config,
	scraper scrape.Scraper,
	provider instagram.CommentProvider,
	engine video.Engine,
	analyzer analysis.Analyzer,
	reelStore store.ReelStore,
	layout *store.ArtifactLayout,
	archiver store.Archiver) *ReelIngestionWorkflow {
	out := &ReelIngestionWorkflow{
		BaseCommand: *cor.NewBaseCommand(name),
		scraper:     scraper,
		provider:    provider,
		engine:      engine,
		analyzer:    analyzer,
		reelStore:   reelStore,
		layout:      layout,
		archiver:    archiver,
		config:      config,
	}
	out.initializeChain()
	return out
}

// Execute runs the ingestion chain against the shared context.
func (m *ReelIngestionWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

func (m *ReelIngestionWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Hard-fail stages: no identifier or no metadata means no record.
	out.AddCommand(commands.NewShortCodeResolver("resolve-shortcode"))
	out.AddCommand(commands.NewMetadataScraper("scrape-metadata", m.scraper, m.reelStore))

	// Best-effort artifact stages. Ordering matters only in that frames,
	// audio, and analysis all read the downloaded video, and the analysis
	// reply parser reads the invoker's output.
	downloadClient := &http.Client{
		Timeout: time.Duration(m.config.Video.DownloadTimeoutInSeconds) * time.Second,
	}
	artifacts := cor.NewBaseChain("gather-artifacts").ContinueOnFailure(true)
	artifacts.AddCommand(commands.NewVideoDownloader("download-video", downloadClient, m.layout, m.reelStore, m.archiver))
	artifacts.AddCommand(commands.NewFrameSampler("sample-frames", m.engine, m.layout, m.reelStore, m.config.Video.SamplingIntervalSeconds))
	artifacts.AddCommand(commands.NewAudioExtractor("extract-audio", m.engine, m.layout, m.reelStore, m.archiver))
	artifacts.AddCommand(commands.NewCommentCollector("collect-comments", m.provider, m.reelStore, m.config.Instagram.CommentLimit))
	artifacts.AddCommand(commands.NewAnalysisInvoker("invoke-analysis", m.analyzer, m.config.Application.MaxAnalysisFrames))
	artifacts.AddCommand(commands.NewAnalysisResultParser("parse-analysis", m.reelStore))
	out.AddCommand(artifacts)

	m.chain = out
}
