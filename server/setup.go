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

// This file initializes the application state: configuration, cloud
// clients, the artifact stores, the providers, and the ingestion workflow,
// wired together once at startup.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jaycherian/gcp-go-reel-scout/internal/analysis"
	"github.com/jaycherian/gcp-go-reel-scout/internal/cloud"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/services"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/workflow"
	"github.com/jaycherian/gcp-go-reel-scout/internal/instagram"
	"github.com/jaycherian/gcp-go-reel-scout/internal/scrape"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
	"github.com/jaycherian/gcp-go-reel-scout/internal/video"
)

// AnalysisAgentName is the key in the agent_models config table that holds
// the reel analysis model.
const AnalysisAgentName = "reel-analysis"

// StateManager holds the shared dependencies so handlers reach them
// through one container instead of globals scattered across files.
type StateManager struct {
	config      *cloud.Config
	cloud       *cloud.ServiceClients
	reelStore   *store.SQLiteStore
	reelService *services.ReelService
}

var state = &StateManager{}

// SetupOS points the configuration loader at the configs directory and the
// local runtime overlay.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig loads the configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState builds every dependency of the ingestion pipeline and the API
// handlers: cloud clients, the SQLite record store, the artifact layout,
// the scrape/comment/video/analysis providers, and the workflow itself.
func InitState(ctx context.Context) {
	config := GetConfig()

	serviceClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		log.Fatalf("failed to create cloud service clients: %v\n", err)
	}
	state.cloud = serviceClients

	reelStore, err := store.OpenSQLite(config.Storage.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open record store: %v\n", err)
	}
	state.reelStore = reelStore

	layout := store.NewArtifactLayout(config.Storage.MediaRoot)

	var archiver store.Archiver = store.NoopArchiver{}
	if serviceClients.StorageClient != nil {
		archiver = store.NewGCSArchiver(serviceClients.StorageClient, config.Storage.ArchiveBucket)
	}

	scraper := scrape.NewApifyScraper(
		config.Scraper.Token,
		config.Scraper.Actor,
		config.Scraper.BaseURL,
		time.Duration(config.Scraper.TimeoutInSeconds)*time.Second)

	sessionStore := instagram.NewFileSessionStore(config.Instagram.SessionFile)
	commentProvider := instagram.NewClient(sessionStore, config.Instagram.BaseURL, http.DefaultClient)

	engine := video.NewFFmpegEngine(config.Video.FFmpegPath, config.Video.FFprobePath)

	agent, ok := serviceClients.AgentModels[AnalysisAgentName]
	if !ok {
		log.Fatalf("no agent model named %q in configuration\n", AnalysisAgentName)
	}
	analyzer, err := analysis.NewGeminiAnalyzer(
		serviceClients.GenAIClient,
		agent,
		config.PromptTemplates.Analysis,
		config.Application.TargetLanguage)
	if err != nil {
		log.Fatalf("failed to create analyzer: %v\n", err)
	}

	ingestion := workflow.NewReelIngestionWorkflow(
		"reel-ingestion",
		config,
		scraper,
		commentProvider,
		engine,
		analyzer,
		reelStore,
		layout,
		archiver)

	state.reelService = services.NewReelService(ingestion, reelStore)
}
