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

// Package cloud holds the application configuration, loaded from TOML files,
// and the shared clients for external services. Configuration is hierarchical:
// a base .env.toml plus a runtime-specific overlay (.env.local.toml,
// .env.test.toml, ...).
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings disables content blocking for all harm categories.
// Reels are user-submitted but the analysis output is structured metadata, so
// blocked responses only manifest as avoidable parse failures.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// ScraperConfig configures the external metadata scraping provider.
type ScraperConfig struct {
	Token            string `toml:"token"`              // API token for the provider.
	Actor            string `toml:"actor"`              // Actor/task identifier to invoke.
	BaseURL          string `toml:"base_url"`           // Override for tests; empty uses the provider default.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Bound for the synchronous scrape call.
}

// InstagramConfig configures the session-backed comment provider.
type InstagramConfig struct {
	SessionFile  string `toml:"session_file"`  // File-persisted session credential.
	Username     string `toml:"username"`      // Login used only when the session needs a refresh.
	Password     string `toml:"password"`      // Prefer setting this via the overlay file, not the base config.
	CommentLimit int    `toml:"comment_limit"` // Cap on total comment entries (parents + replies).
	BaseURL      string `toml:"base_url"`      // Override for tests.
}

// Storage configures where records and artifacts live.
type Storage struct {
	MediaRoot     string `toml:"media_root"`     // Root directory for video/audio/frame artifacts.
	DatabasePath  string `toml:"database_path"`  // SQLite database file.
	ArchiveBucket string `toml:"archive_bucket"` // Optional GCS bucket artifacts are mirrored to; empty disables archiving.
}

// Video configures the ffmpeg-based artifact extraction.
type Video struct {
	FFmpegPath               string  `toml:"ffmpeg_path"`
	FFprobePath              string  `toml:"ffprobe_path"`
	SamplingIntervalSeconds  float64 `toml:"sampling_interval_seconds"`   // Temporal spacing between sampled frames.
	DownloadTimeoutInSeconds int     `toml:"download_timeout_in_seconds"` // Bound for the CDN byte fetch.
}

// GeminiModel describes one generative model configuration.
type GeminiModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	RateLimit          int     `toml:"rate_limit"` // Requests per minute allowed through the quota wrapper.
}

// PromptTemplates holds the text templates for analyzer prompts.
type PromptTemplates struct {
	Analysis string `toml:"analysis"`
}

// Config is the top-level configuration aggregate.
type Config struct {
	Application struct {
		Name              string `toml:"name"`
		GoogleProjectId   string `toml:"google_project_id"` // Used by the telemetry exporters.
		TargetLanguage    string `toml:"target_language"`   // Language the analyzer is asked to transcribe.
		MaxAnalysisFrames int    `toml:"max_analysis_frames"`
	} `toml:"application"`
	Scraper         ScraperConfig          `toml:"scraper"`
	Instagram       InstagramConfig        `toml:"instagram"`
	Storage         Storage                `toml:"storage"`
	Video           Video                  `toml:"video"`
	PromptTemplates PromptTemplates        `toml:"prompt_templates"`
	AgentModels     map[string]GeminiModel `toml:"agent_models"`
}

// NewConfig returns a Config with its map fields initialized so the TOML
// decoder can populate them.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]GeminiModel),
	}
}
