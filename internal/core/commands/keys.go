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

// Package commands holds the pipeline stages of the reel ingestion
// workflow. Each command does one job against the shared chain context;
// the workflow package wires them into chains.
package commands

// Well-known context keys shared between commands. The chain's CtxIn/CtxOut
// flip-flop carries each command's primary value; these keys carry state
// that several commands need at once.
const (
	// PostURLKey holds the canonical post URL, with the submitted reference's
	// /reel/ or /p/ path segment preserved.
	PostURLKey = "POST_URL"

	// ReelKey holds the *model.Reel being built for this run.
	ReelKey = "REEL"

	// CdnURLKey holds the provider CDN URL for the video bytes; absent when
	// the scrape returned no video.
	CdnURLKey = "VIDEO_CDN_URL"

	// FramesKey holds the []video.SampledFrame produced by frame sampling.
	FramesKey = "FRAMES"

	// RawAnalysisKey holds the analyzer's unparsed reply text.
	RawAnalysisKey = "RAW_ANALYSIS"

	// StageStatusKey holds the model.StageStatus collecting soft failures.
	StageStatusKey = "STAGE_STATUS"
)
