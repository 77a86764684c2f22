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

package model

import "errors"

// Pipeline error taxonomy. Only ErrInvalidReference and the two scrape
// errors are hard failures that abort a run and surface to the caller;
// everything else is confined to its stage and degrades the record to
// "artifact absent". Wrap with fmt.Errorf("...: %w", err) and test with
// errors.Is.
var (
	// ErrInvalidReference means no shortcode could be extracted from the
	// submitted URL. Hard failure.
	ErrInvalidReference = errors.New("invalid content reference")

	// ErrScrapeFailed means the scraping provider returned no run at all.
	// Hard failure.
	ErrScrapeFailed = errors.New("scrape failed")

	// ErrNoDataFound means the provider ran but produced an empty result
	// set, typically for private or deleted content. Hard failure.
	ErrNoDataFound = errors.New("no data found")

	// ErrDownloadFailed means the CDN video byte fetch failed. Soft: the
	// metadata save stands, the video artifact is absent.
	ErrDownloadFailed = errors.New("video download failed")

	// ErrFrameExtractionFailed means the video could not be decoded into
	// frames. Soft: downstream stages see zero frames.
	ErrFrameExtractionFailed = errors.New("frame extraction failed")

	// ErrAudioExtractionFailed means the audio track could not be demuxed
	// or transcoded. Soft: the analyzer runs without audio.
	ErrAudioExtractionFailed = errors.New("audio extraction failed")

	// ErrSessionUnavailable means the comment provider's session could not
	// be loaded or refreshed. Soft: comments stay empty.
	ErrSessionUnavailable = errors.New("session unavailable")

	// ErrAnalysisCallFailed means the transport-level call to the analyzer
	// failed. Soft: the AI fields are left unchanged.
	ErrAnalysisCallFailed = errors.New("analysis call failed")

	// ErrAnalysisParseFailed means the analyzer replied but its output did
	// not parse to the required schema. Soft, and never retried.
	ErrAnalysisParseFailed = errors.New("analysis parse failed")
)
