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

// Package video extracts still frames and audio tracks from downloaded
// video files. The Engine interface hides the ffmpeg invocation so workflow
// tests can substitute a fake.
package video

import "context"

// SampledFrame is one extracted still image with its capture time relative
// to the start of the video, in seconds.
type SampledFrame struct {
	Path      string
	Timestamp float64
}

// Engine performs the decode-side operations of the pipeline.
type Engine interface {
	// SampleFrames writes one frame image per interval into outputDir and
	// returns the frames in capture order. A source that cannot be opened
	// yields an empty slice and no error; the caller treats zero frames as
	// a degraded but valid outcome.
	SampleFrames(ctx context.Context, videoPath string, outputDir string, intervalSeconds float64) ([]SampledFrame, error)

	// ExtractAudio transcodes the audio track into a standalone MP3 at
	// outputPath. Missing or undecodable audio is an error; the caller
	// downgrades it to "no audio artifact".
	ExtractAudio(ctx context.Context, videoPath string, outputPath string) error
}
