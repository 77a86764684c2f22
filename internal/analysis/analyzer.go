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

// Package analysis turns a reel's artifacts (frames, audio, caption) into
// structured fields via a single multimodal model call.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/video"
)

// MaxFrames bounds the number of frame attachments in one request.
const MaxFrames = 6

// Request carries the prepared inputs for one analysis call. AudioPath is
// empty when no audio artifact exists; Frames has already been reduced to
// at most MaxFrames entries.
type Request struct {
	Caption   string
	AudioPath string
	Frames    []video.SampledFrame
}

// Analyzer issues the multimodal request and returns the model's raw text
// reply; parsing is a separate step so call failures and parse failures
// stay distinguishable. Implementations never retry: one call, one outcome.
type Analyzer interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

// SelectFrames reduces a sampled-frame sequence to at most max frames,
// evenly spaced, preserving order. Fewer than max frames pass through
// unchanged.
func SelectFrames(frames []video.SampledFrame, max int) []video.SampledFrame {
	if max <= 0 || len(frames) == 0 {
		return nil
	}
	step := len(frames) / max
	if step < 1 {
		step = 1
	}
	out := make([]video.SampledFrame, 0, max)
	for i := 0; i < len(frames); i += step {
		out = append(out, frames[i])
		if len(out) == max {
			break
		}
	}
	return out
}

// ParseResult decodes the model's reply into a ReelAnalysis. Code fences
// around the JSON are tolerated; anything short of a JSON object carrying
// all four string fields is an error.
func ParseResult(raw string) (*model.ReelAnalysis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var fields map[string]*string
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("analysis response is not valid JSON: %w", err)
	}

	out := &model.ReelAnalysis{}
	for key, target := range map[string]*string{
		"transcript": &out.Transcript,
		"location":   &out.Location,
		"district":   &out.District,
		"summary":    &out.Summary,
	} {
		value, ok := fields[key]
		if !ok || value == nil {
			return nil, fmt.Errorf("analysis response is missing required field %q", key)
		}
		*target = *value
	}
	return out, nil
}
