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
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/cor"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
	"github.com/jaycherian/gcp-go-reel-scout/internal/video"
)

// FrameSampler extracts time-uniform still frames from the downloaded
// video and persists them as the record's frame artifacts. Soft-fail: a
// decode error leaves the record with zero frames.
type FrameSampler struct {
	cor.BaseCommand
	engine          video.Engine
	layout          *store.ArtifactLayout
	reelStore       store.ReelStore
	intervalSeconds float64
}

func NewFrameSampler(
	name string,
	engine video.Engine,
	layout *store.ArtifactLayout,
	reelStore store.ReelStore,
	intervalSeconds float64) *FrameSampler {
	if intervalSeconds <= 0 {
		intervalSeconds = 2.0
	}
	return &FrameSampler{
		BaseCommand:     *cor.NewBaseCommand(name),
		engine:          engine,
		layout:          layout,
		reelStore:       reelStore,
		intervalSeconds: intervalSeconds,
	}
}

// IsExecutable requires a record with a video artifact.
func (t *FrameSampler) IsExecutable(context cor.Context) bool {
	if context.GetContext() == nil || context.Get(ReelKey) == nil {
		return false
	}
	return context.Get(ReelKey).(*model.Reel).HasVideo()
}

func (t *FrameSampler) Execute(context cor.Context) {
	ctx := context.GetContext()
	reel := context.Get(ReelKey).(*model.Reel)
	statuses := context.Get(StageStatusKey).(model.StageStatus)

	framesDir, err := t.layout.FramesDir(reel.ShortCode)
	if err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrFrameExtractionFailed, err))
		return
	}

	sampled, err := t.engine.SampleFrames(ctx, reel.VideoPath, framesDir, t.intervalSeconds)
	if err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		slog.WarnContext(ctx, "frame sampling failed", "shortcode", reel.ShortCode, "error", err)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrFrameExtractionFailed, err))
		return
	}

	frames := make([]model.Frame, 0, len(sampled))
	for _, frame := range sampled {
		frames = append(frames, model.Frame{
			ShortCode: reel.ShortCode,
			Path:      frame.Path,
			Timestamp: frame.Timestamp,
		})
	}
	if err := t.reelStore.ReplaceFrames(ctx, reel.ShortCode, frames); err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrFrameExtractionFailed, err))
		return
	}

	slog.InfoContext(ctx, "frames sampled", "shortcode", reel.ShortCode, "count", len(sampled))
	t.GetSuccessCounter().Add(ctx, 1)
	context.Add(FramesKey, sampled)
	context.Add(t.GetOutputParam(), sampled)
}
