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

// AudioExtractor transcodes the video's audio track into a standalone MP3
// artifact. Audio is an enhancement for the analysis stage, not a
// requirement, so any extraction error (no audio track, codec failure)
// leaves the record without an audio artifact and the pipeline moves on.
type AudioExtractor struct {
	cor.BaseCommand
	engine    video.Engine
	layout    *store.ArtifactLayout
	reelStore store.ReelStore
	archiver  store.Archiver
}

func NewAudioExtractor(
	name string,
	engine video.Engine,
	layout *store.ArtifactLayout,
	reelStore store.ReelStore,
	archiver store.Archiver) *AudioExtractor {
	return &AudioExtractor{
		BaseCommand: *cor.NewBaseCommand(name),
		engine:      engine,
		layout:      layout,
		reelStore:   reelStore,
		archiver:    archiver,
	}
}

// IsExecutable requires a record with a video artifact.
func (t *AudioExtractor) IsExecutable(context cor.Context) bool {
	if context.GetContext() == nil || context.Get(ReelKey) == nil {
		return false
	}
	return context.Get(ReelKey).(*model.Reel).HasVideo()
}

func (t *AudioExtractor) Execute(context cor.Context) {
	ctx := context.GetContext()
	reel := context.Get(ReelKey).(*model.Reel)
	statuses := context.Get(StageStatusKey).(model.StageStatus)

	audioPath := t.layout.AudioPath(reel.ShortCode)
	if err := t.engine.ExtractAudio(ctx, reel.VideoPath, audioPath); err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		slog.WarnContext(ctx, "audio extraction failed", "shortcode", reel.ShortCode, "error", err)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrAudioExtractionFailed, err))
		return
	}

	if err := t.reelStore.SetAudioPath(ctx, reel.ShortCode, audioPath); err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrAudioExtractionFailed, err))
		return
	}
	reel.AudioPath = audioPath
	t.archiver.Archive(ctx, reel.ShortCode, audioPath)

	t.GetSuccessCounter().Add(ctx, 1)
	context.Add(t.GetOutputParam(), audioPath)
}
