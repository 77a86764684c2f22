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

	"github.com/jaycherian/gcp-go-reel-scout/internal/analysis"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/cor"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/video"
)

// AnalysisInvoker packages the selected frames, the optional audio
// artifact, and the caption into one multimodal request and captures the
// analyzer's raw reply. The reply text is handed to AnalysisResultParser;
// a transport failure is soft and simply leaves no reply to parse.
type AnalysisInvoker struct {
	cor.BaseCommand
	analyzer  analysis.Analyzer
	maxFrames int
}

func NewAnalysisInvoker(name string, analyzer analysis.Analyzer, maxFrames int) *AnalysisInvoker {
	if maxFrames <= 0 {
		maxFrames = analysis.MaxFrames
	}
	out := &AnalysisInvoker{
		BaseCommand: *cor.NewBaseCommand(name),
		analyzer:    analyzer,
		maxFrames:   maxFrames,
	}
	out.OutputParamName = RawAnalysisKey
	return out
}

// IsExecutable requires a record with a video artifact: with no media
// there is nothing worth transcribing, matching the gating of the rest of
// the artifact stages.
func (t *AnalysisInvoker) IsExecutable(context cor.Context) bool {
	if context.GetContext() == nil || context.Get(ReelKey) == nil {
		return false
	}
	return context.Get(ReelKey).(*model.Reel).HasVideo()
}

func (t *AnalysisInvoker) Execute(context cor.Context) {
	ctx := context.GetContext()
	reel := context.Get(ReelKey).(*model.Reel)
	statuses := context.Get(StageStatusKey).(model.StageStatus)

	var frames []video.SampledFrame
	if sampled, ok := context.Get(FramesKey).([]video.SampledFrame); ok {
		frames = analysis.SelectFrames(sampled, t.maxFrames)
	}

	req := &analysis.Request{
		Caption:   reel.RawCaption,
		AudioPath: reel.AudioPath,
		Frames:    frames,
	}

	raw, err := t.analyzer.Generate(ctx, req)
	if err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		slog.WarnContext(ctx, "analysis call failed", "shortcode", reel.ShortCode, "error", err)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrAnalysisCallFailed, err))
		return
	}

	t.GetSuccessCounter().Add(ctx, 1)
	context.Add(t.GetOutputParam(), raw)
}
