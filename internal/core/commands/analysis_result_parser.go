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
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
)

// AnalysisResultParser validates the analyzer's raw reply against the
// four-field schema and persists all derived fields in one write. A parse
// failure leaves the record's fields untouched and the processed flag
// false; the reply is never re-requested.
type AnalysisResultParser struct {
	cor.BaseCommand
	reelStore store.ReelStore
}

func NewAnalysisResultParser(name string, reelStore store.ReelStore) *AnalysisResultParser {
	out := &AnalysisResultParser{
		BaseCommand: *cor.NewBaseCommand(name),
		reelStore:   reelStore,
	}
	out.InputParamName = RawAnalysisKey
	return out
}

func (t *AnalysisResultParser) Execute(context cor.Context) {
	ctx := context.GetContext()
	reel := context.Get(ReelKey).(*model.Reel)
	statuses := context.Get(StageStatusKey).(model.StageStatus)
	raw := context.Get(t.GetInputParam()).(string)

	result, err := analysis.ParseResult(raw)
	if err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		slog.WarnContext(ctx, "analysis reply failed validation", "shortcode", reel.ShortCode, "error", err)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrAnalysisParseFailed, err))
		return
	}

	if err := t.reelStore.SetAnalysis(ctx, reel.ShortCode, result); err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		statuses.Record(t.GetName(), fmt.Errorf("failed to store analysis: %w", err))
		return
	}
	reel.TranscriptText = result.Transcript
	reel.AILocationName = result.Location
	reel.AIDistrict = result.District
	reel.AISummary = result.Summary
	reel.IsProcessed = true

	slog.InfoContext(ctx, "analysis complete", "shortcode", reel.ShortCode, "location", result.Location)
	t.GetSuccessCounter().Add(ctx, 1)
	context.Add(t.GetOutputParam(), result)
}
