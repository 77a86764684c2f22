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
	"github.com/jaycherian/gcp-go-reel-scout/internal/instagram"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
)

// CommentCollector fetches a bounded, ranked set of comment texts for the
// record. Collection runs independently of the media stages and at most
// once per record: a record that already carries comments is skipped. A
// session failure degrades to an empty comment list.
type CommentCollector struct {
	cor.BaseCommand
	provider  instagram.CommentProvider
	reelStore store.ReelStore
	limit     int
}

func NewCommentCollector(
	name string,
	provider instagram.CommentProvider,
	reelStore store.ReelStore,
	limit int) *CommentCollector {
	if limit <= 0 {
		limit = 100
	}
	return &CommentCollector{
		BaseCommand: *cor.NewBaseCommand(name),
		provider:    provider,
		reelStore:   reelStore,
		limit:       limit,
	}
}

// IsExecutable requires a record whose comments have not been collected
// yet. Comments do not depend on the video artifact.
func (t *CommentCollector) IsExecutable(context cor.Context) bool {
	if context.GetContext() == nil || context.Get(ReelKey) == nil {
		return false
	}
	return len(context.Get(ReelKey).(*model.Reel).Comments) == 0
}

func (t *CommentCollector) Execute(context cor.Context) {
	ctx := context.GetContext()
	reel := context.Get(ReelKey).(*model.Reel)
	statuses := context.Get(StageStatusKey).(model.StageStatus)

	comments, err := t.provider.FetchComments(ctx, reel.ShortCode, t.limit)
	if err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		slog.WarnContext(ctx, "comment collection failed", "shortcode", reel.ShortCode, "error", err)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrSessionUnavailable, err))
		return
	}

	if err := t.reelStore.SetComments(ctx, reel.ShortCode, comments); err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		statuses.Record(t.GetName(), fmt.Errorf("failed to store comments: %w", err))
		return
	}
	reel.Comments = comments

	slog.InfoContext(ctx, "comments collected", "shortcode", reel.ShortCode, "count", len(comments))
	t.GetSuccessCounter().Add(ctx, 1)
	context.Add(t.GetOutputParam(), comments)
}
