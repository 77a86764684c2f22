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

// Package store persists reel records and their frame artifacts. The
// ReelStore interface is what the pipeline writes through; the SQLite
// implementation is the only one in production, but tests substitute an
// in-memory fake.
package store

import (
	"context"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
)

// ReelStore is the record store keyed by shortcode. Each stage of the
// pipeline writes a disjoint set of fields, so the mutators are
// field-scoped rather than whole-record upserts.
type ReelStore interface {
	// GetByShortCode returns the stored record, or (nil, nil) when no
	// record exists for the shortcode.
	GetByShortCode(ctx context.Context, shortCode string) (*model.Reel, error)

	// Create inserts a new record. Creating an existing shortcode is an
	// error; the orchestrator's entry check makes that unreachable.
	Create(ctx context.Context, reel *model.Reel) error

	SetVideoPath(ctx context.Context, shortCode string, path string) error
	SetAudioPath(ctx context.Context, shortCode string, path string) error
	SetComments(ctx context.Context, shortCode string, comments []string) error

	// SetAnalysis writes all four derived fields and flips the processed
	// flag in one statement, so a record never shows a half-written
	// analysis.
	SetAnalysis(ctx context.Context, shortCode string, analysis *model.ReelAnalysis) error

	// ReplaceFrames swaps the record's frame artifact rows for the given
	// batch, preserving order.
	ReplaceFrames(ctx context.Context, shortCode string, frames []model.Frame) error
	ListFrames(ctx context.Context, shortCode string) ([]model.Frame, error)

	List(ctx context.Context) ([]*model.Reel, error)

	// Delete removes the record and, by cascade, its frames. Administrative
	// operation; the pipeline never deletes.
	Delete(ctx context.Context, shortCode string) error
}
