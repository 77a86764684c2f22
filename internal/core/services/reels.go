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

// Package services exposes the pipeline to the API layer. ReelService owns
// the idempotency contract: one record per shortcode, processed at most
// once for the lifetime of the store.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/commands"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/cor"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/workflow"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
)

// ReelService is the entry point for URL submissions.
type ReelService struct {
	workflow  *workflow.ReelIngestionWorkflow
	reelStore store.ReelStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReelService(ingestion *workflow.ReelIngestionWorkflow, reelStore store.ReelStore) *ReelService {
	return &ReelService{
		workflow:  ingestion,
		reelStore: reelStore,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one shortcode, creating it on first
// use. Locks are never removed; the shortcode space a single deployment
// sees is small.
func (s *ReelService) lockFor(shortCode string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[shortCode]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[shortCode] = lock
	}
	return lock
}

// GetOrProcess resolves the URL to a shortcode and returns the stored
// record, running the full ingestion pipeline first if no record exists.
// Two concurrent submissions of the same new shortcode serialize on a
// per-shortcode lock: the late arrival blocks, then observes the record the
// first one stored. Only identifier resolution and the metadata scrape can
// fail the call; every later stage degrades the record instead.
func (s *ReelService) GetOrProcess(ctx context.Context, url string) (*model.Reel, model.StageStatus, error) {
	shortCode := commands.ExtractShortCode(url)
	if shortCode == "" {
		return nil, nil, fmt.Errorf("%w: no shortcode in %q", model.ErrInvalidReference, url)
	}

	lock := s.lockFor(shortCode)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.reelStore.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, nil, fmt.Errorf("record lookup failed for %s: %w", shortCode, err)
	}
	if existing != nil {
		slog.InfoContext(ctx, "record already ingested", "shortcode", shortCode)
		return existing, model.NewStageStatus(), nil
	}

	runID := uuid.NewString()
	slog.InfoContext(ctx, "starting ingestion", "run_id", runID, "shortcode", shortCode)

	statuses := model.NewStageStatus()
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, url)
	chainCtx.Add(commands.StageStatusKey, statuses)
	defer chainCtx.Close()

	s.workflow.Execute(chainCtx)

	if chainCtx.HasErrors() {
		// Hard failure: surface the first recorded error to the caller.
		for name, err := range chainCtx.GetErrors() {
			return nil, statuses, fmt.Errorf("stage %s: %w", name, err)
		}
	}

	reel, ok := chainCtx.Get(commands.ReelKey).(*model.Reel)
	if !ok {
		return nil, statuses, fmt.Errorf("%w: pipeline produced no record", model.ErrScrapeFailed)
	}

	for stage, stageErr := range statuses {
		slog.WarnContext(ctx, "stage degraded", "shortcode", shortCode, "stage", stage, "error", stageErr)
	}
	return reel, statuses, nil
}

// Get returns the stored record without triggering ingestion.
func (s *ReelService) Get(ctx context.Context, shortCode string) (*model.Reel, error) {
	return s.reelStore.GetByShortCode(ctx, shortCode)
}

// List returns all stored records, newest first.
func (s *ReelService) List(ctx context.Context) ([]*model.Reel, error) {
	return s.reelStore.List(ctx)
}

// Delete removes a record and its frame artifacts. Administrative only.
func (s *ReelService) Delete(ctx context.Context, shortCode string) error {
	return s.reelStore.Delete(ctx, shortCode)
}

// Frames returns the stored frame artifacts for a record.
func (s *ReelService) Frames(ctx context.Context, shortCode string) ([]model.Frame, error) {
	return s.reelStore.ListFrames(ctx, shortCode)
}
