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

// Package model defines the core data structures of the reel ingestion
// pipeline. This file holds the transient objects that travel through a
// workflow execution but are never persisted in their own right.
package model

// ReelAnalysis is the structured output of the multimodal analyzer. The
// analyzer's reply must parse, after code-fence stripping, to exactly these
// four string fields; anything else is a parse failure.
type ReelAnalysis struct {
	Transcript string `json:"transcript"`
	Location   string `json:"location"`
	District   string `json:"district"`
	Summary    string `json:"summary"`
}

// StageStatus collects soft failures per pipeline stage. Soft failures never
// abort a run; they are recorded here as structured data so the orchestrator
// and the logs can report what degraded, and each one leaves the record in
// an "artifact absent" state instead.
type StageStatus map[string]error

// NewStageStatus returns an empty status map for one pipeline run.
func NewStageStatus() StageStatus {
	return make(StageStatus)
}

// Record notes a soft failure for the named stage. A nil error is ignored.
func (s StageStatus) Record(stage string, err error) {
	if err != nil {
		s[stage] = err
	}
}

// Failed reports whether the named stage recorded a soft failure.
func (s StageStatus) Failed(stage string) bool {
	_, ok := s[stage]
	return ok
}
