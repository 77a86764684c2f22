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
// pipeline. This file holds the persistent entities: the Reel record, keyed
// by its shortcode, and the Frame artifacts sampled from its video.
package model

import "time"

// Reel is the persistent record for one piece of content. The shortcode is
// derived deterministically from the submitted URL and is the sole
// deduplication key: a record for a given shortcode is created at most once,
// and its fields are populated progressively as pipeline stages complete.
type Reel struct {
	ShortCode    string     `json:"short_code"`
	InstagramID  string     `json:"instagram_id,omitempty"`
	OriginalURL  string     `json:"original_url"`
	RawCaption   string     `json:"raw_caption,omitempty"`
	AuthorHandle string     `json:"author_handle,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	PostedAt     *time.Time `json:"posted_at,omitempty"` // nil when the platform timestamp was missing or malformed
	ViewCount    int64      `json:"view_count"`
	LikeCount    int64      `json:"like_count"`

	// LocationName is the location asserted by the platform itself, kept
	// separate from the AI-derived location below.
	LocationName string `json:"location_name,omitempty"`

	Comments []string `json:"comments,omitempty"`

	// AI-derived fields. They are written together from a single successful
	// analysis call; IsProcessed is never true without them.
	TranscriptText string `json:"transcript_text,omitempty"`
	AILocationName string `json:"ai_location_name,omitempty"`
	AIDistrict     string `json:"ai_district,omitempty"`
	AISummary      string `json:"ai_summary,omitempty"`
	IsProcessed    bool   `json:"is_processed"`

	// Artifact paths. An empty path means the artifact is absent.
	VideoPath string `json:"video_path,omitempty"`
	AudioPath string `json:"audio_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HasVideo reports whether a video artifact was stored for this record.
func (r *Reel) HasVideo() bool { return r.VideoPath != "" }

// HasAudio reports whether an audio artifact was stored for this record.
func (r *Reel) HasAudio() bool { return r.AudioPath != "" }

// BestLocationName prefers the platform-asserted location and falls back to
// the AI-derived one.
func (r *Reel) BestLocationName() string {
	if r.LocationName != "" {
		return r.LocationName
	}
	return r.AILocationName
}

// Frame is one still image sampled from a reel's video. Frames are created
// in a batch after sampling, are immutable, and are removed only by cascading
// deletion of their owning Reel.
type Frame struct {
	ShortCode string  `json:"short_code"`
	Path      string  `json:"path"`
	Timestamp float64 `json:"timestamp"` // seconds from video start, 2-decimal precision
}

// ReelSummary is the response shape returned by the submit endpoint.
type ReelSummary struct {
	ShortCode      string `json:"short_code"`
	Author         string `json:"author"`
	LocationName   string `json:"location_name,omitempty"`
	CaptionSnippet string `json:"caption_snippet,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	VideoPath      string `json:"video_local_path,omitempty"`
	Processed      bool   `json:"processed"`
}

// Summary shapes the record for the API response. The caption snippet is
// truncated to 200 characters, not bytes, so multi-byte scripts such as
// Malayalam are never cut mid-rune.
func (r *Reel) Summary() *ReelSummary {
	snippet := r.RawCaption
	if runes := []rune(snippet); len(runes) > 200 {
		snippet = string(runes[:200])
	}
	return &ReelSummary{
		ShortCode:      r.ShortCode,
		Author:         r.AuthorHandle,
		LocationName:   r.BestLocationName(),
		CaptionSnippet: snippet,
		Thumbnail:      r.ThumbnailURL,
		VideoPath:      r.VideoPath,
		Processed:      r.IsProcessed,
	}
}
