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

package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "reels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestCreateAndGet verifies the full record round trip, including the
// nullable publish timestamp and the JSON-encoded comment list.
func TestCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	postedAt := time.Date(2024, 11, 5, 14, 30, 0, 0, time.UTC)
	reel := &model.Reel{
		ShortCode:    "ABC123",
		InstagramID:  "3001",
		OriginalURL:  "https://www.instagram.com/reel/ABC123/",
		RawCaption:   "Sunset at Varkala",
		AuthorHandle: "keralatravels",
		ThumbnailURL: "https://cdn.example.com/thumb.jpg",
		PostedAt:     &postedAt,
		ViewCount:    120345,
		LikeCount:    9876,
		LocationName: "Varkala",
	}
	require.NoError(t, s.Create(ctx, reel))

	got, err := s.GetByShortCode(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "keralatravels", got.AuthorHandle)
	assert.Equal(t, int64(120345), got.ViewCount)
	require.NotNil(t, got.PostedAt)
	assert.True(t, got.PostedAt.Equal(postedAt))
	assert.False(t, got.IsProcessed)
	assert.Empty(t, got.Comments)
	assert.False(t, got.CreatedAt.IsZero())
}

// TestGetMissing verifies the (nil, nil) contract for unknown shortcodes.
func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetByShortCode(context.Background(), "NOPE")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

// TestDuplicateCreate verifies the shortcode is a unique key.
func TestDuplicateCreate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.Reel{ShortCode: "DUP"}))
	assert.Error(t, s.Create(ctx, &model.Reel{ShortCode: "DUP"}))
}

// TestFieldUpdates verifies the stage-scoped mutators.
func TestFieldUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.Reel{ShortCode: "ABC123"}))

	require.NoError(t, s.SetVideoPath(ctx, "ABC123", "/media/ABC123/video.mp4"))
	require.NoError(t, s.SetAudioPath(ctx, "ABC123", "/media/ABC123/audio.mp3"))
	require.NoError(t, s.SetComments(ctx, "ABC123", []string{"nice", "adipoli"}))

	got, err := s.GetByShortCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "/media/ABC123/video.mp4", got.VideoPath)
	assert.Equal(t, "/media/ABC123/audio.mp3", got.AudioPath)
	assert.Equal(t, []string{"nice", "adipoli"}, got.Comments)

	// Updating a missing record must fail loudly.
	assert.Error(t, s.SetVideoPath(ctx, "MISSING", "/tmp/x"))
}

// TestSetAnalysis verifies the derived fields and the processed flag are
// written together.
func TestSetAnalysis(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.Reel{ShortCode: "ABC123"}))
	require.NoError(t, s.SetAnalysis(ctx, "ABC123", &model.ReelAnalysis{
		Transcript: "t",
		Location:   "Munnar",
		District:   "Idukki",
		Summary:    "s",
	}))

	got, err := s.GetByShortCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)
	assert.Equal(t, "t", got.TranscriptText)
	assert.Equal(t, "Munnar", got.AILocationName)
	assert.Equal(t, "Idukki", got.AIDistrict)
	assert.Equal(t, "s", got.AISummary)
}

// TestFramesRoundTripAndCascade verifies frame ordering and the delete
// cascade from the owning record.
func TestFramesRoundTripAndCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.Reel{ShortCode: "ABC123"}))

	frames := []model.Frame{
		{ShortCode: "ABC123", Path: "frame_0000.jpg", Timestamp: 0},
		{ShortCode: "ABC123", Path: "frame_0001.jpg", Timestamp: 2.0},
		{ShortCode: "ABC123", Path: "frame_0002.jpg", Timestamp: 4.0},
	}
	require.NoError(t, s.ReplaceFrames(ctx, "ABC123", frames))

	got, err := s.ListFrames(ctx, "ABC123")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "frame_0001.jpg", got[1].Path)
	assert.Equal(t, 2.0, got[1].Timestamp)

	require.NoError(t, s.Delete(ctx, "ABC123"))

	got, err = s.ListFrames(ctx, "ABC123")
	require.NoError(t, err)
	assert.Empty(t, got)

	reel, err := s.GetByShortCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Nil(t, reel)
}

// TestList verifies newest-first ordering.
func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := &model.Reel{ShortCode: "OLD", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &model.Reel{ShortCode: "NEW", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.Create(ctx, older))
	require.NoError(t, s.Create(ctx, newer))

	reels, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, reels, 2)
	assert.Equal(t, "NEW", reels[0].ShortCode)
}
