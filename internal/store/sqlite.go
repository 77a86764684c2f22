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

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS reels (
	short_code       TEXT PRIMARY KEY,
	instagram_id     TEXT NOT NULL DEFAULT '',
	original_url     TEXT NOT NULL DEFAULT '',
	raw_caption      TEXT NOT NULL DEFAULT '',
	author_handle    TEXT NOT NULL DEFAULT '',
	thumbnail_url    TEXT NOT NULL DEFAULT '',
	posted_at        TEXT,
	view_count       INTEGER NOT NULL DEFAULT 0,
	like_count       INTEGER NOT NULL DEFAULT 0,
	location_name    TEXT NOT NULL DEFAULT '',
	comments         TEXT NOT NULL DEFAULT '[]',
	transcript_text  TEXT NOT NULL DEFAULT '',
	ai_location_name TEXT NOT NULL DEFAULT '',
	ai_district      TEXT NOT NULL DEFAULT '',
	ai_summary       TEXT NOT NULL DEFAULT '',
	is_processed     INTEGER NOT NULL DEFAULT 0,
	video_path       TEXT NOT NULL DEFAULT '',
	audio_path       TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reel_frames (
	short_code TEXT NOT NULL REFERENCES reels(short_code) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	path       TEXT NOT NULL,
	timestamp  REAL NOT NULL,
	PRIMARY KEY (short_code, seq)
);
`

// SQLiteStore is the production ReelStore, backed by a single SQLite file.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite creates or opens the database, applies the pragmas the store
// relies on (WAL for concurrent readers, foreign keys for frame cascade),
// and migrates the schema.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &SQLiteStore{conn: conn, path: dbPath}, nil
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

const reelColumns = `short_code, instagram_id, original_url, raw_caption, author_handle,
	thumbnail_url, posted_at, view_count, like_count, location_name, comments,
	transcript_text, ai_location_name, ai_district, ai_summary, is_processed,
	video_path, audio_path, created_at`

func (s *SQLiteStore) GetByShortCode(ctx context.Context, shortCode string) (*model.Reel, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+reelColumns+` FROM reels WHERE short_code = ?`, shortCode)
	reel, err := scanReel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return reel, err
}

func (s *SQLiteStore) Create(ctx context.Context, reel *model.Reel) error {
	comments, err := json.Marshal(reel.Comments)
	if err != nil {
		return fmt.Errorf("encoding comments: %w", err)
	}
	if reel.Comments == nil {
		comments = []byte("[]")
	}
	var postedAt any
	if reel.PostedAt != nil {
		postedAt = reel.PostedAt.UTC().Format(time.RFC3339)
	}
	if reel.CreatedAt.IsZero() {
		reel.CreatedAt = time.Now().UTC()
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO reels (`+reelColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		reel.ShortCode, reel.InstagramID, reel.OriginalURL, reel.RawCaption, reel.AuthorHandle,
		reel.ThumbnailURL, postedAt, reel.ViewCount, reel.LikeCount, reel.LocationName, string(comments),
		reel.TranscriptText, reel.AILocationName, reel.AIDistrict, reel.AISummary, boolToInt(reel.IsProcessed),
		reel.VideoPath, reel.AudioPath, reel.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting reel %s: %w", reel.ShortCode, err)
	}
	return nil
}

func (s *SQLiteStore) SetVideoPath(ctx context.Context, shortCode string, path string) error {
	return s.updateField(ctx, shortCode, "video_path", path)
}

func (s *SQLiteStore) SetAudioPath(ctx context.Context, shortCode string, path string) error {
	return s.updateField(ctx, shortCode, "audio_path", path)
}

func (s *SQLiteStore) SetComments(ctx context.Context, shortCode string, comments []string) error {
	if comments == nil {
		comments = []string{}
	}
	encoded, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("encoding comments: %w", err)
	}
	return s.updateField(ctx, shortCode, "comments", string(encoded))
}

// SetAnalysis writes the four derived fields and the processed flag as one
// statement so a crash can never leave a half-analyzed record.
func (s *SQLiteStore) SetAnalysis(ctx context.Context, shortCode string, analysis *model.ReelAnalysis) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE reels SET transcript_text = ?, ai_location_name = ?, ai_district = ?, ai_summary = ?, is_processed = 1
		 WHERE short_code = ?`,
		analysis.Transcript, analysis.Location, analysis.District, analysis.Summary, shortCode)
	if err != nil {
		return fmt.Errorf("updating analysis for %s: %w", shortCode, err)
	}
	return requireRow(res, shortCode)
}

func (s *SQLiteStore) ReplaceFrames(ctx context.Context, shortCode string, frames []model.Frame) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reel_frames WHERE short_code = ?`, shortCode); err != nil {
		return fmt.Errorf("clearing frames for %s: %w", shortCode, err)
	}
	for i, frame := range frames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reel_frames (short_code, seq, path, timestamp) VALUES (?, ?, ?, ?)`,
			shortCode, i, frame.Path, frame.Timestamp); err != nil {
			return fmt.Errorf("inserting frame %d for %s: %w", i, shortCode, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListFrames(ctx context.Context, shortCode string) ([]model.Frame, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT path, timestamp FROM reel_frames WHERE short_code = ? ORDER BY seq`, shortCode)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var frames []model.Frame
	for rows.Next() {
		frame := model.Frame{ShortCode: shortCode}
		if err := rows.Scan(&frame.Path, &frame.Timestamp); err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context) ([]*model.Reel, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+reelColumns+` FROM reels ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reels []*model.Reel
	for rows.Next() {
		reel, err := scanReel(rows)
		if err != nil {
			return nil, err
		}
		reels = append(reels, reel)
	}
	return reels, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, shortCode string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM reels WHERE short_code = ?`, shortCode)
	return err
}

func (s *SQLiteStore) updateField(ctx context.Context, shortCode string, column string, value string) error {
	res, err := s.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE reels SET %s = ? WHERE short_code = ?`, column), value, shortCode)
	if err != nil {
		return fmt.Errorf("updating %s for %s: %w", column, shortCode, err)
	}
	return requireRow(res, shortCode)
}

func requireRow(res sql.Result, shortCode string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no record exists for shortcode %s", shortCode)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReel(row rowScanner) (*model.Reel, error) {
	var (
		reel      model.Reel
		postedAt  sql.NullString
		comments  string
		processed int
		createdAt string
	)
	err := row.Scan(
		&reel.ShortCode, &reel.InstagramID, &reel.OriginalURL, &reel.RawCaption, &reel.AuthorHandle,
		&reel.ThumbnailURL, &postedAt, &reel.ViewCount, &reel.LikeCount, &reel.LocationName, &comments,
		&reel.TranscriptText, &reel.AILocationName, &reel.AIDistrict, &reel.AISummary, &processed,
		&reel.VideoPath, &reel.AudioPath, &createdAt)
	if err != nil {
		return nil, err
	}
	if postedAt.Valid {
		if t, err := time.Parse(time.RFC3339, postedAt.String); err == nil {
			reel.PostedAt = &t
		}
	}
	if err := json.Unmarshal([]byte(comments), &reel.Comments); err != nil {
		return nil, fmt.Errorf("decoding comments for %s: %w", reel.ShortCode, err)
	}
	reel.IsProcessed = processed != 0
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		reel.CreatedAt = t
	}
	return &reel, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
