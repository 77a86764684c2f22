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

package instagram_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-reel-scout/internal/instagram"
)

func writeSessionFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	session := instagram.Session{
		UserID:    "42",
		SessionID: "session-token",
		CSRFToken: "csrf",
		UserAgent: "test-agent",
	}
	data, err := json.Marshal(session)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// TestMediaPKFromShortCode pins the base-64 decoding of shortcodes into
// media primary keys.
func TestMediaPKFromShortCode(t *testing.T) {
	// "B" is index 1, so "BB" = 1*64 + 1.
	pk, err := instagram.MediaPKFromShortCode("BB")
	assert.NoError(t, err)
	assert.Equal(t, int64(65), pk)

	_, err = instagram.MediaPKFromShortCode("")
	assert.Error(t, err)

	_, err = instagram.MediaPKFromShortCode("has space")
	assert.Error(t, err)

	// Eleven-character codes exist for old posts; leading zero digits keep
	// this one in range.
	pk, err = instagram.MediaPKFromShortCode("AAAAAAAAAAB")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), pk)

	// The largest eleven-character code exceeds int64 and must error rather
	// than wrap around to a bogus PK.
	_, err = instagram.MediaPKFromShortCode(strings.Repeat("_", 11))
	assert.Error(t, err)
}

// TestFetchCommentsRankingAndFlattening verifies that parents are sorted
// by like count before reply expansion and that replies follow their
// parent in the flattened output.
func TestFetchCommentsRankingAndFlattening(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/child_comments/"):
			assert.Contains(t, r.URL.Path, "/comments/2/")
			_, _ = fmt.Fprint(w, `{"child_comments":[{"pk":21,"text":" reply one "},{"pk":22,"text":"reply two"}],"status":"ok"}`)
		case strings.Contains(r.URL.Path, "/comments/"):
			assert.Equal(t, "session-token", extractSessionID(r))
			_, _ = fmt.Fprint(w, `{"comments":[
				{"pk":1,"text":"quiet","comment_like_count":1,"child_comment_count":0},
				{"pk":2,"text":"popular","comment_like_count":50,"child_comment_count":2},
				{"pk":3,"text":"","comment_like_count":10,"child_comment_count":0}
			],"status":"ok"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := instagram.NewClient(instagram.NewFileSessionStore(writeSessionFile(t)), server.URL, server.Client())

	comments, err := client.FetchComments(context.Background(), "BB", 100)
	assert.NoError(t, err)
	// Most-liked parent first, its replies trimmed and inline after it;
	// empty texts dropped.
	assert.Equal(t, []string{"popular", "reply one", "reply two", "quiet"}, comments)
}

// TestFetchCommentsCap verifies the collector never returns more than the
// cap and stops fetching once it is reached.
func TestFetchCommentsCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/child_comments/") {
			replies := make([]string, 0, 20)
			for i := 0; i < 20; i++ {
				replies = append(replies, fmt.Sprintf(`{"pk":%d,"text":"reply %d"}`, 100+i, i))
			}
			_, _ = fmt.Fprintf(w, `{"child_comments":[%s],"status":"ok"}`, strings.Join(replies, ","))
			return
		}
		_, _ = fmt.Fprint(w, `{"comments":[{"pk":1,"text":"parent","comment_like_count":9,"child_comment_count":20}],"status":"ok"}`)
	}))
	defer server.Close()

	client := instagram.NewClient(instagram.NewFileSessionStore(writeSessionFile(t)), server.URL, server.Client())

	comments, err := client.FetchComments(context.Background(), "BB", 5)
	assert.NoError(t, err)
	assert.Len(t, comments, 5)
	assert.Equal(t, "parent", comments[0])
}

// TestFetchCommentsReplyFailureSwallowed verifies a failed reply fetch
// skips that thread without failing the collection.
func TestFetchCommentsReplyFailureSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/child_comments/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = fmt.Fprint(w, `{"comments":[
			{"pk":1,"text":"broken thread","comment_like_count":9,"child_comment_count":3},
			{"pk":2,"text":"fine","comment_like_count":1,"child_comment_count":0}
		],"status":"ok"}`)
	}))
	defer server.Close()

	client := instagram.NewClient(instagram.NewFileSessionStore(writeSessionFile(t)), server.URL, server.Client())

	comments, err := client.FetchComments(context.Background(), "BB", 100)
	assert.NoError(t, err)
	assert.Equal(t, []string{"broken thread", "fine"}, comments)
}

// TestFetchCommentsNoSession verifies that a missing session file surfaces
// as an error (the pipeline degrades it to an empty comment list).
func TestFetchCommentsNoSession(t *testing.T) {
	store := instagram.NewFileSessionStore(filepath.Join(t.TempDir(), "missing.json"))
	client := instagram.NewClient(store, "http://127.0.0.1:0", http.DefaultClient)

	_, err := client.FetchComments(context.Background(), "BB", 100)
	assert.Error(t, err)
}

func extractSessionID(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("Cookie"), ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "sessionid=") {
			return strings.TrimPrefix(part, "sessionid=")
		}
	}
	return ""
}
