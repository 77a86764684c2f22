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

package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
)

const DefaultBaseURL = "https://i.instagram.com/api/v1"

// replyExpansionLimit bounds reply fan-out: only the most popular parents
// get their reply threads fetched.
const replyExpansionLimit = 10

// shortCodeAlphabet is the base-64 alphabet used to encode media primary
// keys into URL shortcodes.
const shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// CommentProvider returns an ordered, flattened list of comment texts for a
// post, bounded by limit.
type CommentProvider interface {
	FetchComments(ctx context.Context, shortCode string, limit int) ([]string, error)
}

// comment is the subset of the provider's comment payload the collector
// cares about.
type comment struct {
	PK                json.Number `json:"pk"`
	Text              string      `json:"text"`
	LikeCount         int64       `json:"comment_like_count"`
	ChildCommentCount int         `json:"child_comment_count"`
}

type commentListResponse struct {
	Comments []comment `json:"comments"`
	Status   string    `json:"status"`
}

type childCommentListResponse struct {
	ChildComments []comment `json:"child_comments"`
	Status        string    `json:"status"`
}

// Client fetches comments through the private web API using a stored
// session credential.
type Client struct {
	store   SessionStore
	baseURL string
	http    *http.Client
}

// NewClient creates a comment client. An empty baseURL selects the public
// endpoint; tests point it at a local server.
func NewClient(store SessionStore, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{store: store, baseURL: baseURL, http: httpClient}
}

// MediaPKFromShortCode decodes a URL shortcode into the numeric media
// primary key the comment endpoints are addressed by.
func MediaPKFromShortCode(shortCode string) (int64, error) {
	if shortCode == "" {
		return 0, fmt.Errorf("empty shortcode")
	}
	var pk int64
	for _, c := range shortCode {
		idx := strings.IndexRune(shortCodeAlphabet, c)
		if idx < 0 {
			return 0, fmt.Errorf("shortcode %q contains invalid character %q", shortCode, c)
		}
		if pk > (math.MaxInt64-int64(idx))/64 {
			return 0, fmt.Errorf("shortcode %q decodes beyond int64 range", shortCode)
		}
		pk = pk*64 + int64(idx)
	}
	return pk, nil
}

// session returns a usable session, attempting one re-authentication when
// the stored session fails to load.
func (c *Client) session(ctx context.Context) (*Session, error) {
	session, err := c.store.Load(ctx)
	if err == nil {
		return session, nil
	}
	slog.WarnContext(ctx, "stored session unavailable, re-authenticating", "error", err)
	return c.store.Reauthenticate(ctx)
}

// FetchComments retrieves top-level comments for the post, ranks them by
// like count, expands the reply threads of the most popular parents, and
// returns the flattened text. The result never exceeds limit entries; once
// the limit is reached retrieval stops early. A failed reply fetch skips that
// thread only.
func (c *Client) FetchComments(ctx context.Context, shortCode string, limit int) ([]string, error) {
	session, err := c.session(ctx)
	if err != nil {
		return nil, fmt.Errorf("no authenticated session: %w", err)
	}

	mediaPK, err := MediaPKFromShortCode(shortCode)
	if err != nil {
		return nil, err
	}

	parents, err := c.listComments(ctx, session, mediaPK, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for media %d: %w", mediaPK, err)
	}

	sort.SliceStable(parents, func(i, j int) bool {
		return parents[i].LikeCount > parents[j].LikeCount
	})
	if len(parents) > replyExpansionLimit {
		parents = parents[:replyExpansionLimit]
	}

	out := make([]string, 0, limit)
	for _, parent := range parents {
		if len(out) >= limit {
			break
		}
		if text := strings.TrimSpace(parent.Text); text != "" {
			out = append(out, text)
		}
		if parent.ChildCommentCount == 0 || len(out) >= limit {
			continue
		}
		replies, err := c.listChildComments(ctx, session, mediaPK, parent.PK.String())
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch reply thread", "media_pk", mediaPK, "comment_pk", parent.PK, "error", err)
			continue
		}
		for _, reply := range replies {
			if len(out) >= limit {
				break
			}
			if text := strings.TrimSpace(reply.Text); text != "" {
				out = append(out, text)
			}
		}
	}
	return out, nil
}

func (c *Client) listComments(ctx context.Context, session *Session, mediaPK int64, amount int) ([]comment, error) {
	endpoint := fmt.Sprintf("%s/media/%d/comments/?can_support_threading=true&max_id=&count=%d", c.baseURL, mediaPK, amount)
	var resp commentListResponse
	if err := c.get(ctx, session, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

func (c *Client) listChildComments(ctx context.Context, session *Session, mediaPK int64, commentPK string) ([]comment, error) {
	endpoint := fmt.Sprintf("%s/media/%d/comments/%s/child_comments/?max_id=", c.baseURL, mediaPK, commentPK)
	var resp childCommentListResponse
	if err := c.get(ctx, session, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.ChildComments, nil
}

func (c *Client) get(ctx context.Context, session *Session, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if session.UserAgent != "" {
		req.Header.Set("User-Agent", session.UserAgent)
	}
	if session.CSRFToken != "" {
		req.Header.Set("X-CSRFToken", session.CSRFToken)
	}
	cookies := fmt.Sprintf("sessionid=%s", session.SessionID)
	for name, value := range session.Cookies {
		cookies += fmt.Sprintf("; %s=%s", name, value)
	}
	req.Header.Set("Cookie", cookies)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("session rejected with status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(payload))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
