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

// Package test provides shared helpers and canned provider payloads for the
// test suite.
package test

import (
	"testing"
)

// HandleErr fails the test on a non-nil error. Convenience to cut
// boilerplate in test bodies.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// GetScrapeItemJSON returns a provider dataset payload for one post with a
// video URL. The cdnURL placeholder lets tests point the video fetch at a
// local server.
func GetScrapeItemJSON(shortCode string, cdnURL string) string {
	return `[{
  "id": "3001234567890123456",
  "shortCode": "` + shortCode + `",
  "url": "https://www.instagram.com/reel/` + shortCode + `/",
  "caption": "Sunset at Varkala cliff #kerala",
  "ownerUsername": "keralatravels",
  "displayUrl": "https://cdn.example.com/thumb.jpg",
  "timestamp": "2024-11-05T14:30:00.000Z",
  "videoViewCount": 120345,
  "likesCount": 9876,
  "videoUrl": "` + cdnURL + `",
  "location": {"name": "Varkala"}
}]`
}

// GetScrapeItemNoVideoJSON returns a dataset payload for a post the
// provider could not produce a video URL for.
func GetScrapeItemNoVideoJSON(shortCode string, caption string) string {
	return `[{
  "id": "3009876543210987654",
  "shortCode": "` + shortCode + `",
  "url": "https://www.instagram.com/reel/` + shortCode + `/",
  "caption": "` + caption + `",
  "ownerUsername": "keralatravels",
  "displayUrl": "https://cdn.example.com/thumb.jpg",
  "timestamp": "2024-11-05T14:30:00.000Z",
  "videoViewCount": 51,
  "likesCount": 7
}]`
}

// GetAnalysisReplyJSON returns a well-formed analyzer reply, optionally
// wrapped in code fences the way the live model tends to answer.
func GetAnalysisReplyJSON(fenced bool) string {
	body := `{"transcript":"t","location":"Munnar","district":"Idukki","summary":"s"}`
	if fenced {
		return "```json\n" + body + "\n```"
	}
	return body
}
