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
	"regexp"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/cor"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
)

// shortCodePattern matches the identifier segment of a post URL: the path
// segment after /reel/ or /p/, terminated by a slash, query, or fragment.
var shortCodePattern = regexp.MustCompile(`/(reel|p)/([^/?#&]+)`)

// ExtractShortCode pulls the shortcode out of a post URL. Returns an empty
// string when the URL carries no recognizable segment.
func ExtractShortCode(url string) string {
	match := shortCodePattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[2]
}

// CanonicalPostURL rebuilds the submitted reference into its canonical form,
// keeping the original /reel/ or /p/ path segment: old /p/ posts do not
// resolve under /reel/. Returns an empty string for unrecognizable input.
func CanonicalPostURL(url string) string {
	match := shortCodePattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return fmt.Sprintf("https://www.instagram.com/%s/%s/", match[1], match[2])
}

// ShortCodeResolver turns the submitted URL into the content identifier the
// rest of the pipeline is keyed by. Resolution failure is a hard failure:
// nothing downstream can run without an identifier.
type ShortCodeResolver struct {
	cor.BaseCommand
}

func NewShortCodeResolver(name string) *ShortCodeResolver {
	return &ShortCodeResolver{BaseCommand: *cor.NewBaseCommand(name)}
}

func (t *ShortCodeResolver) Execute(context cor.Context) {
	url := context.Get(t.GetInputParam()).(string)

	shortCode := ExtractShortCode(url)
	if shortCode == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("%w: no shortcode in %q", model.ErrInvalidReference, url))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(PostURLKey, CanonicalPostURL(url))
	context.Add(t.GetOutputParam(), shortCode)
}
