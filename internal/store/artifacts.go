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
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactLayout maps a shortcode to the on-disk locations of its derived
// files. Everything lives under a single media root:
//
//	<root>/<shortcode>/video.<ext>
//	<root>/<shortcode>/audio.mp3
//	<root>/<shortcode>/frames/frame_NNNN.jpg
type ArtifactLayout struct {
	Root string
}

func NewArtifactLayout(root string) *ArtifactLayout {
	return &ArtifactLayout{Root: root}
}

// ReelDir returns the directory for one reel's artifacts, creating it if
// needed.
func (l *ArtifactLayout) ReelDir(shortCode string) (string, error) {
	dir := filepath.Join(l.Root, shortCode)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory for %s: %w", shortCode, err)
	}
	return dir, nil
}

// VideoPath returns the video artifact path for the sniffed extension.
func (l *ArtifactLayout) VideoPath(shortCode string, extension string) string {
	return filepath.Join(l.Root, shortCode, "video."+extension)
}

func (l *ArtifactLayout) AudioPath(shortCode string) string {
	return filepath.Join(l.Root, shortCode, "audio.mp3")
}

// FramesDir returns the frame output directory, creating it if needed.
func (l *ArtifactLayout) FramesDir(shortCode string) (string, error) {
	dir := filepath.Join(l.Root, shortCode, "frames")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating frames directory for %s: %w", shortCode, err)
	}
	return dir, nil
}
