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
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/cor"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/store"
)

// VideoDownloader fetches the raw video bytes from the provider's CDN URL
// and stores them as the record's video artifact. The fetch is soft-fail:
// the metadata record survives with no video, and the later stages that
// need one are skipped.
type VideoDownloader struct {
	cor.BaseCommand
	client    *http.Client
	layout    *store.ArtifactLayout
	reelStore store.ReelStore
	archiver  store.Archiver
}

func NewVideoDownloader(
	name string,
	client *http.Client,
	layout *store.ArtifactLayout,
	reelStore store.ReelStore,
	archiver store.Archiver) *VideoDownloader {
	out := &VideoDownloader{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		layout:      layout,
		reelStore:   reelStore,
		archiver:    archiver,
	}
	out.InputParamName = CdnURLKey
	return out
}

// IsExecutable requires a record and a CDN URL; a scrape that returned no
// video URL skips the download entirely.
func (t *VideoDownloader) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil &&
		context.Get(ReelKey) != nil &&
		context.Get(CdnURLKey) != nil
}

func (t *VideoDownloader) Execute(context cor.Context) {
	ctx := context.GetContext()
	reel := context.Get(ReelKey).(*model.Reel)
	cdnURL := context.Get(CdnURLKey).(string)
	statuses := context.Get(StageStatusKey).(model.StageStatus)

	localPath, err := t.download(ctx, reel.ShortCode, cdnURL)
	if err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		slog.WarnContext(ctx, "video download failed", "shortcode", reel.ShortCode, "error", err)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrDownloadFailed, err))
		return
	}

	if err := t.reelStore.SetVideoPath(ctx, reel.ShortCode, localPath); err != nil {
		t.GetErrorCounter().Add(ctx, 1)
		statuses.Record(t.GetName(), fmt.Errorf("%w: %v", model.ErrDownloadFailed, err))
		return
	}
	reel.VideoPath = localPath
	t.archiver.Archive(ctx, reel.ShortCode, localPath)

	t.GetSuccessCounter().Add(ctx, 1)
	context.Add(t.GetOutputParam(), localPath)
}

// download streams the CDN response to disk, sniffing the container format
// from the first bytes to pick the file extension.
func (t *VideoDownloader) download(ctx context.Context, shortCode string, cdnURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cdnURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cdn returned status %d", resp.StatusCode)
	}

	head := make([]byte, 261)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head = head[:n]

	extension := "mp4"
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		extension = kind.Extension
	}

	if _, err := t.layout.ReelDir(shortCode); err != nil {
		return "", err
	}
	localPath := t.layout.VideoPath(shortCode, extension)
	file, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(head); err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", err
	}
	return localPath, nil
}
