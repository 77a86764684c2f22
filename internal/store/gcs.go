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
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// Archiver mirrors local artifacts to durable storage. The pipeline always
// works on local files (the decoder needs them on disk); archiving is an
// after-the-fact copy and its failure never degrades the record.
type Archiver interface {
	Archive(ctx context.Context, shortCode string, localPath string)
}

// GCSArchiver copies artifacts into a Cloud Storage bucket under
// reels/<shortcode>/<filename>.
type GCSArchiver struct {
	client *storage.Client
	bucket string
}

func NewGCSArchiver(client *storage.Client, bucket string) *GCSArchiver {
	return &GCSArchiver{client: client, bucket: bucket}
}

func (a *GCSArchiver) Archive(ctx context.Context, shortCode string, localPath string) {
	if err := a.archive(ctx, shortCode, localPath); err != nil {
		slog.WarnContext(ctx, "failed to archive artifact", "shortcode", shortCode, "path", localPath, "error", err)
	}
}

func (a *GCSArchiver) archive(ctx context.Context, shortCode string, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	object := fmt.Sprintf("reels/%s/%s", shortCode, filepath.Base(localPath))
	writer := a.client.Bucket(a.bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(writer, file); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// NoopArchiver is used when no archive bucket is configured.
type NoopArchiver struct{}

func (NoopArchiver) Archive(context.Context, string, string) {}
