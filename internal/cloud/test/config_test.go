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

package cloud_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-reel-scout/internal/cloud"
)

const baseToml = `
[application]
name = "reel-scout"
target_language = "Malayalam"
max_analysis_frames = 6

[video]
sampling_interval_seconds = 2.0
download_timeout_in_seconds = 120

[agent_models.reel-analysis]
model = "gemini-2.5-flash"
rate_limit = 10
`

const overlayToml = `
[application]
name = "reel-scout-test"

[video]
download_timeout_in_seconds = 5

[agent_models.reel-analysis]
model = "gemini-2.5-flash"
rate_limit = 60
`

// TestLoadConfigOverlayPrecedence verifies the runtime overlay file wins
// over the base file while untouched base values survive.
func TestLoadConfigOverlayPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseToml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(overlayToml), 0o644))

	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "test")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	// Overlay overrides.
	assert.Equal(t, "reel-scout-test", config.Application.Name)
	assert.Equal(t, 5, config.Video.DownloadTimeoutInSeconds)
	assert.Equal(t, 60, config.AgentModels["reel-analysis"].RateLimit)

	// Base values untouched by the overlay survive.
	assert.Equal(t, "Malayalam", config.Application.TargetLanguage)
	assert.Equal(t, 6, config.Application.MaxAnalysisFrames)
	assert.Equal(t, 2.0, config.Video.SamplingIntervalSeconds)
	assert.Equal(t, "gemini-2.5-flash", config.AgentModels["reel-analysis"].Model)
}

// TestLoadConfigDefaultRuntime verifies a missing runtime variable falls
// back to the test overlay name.
func TestLoadConfigDefaultRuntime(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseToml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(overlayToml), 0o644))

	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	assert.Equal(t, "reel-scout-test", config.Application.Name)
}
