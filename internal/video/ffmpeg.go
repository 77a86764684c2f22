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

package video

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// defaultFrameRate is used when the container reports a non-positive rate;
// some muxers write 0 for avg_frame_rate.
const defaultFrameRate = 30.0

// FFmpegEngine shells out to ffmpeg and ffprobe.
type FFmpegEngine struct {
	FFmpegPath  string
	FFprobePath string
}

func NewFFmpegEngine(ffmpegPath string, ffprobePath string) *FFmpegEngine {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegEngine{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// frameRate probes the average frame rate of the first video stream.
// ffprobe reports it as a ratio like "30000/1001".
func (e *FFmpegEngine) frameRate(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", videoPath, err)
	}
	return parseFrameRate(strings.TrimSpace(string(out))), nil
}

func parseFrameRate(ratio string) float64 {
	num, den := ratio, "1"
	if idx := strings.IndexByte(ratio, '/'); idx >= 0 {
		num, den = ratio[:idx], ratio[idx+1:]
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return defaultFrameRate
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return defaultFrameRate
	}
	fps := n / d
	if fps <= 0 {
		return defaultFrameRate
	}
	return fps
}

// sampleStride converts a sampling interval into a decoded-frame stride,
// round(fps × interval), never below one frame.
func sampleStride(fps float64, intervalSeconds float64) int {
	stride := int(math.Round(fps * intervalSeconds))
	if stride < 1 {
		stride = 1
	}
	return stride
}

// captureTimestamp recovers when the i-th emitted frame was captured: it was
// the (i×stride)-th decoded frame, so i×stride/fps seconds in, rounded to
// 2-decimal precision.
func captureTimestamp(i int, stride int, fps float64) float64 {
	return math.Round(float64(i*stride)/fps*100) / 100
}

// SampleFrames emits every stride-th frame, numbering output files from zero
// so the frame index (and with it the capture timestamp) can be recovered
// from the filename. A source ffprobe cannot open yields an empty slice.
func (e *FFmpegEngine) SampleFrames(ctx context.Context, videoPath string, outputDir string, intervalSeconds float64) ([]SampledFrame, error) {
	fps, err := e.frameRate(ctx, videoPath)
	if err != nil {
		slog.WarnContext(ctx, "source video could not be probed", "video", videoPath, "error", err)
		return []SampledFrame{}, nil
	}

	stride := sampleStride(fps, intervalSeconds)

	pattern := filepath.Join(outputDir, "frame_%04d.jpg")
	cmd := exec.CommandContext(ctx, e.FFmpegPath,
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='not(mod(n,%d))'", stride),
		"-vsync", "vfr",
		"-start_number", "0",
		"-y",
		pattern)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction failed: %w: %s", err, truncate(string(out)))
	}

	paths, err := filepath.Glob(filepath.Join(outputDir, "frame_*.jpg"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	frames := make([]SampledFrame, 0, len(paths))
	for i, path := range paths {
		frames = append(frames, SampledFrame{Path: path, Timestamp: captureTimestamp(i, stride, fps)})
	}
	return frames, nil
}

// ExtractAudio drops the video stream and transcodes the audio to MP3.
func (e *FFmpegEngine) ExtractAudio(ctx context.Context, videoPath string, outputPath string) error {
	cmd := exec.CommandContext(ctx, e.FFmpegPath,
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-y",
		outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w: %s", err, truncate(string(out)))
	}
	return nil
}

func truncate(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
