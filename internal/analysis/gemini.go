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

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/template"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-reel-scout/internal/cloud"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/cor"
	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"google.golang.org/genai"
)

// uploadPollDelay is the fixed pause between file-state polls while the
// provider processes an uploaded audio file.
const uploadPollDelay = 2 * time.Second

// GeminiAnalyzer builds one multimodal request per reel: the templated
// prompt, the uploaded audio file (when present), and the selected frames
// as inline images.
type GeminiAnalyzer struct {
	client             *genai.Client
	generativeAIModel  *cloud.QuotaAwareGenerativeAIModel
	template           *template.Template
	targetLanguage     string
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
}

// NewGeminiAnalyzer parses the prompt template and wires the token
// counters. The template sees LANGUAGE, CAPTION, and EXAMPLE_JSON.
func NewGeminiAnalyzer(
	client *genai.Client,
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel,
	promptTemplate string,
	targetLanguage string) (*GeminiAnalyzer, error) {
	tmpl, err := template.New("reel-analysis").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis prompt template: %w", err)
	}
	out := &GeminiAnalyzer{
		client:            client,
		generativeAIModel: generativeAIModel,
		template:          tmpl,
		targetLanguage:    targetLanguage,
	}
	meter := otel.Meter(cor.MeterName)
	out.inputTokenCounter, _ = meter.Int64Counter("reel.analysis.gemini.token.input")
	out.outputTokenCounter, _ = meter.Int64Counter("reel.analysis.gemini.token.output")
	return out, nil
}

// GenerateParams builds the substitution map for the prompt template. The
// example analysis is serialized into the prompt so the model sees one
// complete well-formed output (few-shot prompting).
func (a *GeminiAnalyzer) GenerateParams(req *Request) map[string]interface{} {
	params := make(map[string]interface{})
	params["LANGUAGE"] = a.targetLanguage
	params["CAPTION"] = req.Caption
	exampleAnalysis, _ := json.Marshal(model.GetExampleAnalysis())
	params["EXAMPLE_JSON"] = string(exampleAnalysis)
	return params
}

// Generate issues exactly one request and returns the raw reply text. Audio
// preparation is best-effort: if the upload or provider-side processing
// fails, the request goes out without the audio part rather than failing.
func (a *GeminiAnalyzer) Generate(ctx context.Context, req *Request) (string, error) {
	var buffer bytes.Buffer
	if err := a.template.Execute(&buffer, a.GenerateParams(req)); err != nil {
		return "", fmt.Errorf("failed to execute analysis prompt template: %w", err)
	}

	parts := []*genai.Part{cloud.NewTextPart(buffer.String())}

	if req.AudioPath != "" {
		audioPart, err := a.prepareAudio(ctx, req.AudioPath)
		if err != nil {
			slog.WarnContext(ctx, "audio preparation failed, analyzing without audio", "audio", req.AudioPath, "error", err)
		} else {
			parts = append(parts, audioPart)
		}
	}

	for _, frame := range req.Frames {
		data, err := os.ReadFile(frame.Path)
		if err != nil {
			slog.WarnContext(ctx, "failed to read frame image, skipping", "frame", frame.Path, "error", err)
			continue
		}
		parts = append(parts, cloud.NewInlineDataPart(data, "image/jpeg"))
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	return cloud.GenerateMultiModalResponse(ctx, a.inputTokenCounter, a.outputTokenCounter, a.generativeAIModel, contents)
}

// prepareAudio uploads the MP3 to the provider's file service and polls
// with a fixed delay until the file is active. Cancellation of ctx stops
// the poll loop; there is no other deadline.
func (a *GeminiAnalyzer) prepareAudio(ctx context.Context, audioPath string) (*genai.Part, error) {
	file, err := a.client.Files.UploadFromPath(ctx, audioPath, &genai.UploadFileConfig{MIMEType: "audio/mpeg"})
	if err != nil {
		return nil, fmt.Errorf("audio upload failed: %w", err)
	}

	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(uploadPollDelay):
		}
		file, err = a.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to poll uploaded audio state: %w", err)
		}
	}
	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("provider failed to process uploaded audio %s", file.Name)
	}
	return cloud.NewFileDataPart(file.URI, "audio/mpeg"), nil
}
