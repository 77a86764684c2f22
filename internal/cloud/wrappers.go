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

package cloud

import (
	"context"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// QuotaAwareGenerativeAIModel wraps a generative model with a client-side
// rate limiter so bursts of analysis requests are smoothed out before they
// reach the per-minute quota. The wrapper never retries: callers get the
// outcome of the single attempt and decide for themselves what a failure
// means.
type QuotaAwareGenerativeAIModel struct {
	ModelName                string
	Models                   *genai.Models
	GenerateConfig           *genai.GenerateContentConfig
	limiter                  *rate.Limiter
	MaxRequestsPerMinute     int
	AbsoluteMaxExecutionTime int
}

// NewQuotaAwareModel creates a wrapper allowing maxRequestsPerMinute calls,
// evenly spaced, with a burst of one.
func NewQuotaAwareModel(models *genai.Models, modelName string, config *genai.GenerateContentConfig, maxRequestsPerMinute int) *QuotaAwareGenerativeAIModel {
	if maxRequestsPerMinute <= 0 {
		maxRequestsPerMinute = 1
	}
	out := &QuotaAwareGenerativeAIModel{
		ModelName:            modelName,
		Models:               models,
		GenerateConfig:       config,
		MaxRequestsPerMinute: maxRequestsPerMinute,
		limiter:              rate.NewLimiter(rate.Limit(float64(maxRequestsPerMinute)/60.0), 1),
	}
	return out
}

// GenerateContent blocks until the limiter grants a slot (or ctx is
// canceled) and then issues exactly one generation request.
func (w *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return w.Models.GenerateContent(ctx, w.ModelName, contents, w.GenerateConfig)
}
