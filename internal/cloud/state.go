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
	"fmt"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ServiceClients holds the shared, long-lived clients for Google services.
// One instance is created at startup and handed to the workflow factories.
type ServiceClients struct {
	GenAIClient   *genai.Client
	StorageClient *storage.Client // nil when no archive bucket is configured.
	AgentModels   map[string]*QuotaAwareGenerativeAIModel
}

// NewCloudServiceClients creates the genai client, one quota-aware model per
// configured agent, and (when an archive bucket is set) a Cloud Storage
// client.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	out := &ServiceClients{
		AgentModels: make(map[string]*QuotaAwareGenerativeAIModel),
	}

	apiKey := os.Getenv(EnvGeminiAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %s is not set", EnvGeminiAPIKey)
	}

	genAIClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create the generative AI client: %w", err)
	}
	out.GenAIClient = genAIClient

	for name, modelConfig := range config.AgentModels {
		generateConfig := &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](modelConfig.Temperature),
			TopP:             genai.Ptr[float32](modelConfig.TopP),
			TopK:             genai.Ptr[float32](modelConfig.TopK),
			MaxOutputTokens:  modelConfig.MaxTokens,
			ResponseMIMEType: modelConfig.OutputFormat,
			SafetySettings:   DefaultSafetySettings,
		}
		if modelConfig.SystemInstructions != "" {
			generateConfig.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: modelConfig.SystemInstructions}},
			}
		}
		out.AgentModels[name] = NewQuotaAwareModel(
			genAIClient.Models,
			modelConfig.Model,
			generateConfig,
			modelConfig.RateLimit)
	}

	if config.Storage.ArchiveBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create the storage client: %w", err)
		}
		out.StorageClient = storageClient
	}

	return out, nil
}

// Close releases the storage client. The genai client holds no connection
// state that needs explicit shutdown.
func (s *ServiceClients) Close() error {
	if s.StorageClient != nil {
		return s.StorageClient.Close()
	}
	return nil
}
