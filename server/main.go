// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point for the reel scout backend server.
//
// The server exposes a small REST API: submit a reel URL and get back the
// stored (or freshly ingested) record summary, plus read-side endpoints for
// listing, inspecting, and administratively deleting records. Ingestion
// runs synchronously inside the submit request; the pipeline itself is
// instrumented with OpenTelemetry spans and counters.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-reel-scout/internal/core/model"
	"github.com/jaycherian/gcp-go-reel-scout/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware("reel-scout-server"))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		ReelRouter(apiV1)
	}

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 300 * time.Second, // ingestion runs inside the request
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed:", "error", err)
	}
	if state.reelStore != nil {
		_ = state.reelStore.Close()
	}

	log.Println("Server exiting")
}

// submitRequest is the body of POST /reels.
type submitRequest struct {
	URL string `json:"url" binding:"required"`
}

// ReelRouter sets up the reel endpoints:
//   - POST /reels: submit a URL; returns the record summary (cached or
//     freshly ingested).
//   - GET /reels: list all records.
//   - GET /reels/:short_code: full record detail.
//   - GET /reels/:short_code/frames: the record's frame artifacts.
//   - DELETE /reels/:short_code: administrative removal.
func ReelRouter(r *gin.RouterGroup) {
	reels := r.Group("/reels")
	{
		reels.POST("", func(c *gin.Context) {
			var req submitRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
				return
			}

			reel, statuses, err := state.reelService.GetOrProcess(c.Request.Context(), req.URL)
			if err != nil {
				status := http.StatusBadGateway
				if errors.Is(err, model.ErrInvalidReference) {
					status = http.StatusBadRequest
				}
				c.JSON(status, gin.H{"error": err.Error()})
				return
			}

			degraded := make([]string, 0, len(statuses))
			for stage := range statuses {
				degraded = append(degraded, stage)
			}
			c.JSON(http.StatusOK, gin.H{
				"reel":            reel.Summary(),
				"degraded_stages": degraded,
			})
		})

		reels.GET("", func(c *gin.Context) {
			out, err := state.reelService.List(c.Request.Context())
			if err != nil {
				log.Printf("Error listing reels: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		reels.GET("/:short_code", func(c *gin.Context) {
			reel, err := state.reelService.Get(c.Request.Context(), c.Param("short_code"))
			if err != nil {
				log.Printf("Error getting reel: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			if reel == nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, reel)
		})

		reels.GET("/:short_code/frames", func(c *gin.Context) {
			frames, err := state.reelService.Frames(c.Request.Context(), c.Param("short_code"))
			if err != nil {
				log.Printf("Error listing frames: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, frames)
		})

		reels.DELETE("/:short_code", func(c *gin.Context) {
			if err := state.reelService.Delete(c.Request.Context(), c.Param("short_code")); err != nil {
				log.Printf("Error deleting reel: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}
