// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/parthenon-labs/simscan/pkg/logging"
	"github.com/parthenon-labs/simscan/services/simcore/httpapi"
	"github.com/parthenon-labs/simscan/services/simcore/jobstore"
	"github.com/parthenon-labs/simscan/services/simcore/lang"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the similarity engine's HTTP surface",
	Long: `serve starts a minimal HTTP surface for the engine:
POST /v1/submit runs a batch job and returns a slug, GET
/v1/results/:slug reads it back, and /metrics exposes Prometheus
instrumentation. Configuration is environment-driven, matching the
rest of this project's long-running services.

  SIMSCAN_PORT      HTTP listen port (default: 8089)
  SIMSCAN_DATA_DIR  BadgerDB directory for persisted results (default: ./simscan-data)`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	port := getEnvInt("SIMSCAN_PORT", 8089)
	dataDir := getEnvString("SIMSCAN_DATA_DIR", "./simscan-data")

	logger := logging.New(logging.Config{Service: "simscan-serve"})
	logger.Info("starting simscan server", "port", port, "data_dir", dataDir)

	store, err := jobstore.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}
	defer store.Close()

	registry := lang.NewRegistry()
	handlers := httpapi.NewHandlers(registry, store, logger, nil)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf(":%d", port)
	logger.Info("listening", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
