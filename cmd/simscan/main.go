// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command simscan is the batch and server front-end for the similarity
// engine: "scan" walks a submission directory offline, "serve" starts
// the HTTP surface backed by the same coordinator.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simscan",
	Short: "Structural source-code similarity detector",
	Long: `simscan tokenizes a batch of student submissions, winnows and
ranks candidate pairs by shared fingerprints, and tiles each top pair
with Karp-Rabin Greedy String Tiling to report matching line ranges.`,
}

func main() {
	rootCmd.AddCommand(scanCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
