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
	"os"

	"github.com/AleutianAI/AleutianWFC/cmd/wfc/config"
	"github.com/spf13/cobra"
)

var tilesetCmd = &cobra.Command{
	Use:   "tileset",
	Short: "Inspect and validate tileset files",
}

var tilesetCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a tileset file against the catalogue rules",
	Long: `Check loads a tileset YAML file and runs the full catalogue
validation: pattern names, positive weights, known adjacency
references, relation symmetry and support counter range. The
exit status is non-zero when the tileset is rejected.`,
	Run: runTilesetCheck,
}

func runTilesetCheck(cmd *cobra.Command, args []string) {
	if tilesetPath == "" {
		fatalf("--tileset is required")
	}

	ts, err := config.LoadTileset(tilesetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}

	cat, err := ts.Catalogue()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: %d patterns, total weight %d\n",
		cat.NumPatterns(), cat.SumWeights())
}
