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

	"github.com/AleutianAI/AleutianWFC/cmd/wfc/config"
	"github.com/AleutianAI/AleutianWFC/pkg/logging"
	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// --- Global Command Variables ---
var (
	tilesetPath      string
	samplePath       string
	patternSize      int
	outputPath       string
	gridWidth        int
	gridHeight       int
	wrapMode         string
	seed             int64
	attempts         int
	parallelAttempts int
	stepBudget       int
	logLevel         string

	rootCmd = &cobra.Command{
		Use:   "wfc",
		Short: "A Wave Function Collapse procedural generation tool",
		Long: `wfc collapses a frequency-weighted pattern catalogue onto a grid
so that every cell is locally compatible with its neighbours.
Catalogues come from tileset YAML files or are extracted from
sample images.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load()
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the wfc version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}
)

func init() {
	generateCmd.Flags().StringVarP(&tilesetPath, "tileset", "t", "", "tileset YAML file")
	generateCmd.Flags().StringVarP(&samplePath, "sample", "s", "", "sample PNG to extract patterns from")
	generateCmd.Flags().IntVarP(&patternSize, "pattern-size", "n", 3, "overlapping pattern edge length")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (PNG for samples, default wfc-output.png; text for tilesets, default stdout)")
	generateCmd.Flags().IntVarP(&gridWidth, "width", "W", 0, "output grid width (default from config)")
	generateCmd.Flags().IntVarP(&gridHeight, "height", "H", 0, "output grid height (default from config)")
	generateCmd.Flags().StringVar(&wrapMode, "wrap", "", "boundary mode: torus|clipped|x|y (default from config)")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 picks one from the OS clock)")
	generateCmd.Flags().IntVar(&attempts, "attempts", 0, "max sequential attempts (default from config)")
	generateCmd.Flags().IntVar(&parallelAttempts, "parallel-attempts", 0, "race this many attempts concurrently")
	generateCmd.Flags().IntVar(&stepBudget, "step-budget", 0, "cap observe/propagate steps per attempt (0 = unlimited)")
	generateCmd.Flags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error")

	tilesetCheckCmd.Flags().StringVarP(&tilesetPath, "tileset", "t", "", "tileset YAML file")
	tilesetCmd.AddCommand(tilesetCheckCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tilesetCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the CLI logger from config plus the --log-level
// override.
func newLogger() *logging.Logger {
	level := config.Global.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	var l logging.Level
	switch level {
	case "debug":
		l = logging.LevelDebug
	case "warn":
		l = logging.LevelWarn
	case "error":
		l = logging.LevelError
	default:
		l = logging.LevelInfo
	}
	return logging.New(logging.Config{
		Level:   l,
		LogDir:  config.Global.Logging.Dir,
		Service: "wfc",
		JSON:    config.Global.Logging.JSON,
	})
}

func fatalf(format string, args ...any) {
	log.Fatalf(format, args...)
}
