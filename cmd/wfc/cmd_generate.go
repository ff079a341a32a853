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
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianWFC/cmd/wfc/config"
	"github.com/AleutianAI/AleutianWFC/pkg/imagegen"
	"github.com/AleutianAI/AleutianWFC/pkg/logging"
	"github.com/AleutianAI/AleutianWFC/pkg/wfc"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Collapse a pattern catalogue onto a grid",
	Long: `Generate runs the solver against a catalogue taken from either a
tileset YAML file (--tileset) or a sample image (--sample). Tileset
output is a glyph grid; sample output is a PNG.`,
	Run: runGenerate,
}

// generateOptions is the flag/config merge for one invocation.
type generateOptions struct {
	size     wfc.Size
	wrap     wfc.Wrap
	seed     int64
	attempts int
	parallel int
	budget   int
}

func resolveOptions() generateOptions {
	opts := generateOptions{
		size: wfc.Size{
			Width:  config.Global.Output.Width,
			Height: config.Global.Output.Height,
		},
		attempts: config.Global.Solver.Attempts,
		parallel: config.Global.Solver.ParallelAttempts,
		budget:   config.Global.Solver.StepBudget,
		seed:     seed,
	}
	if gridWidth > 0 {
		opts.size.Width = gridWidth
	}
	if gridHeight > 0 {
		opts.size.Height = gridHeight
	}
	if attempts > 0 {
		opts.attempts = attempts
	}
	if parallelAttempts > 0 {
		opts.parallel = parallelAttempts
	}
	if stepBudget > 0 {
		opts.budget = stepBudget
	}
	if opts.seed == 0 {
		opts.seed = time.Now().UnixNano()
	}

	mode := config.Global.Output.Wrap
	if wrapMode != "" {
		mode = wrapMode
	}
	wrap, err := wfc.ParseWrap(mode)
	if err != nil {
		fatalf("invalid wrap mode: %v", err)
	}
	opts.wrap = wrap
	return opts
}

func runGenerate(cmd *cobra.Command, args []string) {
	if (tilesetPath == "") == (samplePath == "") {
		fatalf("exactly one of --tileset or --sample is required")
	}

	opts := resolveOptions()
	logger := newLogger()
	defer logger.Close()

	if samplePath != "" {
		generateFromSample(opts, logger)
		return
	}
	generateFromTileset(opts, logger)
}

// collapse drives a configured run to completion under the retry
// policy and returns it, or exits with a non-zero status.
func collapse(params wfc.RunParams, opts generateOptions) *wfc.Run {
	rng := wfc.NewRand(opts.seed)
	run, err := wfc.NewRun(params, rng)
	if err != nil {
		fatalf("initialising run: %v", err)
	}

	if opts.budget > 0 {
		result, err := run.StepAll(rng, opts.budget)
		if err != nil {
			fatalf("step budget of %d exhausted before completion", opts.budget)
		}
		if result == wfc.StepContradiction {
			fatalf("run ended in contradiction within the step budget")
		}
		return run
	}

	var strategy wfc.RetryStrategy = wfc.NumTimes(opts.attempts)
	if opts.parallel > 1 {
		strategy = wfc.Parallel(opts.parallel)
	}
	result, err := run.CollapseRetrying(rng, strategy)
	if err != nil {
		fatalf("collapse failed: %v", err)
	}
	if result != wfc.StepComplete {
		fmt.Fprintln(os.Stderr, "all attempts ended in contradiction")
		os.Exit(2)
	}
	return run
}

func generateFromSample(opts generateOptions, logger *logging.Logger) {
	f, err := os.Open(samplePath)
	if err != nil {
		fatalf("opening sample: %v", err)
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		fatalf("decoding sample PNG: %v", err)
	}

	patterns, err := imagegen.FromImage(img, patternSize, true)
	if err != nil {
		fatalf("extracting patterns: %v", err)
	}
	cat, err := patterns.Catalogue()
	if err != nil {
		fatalf("building catalogue: %v", err)
	}

	run := collapse(wfc.RunParams{
		Catalogue: cat,
		Size:      opts.size,
		Wrap:      opts.wrap,
		Logger:    logger,
	}, opts)

	out := patterns.Render(run)
	dest := outputPath
	if dest == "" {
		dest = "wfc-output.png"
	}
	f, err = os.Create(dest)
	if err != nil {
		fatalf("creating output file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		fatalf("encoding output PNG: %v", err)
	}
	fmt.Printf("wrote %s (%dx%d, %d patterns, seed %d)\n",
		dest, opts.size.Width, opts.size.Height, cat.NumPatterns(), opts.seed)
}

func generateFromTileset(opts generateOptions, logger *logging.Logger) {
	ts, err := config.LoadTileset(tilesetPath)
	if err != nil {
		fatalf("%v", err)
	}
	cat, err := ts.Catalogue()
	if err != nil {
		fatalf("building catalogue: %v", err)
	}

	run := collapse(wfc.RunParams{
		Catalogue: cat,
		Size:      opts.size,
		Wrap:      opts.wrap,
		Logger:    logger,
	}, opts)

	text := renderGlyphGrid(run, ts.Glyphs())
	if outputPath == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		fatalf("writing output: %v", err)
	}
	fmt.Printf("wrote %s (%dx%d, seed %d)\n",
		outputPath, opts.size.Width, opts.size.Height, opts.seed)
}

// renderGlyphGrid paints a completed run as one rune per cell.
func renderGlyphGrid(run *wfc.Run, glyphs []rune) string {
	size := run.Size()
	var sb strings.Builder
	sb.Grow((size.Width + 1) * size.Height)
	run.Cells(func(coord wfc.Coord, view wfc.CellView) bool {
		if p, ok := view.ChosenPattern(); ok {
			sb.WriteRune(glyphs[p])
		} else {
			sb.WriteRune('!')
		}
		if coord.X == size.Width-1 {
			sb.WriteRune('\n')
		}
		return true
	})
	return sb.String()
}
