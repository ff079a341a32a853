// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"

	"github.com/AleutianAI/AleutianWFC/pkg/validation"
	"github.com/AleutianAI/AleutianWFC/pkg/wfc"
)

// WFCConfig is the tool-wide configuration stored at ~/.wfc/wfc.yaml.
// Command-line flags override individual fields per invocation.
type WFCConfig struct {
	// Output: default grid dimensions and boundary behaviour
	Output OutputConfig `yaml:"output"`

	// Solver: retry and budget defaults
	Solver SolverConfig `yaml:"solver"`

	// Logging: destination and verbosity for the CLI logger
	Logging LoggingConfig `yaml:"logging"`
}

type OutputConfig struct {
	Width  int    `yaml:"width" validate:"gt=0"`          // e.g. 48
	Height int    `yaml:"height" validate:"gt=0"`         // e.g. 48
	Wrap   string `yaml:"wrap" validate:"oneof=none clipped x y xy torus"` // boundary mode
}

type SolverConfig struct {
	// Attempts bounds the restarts after contradictions.
	Attempts int `yaml:"attempts" validate:"gte=1"`

	// ParallelAttempts > 1 races that many attempts on separate
	// goroutines; the first to complete wins. Trades reproducibility
	// for speed.
	ParallelAttempts int `yaml:"parallel_attempts" validate:"gte=1"`

	// StepBudget caps the number of observe/propagate steps per
	// attempt. 0 means unlimited.
	StepBudget int `yaml:"step_budget" validate:"gte=0"`
}

type LoggingConfig struct {
	// Level can be "debug", "info", "warn" or "error".
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() WFCConfig {
	return WFCConfig{
		Output: OutputConfig{
			Width:  48,
			Height: 48,
			Wrap:   "torus",
		},
		Solver: SolverConfig{
			Attempts:         10,
			ParallelAttempts: 1,
			StepBudget:       0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Tileset is a user-authored pattern catalogue: named patterns with
// weights, display glyphs, and adjacency lists per direction. The
// adjacency relation must be symmetric; wfc.NewCatalogue rejects
// tilesets that state one side only.
type Tileset struct {
	Patterns []TilesetPattern `yaml:"patterns" validate:"min=1,dive"`
}

type TilesetPattern struct {
	Name   string `yaml:"name" validate:"required"`
	Weight uint32 `yaml:"weight" validate:"gt=0"`

	// Glyph is the rune printed for this pattern in text output.
	Glyph string `yaml:"glyph"`

	// Adjacency lists name the patterns allowed in each direction.
	Up    []string `yaml:"up"`
	Right []string `yaml:"right"`
	Down  []string `yaml:"down"`
	Left  []string `yaml:"left"`
}

// Names returns the pattern names in declaration order, which is also
// the dense id order.
func (t *Tileset) Names() []string {
	names := make([]string, len(t.Patterns))
	for i, p := range t.Patterns {
		names[i] = p.Name
	}
	return names
}

// Glyphs returns one rune per pattern for text rendering, defaulting
// to '?' when a pattern declares none.
func (t *Tileset) Glyphs() []rune {
	glyphs := make([]rune, len(t.Patterns))
	for i, p := range t.Patterns {
		glyphs[i] = '?'
		for _, r := range p.Glyph {
			glyphs[i] = r
			break
		}
	}
	return glyphs
}

// Descriptions resolves pattern names to dense ids and produces the
// solver catalogue input. Name validity and uniqueness are checked
// here; relation symmetry is checked by wfc.NewCatalogue.
func (t *Tileset) Descriptions() ([]wfc.PatternDescription, error) {
	names := t.Names()
	if err := validation.ValidatePatternNames(names); err != nil {
		return nil, err
	}
	ids := make(map[string]wfc.PatternID, len(names))
	for i, name := range names {
		ids[name] = i
	}

	resolve := func(owner string, neighbours []string) ([]wfc.PatternID, error) {
		out := make([]wfc.PatternID, 0, len(neighbours))
		for _, name := range neighbours {
			id, ok := ids[name]
			if !ok {
				return nil, fmt.Errorf("pattern %q references unknown pattern %q", owner, name)
			}
			out = append(out, id)
		}
		return out, nil
	}

	descs := make([]wfc.PatternDescription, len(t.Patterns))
	for i, p := range t.Patterns {
		descs[i].Weight = p.Weight
		lists := [wfc.NumDirections][]string{
			wfc.North: p.Up,
			wfc.East:  p.Right,
			wfc.South: p.Down,
			wfc.West:  p.Left,
		}
		for _, d := range wfc.Directions {
			resolved, err := resolve(p.Name, lists[d])
			if err != nil {
				return nil, err
			}
			descs[i].AllowedNeighbours[d] = resolved
		}
	}
	return descs, nil
}

// Catalogue builds and validates the solver catalogue from the tileset.
func (t *Tileset) Catalogue() (*wfc.Catalogue, error) {
	descs, err := t.Descriptions()
	if err != nil {
		return nil, err
	}
	return wfc.NewCatalogue(descs)
}
