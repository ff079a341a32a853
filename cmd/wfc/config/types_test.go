// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/AleutianWFC/pkg/wfc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chequerTileset = `patterns:
  - name: dark
    weight: 1
    glyph: "#"
    up: [light]
    right: [light]
    down: [light]
    left: [light]
  - name: light
    weight: 1
    glyph: "."
    up: [dark]
    right: [dark]
    down: [dark]
    left: [dark]
`

func writeTileset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tileset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTileset(t *testing.T) {
	ts, err := LoadTileset(writeTileset(t, chequerTileset))
	require.NoError(t, err)

	assert.Equal(t, []string{"dark", "light"}, ts.Names())
	assert.Equal(t, []rune{'#', '.'}, ts.Glyphs())

	cat, err := ts.Catalogue()
	require.NoError(t, err)
	assert.Equal(t, 2, cat.NumPatterns())
	assert.Equal(t, []wfc.PatternID{1}, cat.Compatible(0, wfc.North))
}

func TestLoadTilesetMissingFile(t *testing.T) {
	_, err := LoadTileset(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadTilesetRejectsZeroWeight(t *testing.T) {
	_, err := LoadTileset(writeTileset(t, `patterns:
  - name: solo
    weight: 0
`))
	assert.Error(t, err)
}

func TestDescriptionsRejectsUnknownReference(t *testing.T) {
	ts, err := LoadTileset(writeTileset(t, `patterns:
  - name: solo
    weight: 1
    up: [ghost]
`))
	require.NoError(t, err)
	_, err = ts.Descriptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestDescriptionsRejectsInvalidName(t *testing.T) {
	ts := &Tileset{Patterns: []TilesetPattern{
		{Name: "bad name", Weight: 1},
	}}
	_, err := ts.Descriptions()
	assert.Error(t, err)
}

func TestDescriptionsRejectsDuplicateName(t *testing.T) {
	ts := &Tileset{Patterns: []TilesetPattern{
		{Name: "twin", Weight: 1},
		{Name: "twin", Weight: 1},
	}}
	_, err := ts.Descriptions()
	assert.Error(t, err)
}

func TestCatalogueRejectsAsymmetricTileset(t *testing.T) {
	ts, err := LoadTileset(writeTileset(t, `patterns:
  - name: a
    weight: 1
    right: [b]
  - name: b
    weight: 1
`))
	require.NoError(t, err)
	_, err = ts.Catalogue()
	assert.ErrorIs(t, err, wfc.ErrAsymmetricCompat)
}

func TestGlyphDefaults(t *testing.T) {
	ts := &Tileset{Patterns: []TilesetPattern{
		{Name: "noglyph", Weight: 1},
	}}
	assert.Equal(t, []rune{'?'}, ts.Glyphs())
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, validate.Struct(&cfg))

	_, err := wfc.ParseWrap(cfg.Output.Wrap)
	assert.NoError(t, err)
}

func TestSolvableTilesetEndToEnd(t *testing.T) {
	ts, err := LoadTileset(writeTileset(t, chequerTileset))
	require.NoError(t, err)
	cat, err := ts.Catalogue()
	require.NoError(t, err)

	rng := wfc.NewRand(99)
	run, err := wfc.NewRun(wfc.RunParams{
		Catalogue: cat,
		Size:      wfc.Size{Width: 4, Height: 4},
		Wrap:      wfc.WrapXY,
	}, rng)
	require.NoError(t, err)
	assert.Equal(t, wfc.StepComplete, run.Collapse(rng))
}
