// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package imagegen adapts images to the solver: it packs pixels into
// the uint32 samples package overlapping consumes, and paints waves
// back into images.
//
// Decided cells are painted with their pattern's top-left pixel.
// Undecided cells get the weight-blended average colour of their
// remaining patterns, which makes partially collapsed waves render as
// recognisable progress frames; contradicted cells get EmptyColour.
package imagegen

import (
	"fmt"
	"image"
	"image/color"

	"github.com/AleutianAI/AleutianWFC/pkg/overlapping"
	"github.com/AleutianAI/AleutianWFC/pkg/wfc"
)

// packColour packs an 8-bit RGBA colour into one uint32 sample value.
func packColour(c color.NRGBA) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// unpackColour is the inverse of packColour.
func unpackColour(v uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(v),
		G: uint8(v >> 8),
		B: uint8(v >> 16),
		A: uint8(v >> 24),
	}
}

// ImagePatterns couples an extracted pattern catalogue with the colour
// interpretation of its values.
type ImagePatterns struct {
	patterns *overlapping.Patterns

	// EmptyColour is painted for contradicted cells. Defaults to
	// transparent black.
	EmptyColour color.NRGBA
}

// FromImage extracts overlapping patterns from a sample image.
//
// Inputs:
//   - img: The sample. Pixels are converted to non-premultiplied RGBA.
//   - patternSize: Window edge length (3 is typical for pixel-art samples).
//   - periodic: Whether windows wrap around the sample edges.
//
// Outputs:
//   - *ImagePatterns: Patterns plus colour handling.
//   - error: Degenerate image or invalid patternSize.
func FromImage(img image.Image, patternSize int, periodic bool) (*ImagePatterns, error) {
	bounds := img.Bounds()
	size := wfc.Size{Width: bounds.Dx(), Height: bounds.Dy()}
	if size.Width == 0 || size.Height == 0 {
		return nil, fmt.Errorf("sample image is empty")
	}

	values := make([]uint32, 0, size.Count())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			nrgba := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			values = append(values, packColour(nrgba))
		}
	}

	sample, err := overlapping.NewSample(values, size)
	if err != nil {
		return nil, err
	}
	patterns, err := overlapping.Extract(sample, patternSize, periodic)
	if err != nil {
		return nil, err
	}
	return &ImagePatterns{patterns: patterns}, nil
}

// Patterns returns the underlying extracted catalogue.
func (ip *ImagePatterns) Patterns() *overlapping.Patterns {
	return ip.patterns
}

// Catalogue builds the validated solver catalogue.
func (ip *ImagePatterns) Catalogue() (*wfc.Catalogue, error) {
	return ip.patterns.Catalogue()
}

// CellColour resolves the colour of one wave cell: the decided
// pattern's top-left pixel, a weighted average over remaining patterns,
// or EmptyColour for a contradicted cell.
func (ip *ImagePatterns) CellColour(view wfc.CellView) color.NRGBA {
	if p, ok := view.ChosenPattern(); ok {
		return unpackColour(ip.patterns.TopLeft(p))
	}
	if view.NumPossible() == 0 {
		return ip.EmptyColour
	}

	var r, g, b, a uint64
	view.PatternWeights(func(p wfc.PatternID, weight uint32) bool {
		c := unpackColour(ip.patterns.TopLeft(p))
		w := uint64(weight)
		r += uint64(c.R) * w
		g += uint64(c.G) * w
		b += uint64(c.B) * w
		a += uint64(c.A) * w
		return true
	})
	total := view.SumWeights()
	return color.NRGBA{
		R: uint8(r / total),
		G: uint8(g / total),
		B: uint8(b / total),
		A: uint8(a / total),
	}
}

// Render paints the run's current wave into a new image. Works on
// completed and in-progress runs, which is what frame-by-frame
// animation renderers rely on.
func (ip *ImagePatterns) Render(run *wfc.Run) *image.NRGBA {
	size := run.Size()
	img := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	run.Cells(func(coord wfc.Coord, view wfc.CellView) bool {
		img.SetNRGBA(coord.X, coord.Y, ip.CellColour(view))
		return true
	})
	return img
}
