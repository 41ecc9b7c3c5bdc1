// Package geometry derives concrete preview frame dimensions from a
// declared aspect ratio and a bounding box. All functions are pure:
// identical inputs always produce identical frames, so the same call
// serves both initial layout and re-derivation after a size change.
package geometry

import (
	"math"
	"strconv"
	"strings"

	"github.com/amgst/mapapp2/internal/errors"
)

// Default preview bounds matching the builder's display area.
const (
	DefaultMaxWidth  = 600
	DefaultMaxHeight = 500
)

// Ratio is a parsed aspect ratio. The "W:H" label is kept for display
// and wire interop; Value carries W/H for arithmetic. Raw label strings
// must not travel past this package unparsed.
type Ratio struct {
	Label  string  `json:"label"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Value  float64 `json:"value"`
}

// Frame is a concrete preview frame size in pixels.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ParseAspectRatio parses a "W:H" label into a Ratio.
// Both components must be positive finite numbers.
func ParseAspectRatio(label string) (Ratio, error) {
	parts := strings.Split(label, ":")
	if len(parts) != 2 {
		return Ratio{}, errors.NewInvalidAspectRatio(label)
	}

	w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errW != nil || errH != nil || !isPositiveFinite(w) || !isPositiveFinite(h) {
		return Ratio{}, errors.NewInvalidAspectRatio(label)
	}

	return Ratio{
		Label:  label,
		Width:  w,
		Height: h,
		Value:  w / h,
	}, nil
}

// isPositiveFinite rejects NaN and the infinities, which ParseFloat
// accepts ("NaN", "Inf", "Infinity") but comparisons let through.
func isPositiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

// ResolveFrame fits the ratio described by label into a maxWidth x
// maxHeight bounding box. A ratio wider than the box is
// width-constrained; otherwise the frame is height-constrained.
func ResolveFrame(label string, maxWidth, maxHeight float64) (Frame, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return Frame{}, errors.NewInvalidRequest("frame bounds must be positive")
	}

	ratio, err := ParseAspectRatio(label)
	if err != nil {
		return Frame{}, err
	}
	return ratio.Fit(maxWidth, maxHeight), nil
}

// Fit returns the largest frame with this ratio inside the bounding box.
func (r Ratio) Fit(maxWidth, maxHeight float64) Frame {
	if r.Value > maxWidth/maxHeight {
		return Frame{Width: maxWidth, Height: maxWidth / r.Value}
	}
	return Frame{Width: maxHeight * r.Value, Height: maxHeight}
}
