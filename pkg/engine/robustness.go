package engine

import (
	"math"

	"github.com/dd0wney/cluso-tfpg/pkg/model"
)

// rangeEpsilon guards the normalization against degenerate signal ranges.
const rangeEpsilon = 1e-9

// Robustness computes the signed, normalized margin of a predicate against a
// signal value. Positive means satisfied, non-positive means violated.
//
// The < and > formulas follow the reference definition; <= and >= share them.
// Equality is the normalized closeness 1 - |v-t|/R and inequality its
// negation, so the two operators stay sign-symmetric. When the signal range
// collapses below epsilon the raw margin is returned unnormalized.
func Robustness(pred *model.Predicate, value, rangeMin, rangeMax float64) float64 {
	var raw float64
	diff := math.Abs(value - pred.Threshold)

	switch pred.Op {
	case model.OpGreater, model.OpGreaterEqual:
		raw = value - pred.Threshold
	case model.OpLess, model.OpLessEqual:
		raw = pred.Threshold - value
	case model.OpEqual:
		raw = -diff
	case model.OpNotEqual:
		raw = diff
	}

	r := rangeMax - rangeMin
	if r <= rangeEpsilon {
		return raw
	}

	switch pred.Op {
	case model.OpEqual:
		return 1 - diff/r
	case model.OpNotEqual:
		return diff/r - 1
	default:
		return raw / r
	}
}
