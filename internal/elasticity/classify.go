package elasticity

import (
	"math"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// Classify labels an elasticity by comparing |b| against 1. Values within tol
// of 1 are unit elastic; tol of 0 means exact comparison. A negative tol is
// treated as 0.
func Classify(b, tol float64) domain.Category {
	if tol < 0 {
		tol = 0
	}
	abs := math.Abs(b)
	switch {
	case abs > 1+tol:
		return domain.CategoryElastic
	case abs < 1-tol:
		return domain.CategoryInelastic
	default:
		return domain.CategoryUnitElastic
	}
}

// DefaultUnitElasticTolerance is the tolerance used when none is configured.
// It only absorbs floating point noise around |b| == 1.
const DefaultUnitElasticTolerance = 1e-9
