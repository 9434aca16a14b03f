package elasticity

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// SolveProfitMax applies the Lerner rule (P - c)/P = 1/|b| to find the
// profit-maximising price under constant elasticity:
//
//	P* = c / (1 - 1/|b|)
//
// A finite optimum exists only for elastic demand; Classify with the same tol
// decides that, so a model reported as unit elastic is never solved. A P*
// that is not strictly positive, or whose quantity or profit overflows, is
// reported as ErrDegenerateSolution rather than returned as a price.
func SolveProfitMax(m domain.FittedModel, unitCost, tol float64) (domain.ProfitMax, error) {
	if !isFinite(unitCost) || unitCost < 0 {
		return domain.ProfitMax{}, fmt.Errorf("elasticity: unit cost must be >= 0, got %v: %w",
			unitCost, domain.ErrInvalidInput)
	}
	if Classify(m.Elasticity, tol) != domain.CategoryElastic {
		return domain.ProfitMax{}, fmt.Errorf("elasticity: |PED| = %.4f <= 1 has no finite profit maximum: %w",
			math.Abs(m.Elasticity), domain.ErrNotApplicable)
	}

	pStar := unitCost / (1 - 1/math.Abs(m.Elasticity))
	if !isFinite(pStar) || pStar <= 0 {
		return domain.ProfitMax{}, fmt.Errorf("elasticity: computed P* = %v is not positive: %w",
			pStar, domain.ErrDegenerateSolution)
	}

	proj, err := Project(m, pStar)
	if err != nil {
		return domain.ProfitMax{}, fmt.Errorf("elasticity: project at P* = %v: %v: %w",
			pStar, err, domain.ErrDegenerateSolution)
	}
	profit := (pStar - unitCost) * proj.Qty
	if !isFinite(profit) {
		return domain.ProfitMax{}, fmt.Errorf("elasticity: profit at P* = %v is out of range: %w",
			pStar, domain.ErrDegenerateSolution)
	}

	return domain.ProfitMax{
		UnitCost: unitCost,
		Price:    pStar,
		Qty:      proj.Qty,
		Profit:   profit,
	}, nil
}

// DefaultUnitCost is ratio of the base price rounded to cents, or 1.0 when
// there is no usable base price.
func DefaultUnitCost(basePrice, ratio float64) float64 {
	if !isFinite(basePrice) || basePrice <= 0 {
		return 1.0
	}
	return math.Round(basePrice*ratio*100) / 100
}
