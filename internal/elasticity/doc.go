// Package elasticity estimates the price elasticity of demand from
// (price, quantity) observations and uses the fitted constant-elasticity
// curve to project demand, revenue, and the profit-maximising price.
//
// The model is the log-log regression
//
//	ln(qty) = a + b * ln(price)
//
// where the slope b is the elasticity. Every function in this package is
// pure: the same inputs always produce the same outputs and nothing is cached
// or mutated. Memoization, if wanted, belongs to the caller.
//
// # Failure modes
//
// Functions return errors wrapping one of the domain sentinels:
//
//   - domain.ErrInvalidInput: too few observations, a non-positive price or
//     quantity, or a non-positive projection price.
//   - domain.ErrNotApplicable: a profit maximum was requested for |b| <= 1,
//     where the constant-elasticity profit function has no interior optimum.
//   - domain.ErrDegenerateSolution: the Lerner rule produced a non-positive
//     or non-finite price (for example a zero unit cost).
package elasticity
