package dataset

import "github.com/alanyoungcy/pedsim/internal/domain"

// PreviewRows is how many leading rows a dataset preview shows.
const PreviewRows = 5

// Preview returns a copy of at most n leading observations.
func Preview(obs []domain.Observation, n int) []domain.Observation {
	if n < 0 {
		n = 0
	}
	n = min(n, len(obs))
	out := make([]domain.Observation, n)
	copy(out, obs[:n])
	return out
}
