package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

func TestFingerprint(t *testing.T) {
	a := []domain.Observation{{Price: 10, Qty: 100}, {Price: 20, Qty: 80}}
	same := []domain.Observation{{Price: 10, Qty: 100}, {Price: 20, Qty: 80}}
	swapped := []domain.Observation{{Price: 20, Qty: 80}, {Price: 10, Qty: 100}}
	nudged := []domain.Observation{{Price: 10, Qty: 100}, {Price: 20, Qty: 80.0000001}}

	fp := Fingerprint(a)
	require.NotEmpty(t, fp)
	assert.Equal(t, fp, Fingerprint(same))
	assert.NotEqual(t, fp, Fingerprint(swapped))
	assert.NotEqual(t, fp, Fingerprint(nudged))
	assert.NotEqual(t, Fingerprint(nil), fp)
}

func TestPreview(t *testing.T) {
	obs := make([]domain.Observation, 8)
	for i := range obs {
		obs[i] = domain.Observation{Price: float64(i + 1), Qty: 1}
	}

	p := Preview(obs, PreviewRows)
	require.Len(t, p, 5)
	assert.Equal(t, 5.0, p[4].Price)

	p[0].Price = 99
	assert.Equal(t, 1.0, obs[0].Price)

	assert.Len(t, Preview(obs[:2], PreviewRows), 2)
	assert.Empty(t, Preview(obs, -1))
}
