package dataset

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/alanyoungcy/pedsim/internal/domain"
)

// Fingerprint hashes the exact bit patterns of every (price, qty) pair in
// order. Two datasets share a fingerprint only if they hold the same values
// in the same order, so it is safe to key fitted models by it.
func Fingerprint(obs []domain.Observation) string {
	d := xxhash.New()
	buf := make([]byte, 0, 16)
	for _, o := range obs {
		buf = binary.LittleEndian.AppendUint64(buf[:0], math.Float64bits(o.Price))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(o.Qty))
		_, _ = d.Write(buf)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
