// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colortable

import "github.com/aclements/go-moremath/stats"

// Distribution summarizes a set of samples with the teacher's own
// statistics package, applied here to chain lengths and generation
// sizes instead of its usual memory-latency samples (see
// cmd/memlat's use of github.com/aclements/go-moremath in the teacher
// repository).
type Distribution struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	P50    float64
	P90    float64
	P99    float64
}

func distributionOf(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}
	sample := stats.Sample{Xs: xs}
	lo, hi := sample.Bounds()
	return Distribution{
		Count:  len(xs),
		Mean:   sample.Mean(),
		StdDev: sample.StdDev(),
		Min:    lo,
		Max:    hi,
		P50:    sample.Percentile(0.5),
		P90:    sample.Percentile(0.9),
		P99:    sample.Percentile(0.99),
	}
}

// ChainLengthDistribution walks each of the given classes through rv
// and returns the distribution of their chain lengths (number of
// fragments from head to root, inclusive).
func (rv *ReadView) ChainLengthDistribution(ids []ColorId) (Distribution, error) {
	lengths := make([]float64, 0, len(ids))
	for _, id := range ids {
		it := rv.Class(id)
		n := 0
		for it.Next() {
			n++
		}
		if err := it.Err(); err != nil {
			return Distribution{}, err
		}
		lengths = append(lengths, float64(n))
	}
	return distributionOf(lengths), nil
}

// GenerationSizeDistribution returns the distribution of generation
// sizes (number of fragments appended per generation) recorded in the
// registry so far.
func (s *Store) GenerationSizeDistribution() Distribution {
	ranges := s.registry.Ranges()
	sizes := make([]float64, len(ranges))
	for i, r := range ranges {
		sizes[i] = float64(r.End - r.Start)
	}
	return distributionOf(sizes)
}
