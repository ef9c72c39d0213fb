package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mathext"
)

// ReferenceModel is the closed-form collapse-tick distribution for the
// constant-hazard case without repairs (beta = 0, tr = inf): every tick draws
// N Bernoulli(p) failures and the system collapses at the tick during which
// the (S0+1)-th failure occurs. The tick count is a negative binomial in
// draws, truncated to whole ticks of N draws each.
//
// With finite repair times the model is a lower bound on survival: repairs
// only delay collapse.
type ReferenceModel struct {
	N  int64
	S0 int64
	P  float64
}

// NewReferenceModel builds the reference distribution for cfg.
// It requires beta = 0, N > 0 and 0 < p0 <= 1.
func NewReferenceModel(cfg Config) (ReferenceModel, error) {
	if cfg.Beta != 0 {
		return ReferenceModel{}, fmt.Errorf("%w: reference model requires beta = 0, got %v", ErrInvalidConfig, cfg.Beta)
	}
	if cfg.N <= 0 {
		return ReferenceModel{}, fmt.Errorf("%w: reference model requires n > 0, got %d", ErrInvalidConfig, cfg.N)
	}
	if cfg.P0 <= 0 || cfg.P0 > 1 {
		return ReferenceModel{}, fmt.Errorf("%w: reference model requires 0 < p0 <= 1, got %v", ErrInvalidConfig, cfg.P0)
	}
	return ReferenceModel{N: cfg.N, S0: cfg.S0, P: cfg.P0}, nil
}

// CDF returns P(collapse tick <= k).
func (m ReferenceModel) CDF(k int64) float64 {
	if k <= 0 {
		return 0
	}
	s := m.S0 + 1
	return negBinomialCDF(m.N*k-s, s, m.P)
}

// PMF returns P(collapse tick = k).
func (m ReferenceModel) PMF(k int64) float64 {
	return m.CDF(k) - m.CDF(k-1)
}

// Mean returns s/(p*N) with s = S0+1: the expected number of draws to the
// s-th failure, in ticks. Exact for N = 1; for larger N the truncation to
// whole ticks adds less than one tick.
func (m ReferenceModel) Mean() float64 {
	return float64(m.S0+1) / (m.P * float64(m.N))
}

// negBinomialCDF is P(X <= x) for X the number of non-failures observed
// before the r-th failure, each draw failing with probability p.
func negBinomialCDF(x, r int64, p float64) float64 {
	switch {
	case x < 0:
		return 0
	case p >= 1:
		return 1
	}
	return mathext.RegIncBeta(float64(r), float64(x+1), p)
}
