// Package ranksum implements the two-sided Mann-Whitney U (Wilcoxon rank-sum)
// test for two independent samples.
package ranksum

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var ErrEmptySample = errors.New("ranksum: both samples must be non-empty")

// Above this size in both groups, the normal approximation is used even when
// there are no ties.
const exactMaxN = 8

type Method int

const (
	Exact Method = iota
	Asymptotic
)

func (m Method) String() string {
	if m == Exact {
		return "exact"
	}

	return "asymptotic"
}

type Result struct {
	// U is the statistic of the first sample: the number of (x, y) pairs with
	// x > y, counting ties as one half.
	U      float64
	P      float64
	Method Method
}

type observation struct {
	value float64
	first bool
}

// Test compares x against y. When both samples are larger than 8 or when any
// values are tied, the tie-corrected normal approximation with a continuity
// correction is used; otherwise the p-value comes from the exact null
// distribution of U.
func Test(x, y []float64) (Result, error) {
	n1, n2 := len(x), len(y)
	if n1 == 0 || n2 == 0 {
		return Result{U: math.NaN(), P: math.NaN()}, ErrEmptySample
	}

	combined := make([]observation, 0, n1+n2)
	for _, v := range x {
		combined = append(combined, observation{value: v, first: true})
	}
	for _, v := range y {
		combined = append(combined, observation{value: v})
	}
	sort.SliceStable(combined, func(i, j int) bool { return combined[i].value < combined[j].value })

	// Average ranks for ties, and the tie term sum(t^3 - t) for sigma
	N := len(combined)
	R1 := 0.0
	tieSum := 0.0
	for i := 0; i < N; {
		j := i
		for j < N && combined[j].value == combined[i].value {
			j++
		}
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if combined[k].first {
				R1 += avgRank
			}
		}
		if t := float64(j - i); t > 1 {
			tieSum += t*t*t - t
		}
		i = j
	}

	n1f, n2f := float64(n1), float64(n2)
	U1 := R1 - n1f*(n1f+1)/2
	U2 := n1f*n2f - U1
	U := math.Max(U1, U2)

	out := Result{U: U1}

	if (n1 > exactMaxN && n2 > exactMaxN) || tieSum > 0 {
		out.Method = Asymptotic
		out.P = asymptoticP(U, n1f, n2f, tieSum)
	} else {
		out.Method = Exact
		out.P = 2 * exactSF(int(math.Round(U)), n1, n2)
	}

	out.P = math.Min(1, math.Max(0, out.P))

	return out, nil
}

func asymptoticP(U, n1, n2, tieSum float64) float64 {
	N := n1 + n2
	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 / 12 * ((N + 1) - tieSum/(N*(N-1))))

	// All observations identical
	if sigma == 0 {
		return 1
	}

	z := (U - mu - 0.5) / sigma

	return 2 * distuv.UnitNormal.Survival(z)
}
