package ranksum

// exactSF returns P(U >= u) under the null hypothesis for sample sizes n1 and
// n2 with no ties.
func exactSF(u, n1, n2 int) float64 {
	pmf := exactPMF(n1, n2)

	if u <= 0 {
		return 1
	}
	if u >= len(pmf) {
		return 0
	}

	sf := 0.0
	for k := u; k < len(pmf); k++ {
		sf += pmf[k]
	}

	return sf
}

// exactPMF returns P(U = k) for k in [0, n1*n2]. It uses the recurrence on the
// largest observation: it belongs to the first sample with probability
// n1/(n1+n2), in which case it contributes n2 to U.
//
//	p(n1, n2, k) = n1/(n1+n2) * p(n1-1, n2, k-n2) + n2/(n1+n2) * p(n1, n2-1, k)
func exactPMF(n1, n2 int) []float64 {
	// prev[j] holds p(i-1, j, .) while row i is being filled
	prev := make([][]float64, n2+1)
	for j := 0; j <= n2; j++ {
		// p(0, j, 0) = 1
		prev[j] = []float64{1}
	}

	for i := 1; i <= n1; i++ {
		cur := make([][]float64, n2+1)
		// p(i, 0, 0) = 1
		cur[0] = []float64{1}

		for j := 1; j <= n2; j++ {
			dist := make([]float64, i*j+1)
			wi := float64(i) / float64(i+j)
			wj := float64(j) / float64(i+j)

			for k, p := range prev[j] {
				dist[k+j] += wi * p
			}
			for k, p := range cur[j-1] {
				dist[k] += wj * p
			}

			cur[j] = dist
		}

		prev = cur
	}

	return prev[n2]
}
