package dice

// SampleWithoutReplacement draws up to k distinct items. Each draw picks among
// the remaining items with probability proportional to weight. Items with a
// weight of zero or less are never drawn. The result is in draw order.
func SampleWithoutReplacement[T any](r Roller, items []T, k int, weight func(T) float64) []T {
	pool := make([]T, 0, len(items))
	weights := make([]float64, 0, len(items))
	for _, it := range items {
		if w := weight(it); w > 0 {
			pool = append(pool, it)
			weights = append(weights, w)
		}
	}

	if k > len(pool) {
		k = len(pool)
	}
	out := make([]T, 0, k)

	for len(out) < k {
		total := 0.0
		for _, w := range weights {
			total += w
		}

		target := r.Float64() * total
		idx := len(pool) - 1
		acc := 0.0
		for i, w := range weights {
			acc += w
			if target < acc {
				idx = i
				break
			}
		}

		out = append(out, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}

	return out
}
