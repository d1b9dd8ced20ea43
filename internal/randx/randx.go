// Package randx is the seeded stochastic toolkit behind every generator stage.
// All sampling runs on an explicitly passed *rand.Rand so a fixed seed yields
// byte-identical output tables. Draws keyed by maps iterate keys in sorted
// order for the same reason.
package randx

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Poisson draws a Poisson-distributed count with mean lambda using Knuth's
// multiplication method. Lambdas in this system are small segment propensities,
// so the O(lambda) loop is fine.
func Poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// LogNormalDays draws a log-normal delay whose arithmetic mean equals mean.
// The underlying normal gets mu = ln(mean) - sigma^2/2 so that
// E[exp(N(mu, sigma))] == mean.
func LogNormalDays(rng *rand.Rand, mean, sigma float64) float64 {
	if mean <= 0 {
		return 0
	}
	if sigma <= 0 {
		return mean
	}
	mu := math.Log(mean) - sigma*sigma/2
	return math.Exp(rng.NormFloat64()*sigma + mu)
}

// IntBetween returns a uniform integer in [lo, hi], swapping out-of-order
// bounds.
func IntBetween(rng *rand.Rand, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Bernoulli reports a success with probability p.
func Bernoulli(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

// WeightedChoice draws one key from a weight map. Keys are visited in sorted
// order so the draw is deterministic under a fixed seed.
func WeightedChoice(rng *rand.Rand, weights map[string]float64) (string, error) {
	if len(weights) == 0 {
		return "", fmt.Errorf("weighted choice over empty weight map")
	}
	keys := make([]string, 0, len(weights))
	total := 0.0
	for k, w := range weights {
		if w < 0 {
			return "", fmt.Errorf("negative weight %f for key %q", w, k)
		}
		keys = append(keys, k)
		total += w
	}
	sort.Strings(keys)
	if total <= 0 {
		// All-zero weights degrade to a uniform draw.
		return keys[rng.Intn(len(keys))], nil
	}
	target := rng.Float64() * total
	acc := 0.0
	for _, k := range keys {
		acc += weights[k]
		if target < acc {
			return k, nil
		}
	}
	return keys[len(keys)-1], nil
}

// Choice returns a uniformly drawn element of items.
func Choice[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

// Sample returns n elements drawn without replacement, in draw order. When n
// exceeds len(items) the whole slice is returned (shuffled).
func Sample[T any](rng *rand.Rand, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	out := make([]T, 0, n)
	for _, idx := range rng.Perm(len(items))[:n] {
		out = append(out, items[idx])
	}
	return out
}

// DateBetween returns a uniform calendar day in [start, end], inclusive.
// Out-of-order bounds are swapped rather than rejected.
func DateBetween(rng *rand.Rand, start, end time.Time) time.Time {
	start = Midnight(start)
	end = Midnight(end)
	if start.After(end) {
		start, end = end, start
	}
	days := int(end.Sub(start).Hours() / 24)
	return start.AddDate(0, 0, rng.Intn(days+1))
}

// Midnight truncates a timestamp to its UTC calendar day.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
