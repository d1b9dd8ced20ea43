package randx

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestPoisson_MeanConverges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const lambda = 2.5
	const n = 50000

	sum := 0
	for i := 0; i < n; i++ {
		sum += Poisson(rng, lambda)
	}
	mean := float64(sum) / n
	if math.Abs(mean-lambda) > 0.05 {
		t.Errorf("Poisson sample mean %f too far from lambda %f", mean, lambda)
	}
}

func TestPoisson_ZeroLambda(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if got := Poisson(rng, 0); got != 0 {
			t.Fatalf("Poisson(0) = %d, want 0", got)
		}
	}
}

func TestLogNormalDays_MeanParameterization(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const mean, sigma = 90.0, 0.6
	const n = 100000

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += LogNormalDays(rng, mean, sigma)
	}
	got := sum / n
	// Arithmetic mean of the log-normal must equal the configured mean.
	if math.Abs(got-mean)/mean > 0.03 {
		t.Errorf("log-normal sample mean %f, want ~%f", got, mean)
	}
}

func TestWeightedChoice_Deterministic(t *testing.T) {
	weights := map[string]float64{"Web": 3, "Phone": 1, "Mobile App": 2}

	a := rand.New(rand.NewSource(99))
	b := rand.New(rand.NewSource(99))
	for i := 0; i < 1000; i++ {
		ka, err := WeightedChoice(a, weights)
		if err != nil {
			t.Fatal(err)
		}
		kb, _ := WeightedChoice(b, weights)
		if ka != kb {
			t.Fatalf("draw %d diverged: %q vs %q", i, ka, kb)
		}
	}
}

func TestWeightedChoice_RespectsWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	weights := map[string]float64{"a": 9, "b": 1}
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		k, err := WeightedChoice(rng, weights)
		if err != nil {
			t.Fatal(err)
		}
		counts[k]++
	}
	share := float64(counts["a"]) / 10000
	if share < 0.87 || share > 0.93 {
		t.Errorf("share of 'a' = %f, want ~0.9", share)
	}
}

func TestWeightedChoice_Empty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := WeightedChoice(rng, nil); err == nil {
		t.Error("expected error for empty weight map")
	}
}

func TestDateBetween_SwapsBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		d := DateBetween(rng, start, end)
		if d.Before(end) || d.After(start) {
			t.Fatalf("date %v outside swapped range [%v, %v]", d, end, start)
		}
	}
}

func TestSample_NoReplacement(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	got := Sample(rng, items, 5)
	if len(got) != 5 {
		t.Fatalf("sample size %d, want 5", len(got))
	}
	seen := map[int]bool{}
	for _, v := range got {
		if seen[v] {
			t.Fatalf("value %d drawn twice", v)
		}
		seen[v] = true
	}
}

func TestSample_CapsAtPoolSize(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	if got := Sample(rng, []int{1, 2}, 10); len(got) != 2 {
		t.Fatalf("sample size %d, want 2", len(got))
	}
}
