package heatmap

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestOrderColumns_TinyGroupsKeepInputOrder(t *testing.T) {
	if got := OrderColumns(nil); len(got) != 0 {
		t.Errorf("Expected empty order for no vectors, got %v", got)
	}
	if got := OrderColumns([][]float64{{1, 2}}); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("Expected [0] for one vector, got %v", got)
	}
	// Pairs are never reordered, whatever their distance.
	got := OrderColumns([][]float64{{9, 9}, {1, 1}})
	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("Expected [0 1] for two vectors, got %v", got)
	}
}

func TestOrderColumns_IsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vectors := make([][]float64, 7)
	for i := range vectors {
		vectors[i] = []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	}

	order := OrderColumns(vectors)
	if len(order) != len(vectors) {
		t.Fatalf("Expected %d indices, got %d", len(vectors), len(order))
	}
	seen := make(map[int]bool)
	for _, idx := range order {
		if idx < 0 || idx >= len(vectors) {
			t.Fatalf("Index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("Index %d appears twice in %v", idx, order)
		}
		seen[idx] = true
	}
}

func TestOptimalOrder_NeverWorseThanInputOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(19))

	for trial := 0; trial < 25; trial++ {
		n := 3 + rng.Intn(7)
		vectors := make([][]float64, n)
		for i := range vectors {
			vectors[i] = []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		}

		identity := make([]int, n)
		for i := range identity {
			identity[i] = i
		}

		ordered := Cluster(vectors).OptimalOrder()
		if OrderObjective(vectors, ordered) > OrderObjective(vectors, identity)+1e-9 {
			t.Errorf("Trial %d: optimal order objective %.6f exceeds input order %.6f",
				trial, OrderObjective(vectors, ordered), OrderObjective(vectors, identity))
		}
	}
}

func TestOrderColumns_PlacesSimilarVectorsAdjacent(t *testing.T) {
	// Two near-identical pairs interleaved in input: each pair must end up
	// adjacent in the display order.
	vectors := [][]float64{
		{0.0, 0.0},
		{10.0, 10.0},
		{0.1, 0.1},
		{9.9, 9.9},
	}

	order := OrderColumns(vectors)
	pos := make([]int, len(vectors))
	for p, idx := range order {
		pos[idx] = p
	}

	if diff := pos[0] - pos[2]; diff != 1 && diff != -1 {
		t.Errorf("Vectors 0 and 2 not adjacent in %v", order)
	}
	if diff := pos[1] - pos[3]; diff != 1 && diff != -1 {
		t.Errorf("Vectors 1 and 3 not adjacent in %v", order)
	}
}

func TestOrderColumns_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	vectors := make([][]float64, 9)
	for i := range vectors {
		vectors[i] = []float64{rng.NormFloat64(), rng.NormFloat64()}
	}

	first := OrderColumns(vectors)
	for run := 0; run < 5; run++ {
		if again := OrderColumns(vectors); !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d produced %v, first run produced %v", run, again, first)
		}
	}
}

func TestOrderObjective(t *testing.T) {
	vectors := [][]float64{{0, 0}, {3, 4}, {3, 4}}
	// 0 -> 1 is distance 5, 1 -> 2 is distance 0.
	if got := OrderObjective(vectors, []int{0, 1, 2}); got != 5.0 {
		t.Errorf("Expected objective 5.0, got %v", got)
	}
	if got := OrderObjective(vectors, []int{1, 0, 2}); got != 10.0 {
		t.Errorf("Expected objective 10.0, got %v", got)
	}
}
