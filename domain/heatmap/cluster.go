package heatmap

import (
	"math"
	"sort"
)

// node is one dendrogram vertex; leaves carry the item index.
type node struct {
	leaf   int // item index, -1 for internal nodes
	left   *node
	right  *node
	leaves []int // sorted item indices under this node
}

// Dendrogram is the binary merge tree of an agglomerative clustering run
// together with the pairwise item distances it was built from.
type Dendrogram struct {
	root *node
	dist [][]float64
	n    int
}

// OrderColumns returns a display order for the given vectors: average
// linkage agglomerative clustering over Euclidean distance, followed by
// optimal leaf reordering. Two or fewer vectors keep their input order.
func OrderColumns(vectors [][]float64) []int {
	n := len(vectors)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if n <= 2 {
		return order
	}
	return Cluster(vectors).OptimalOrder()
}

// OrderObjective returns the summed Euclidean distance between adjacent
// vectors under the given order.
func OrderObjective(vectors [][]float64, order []int) float64 {
	total := 0.0
	for i := 1; i < len(order); i++ {
		total += euclidean(vectors[order[i-1]], vectors[order[i]])
	}
	return total
}

// Cluster builds the average-linkage dendrogram over the vectors. Merge
// ties resolve to the lowest slot pair, keeping the tree deterministic.
func Cluster(vectors [][]float64) *Dendrogram {
	n := len(vectors)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = euclidean(vectors[i], vectors[j])
			}
		}
	}

	// Active cluster slots; merging i and j keeps the result in slot i.
	nodes := make([]*node, n)
	sizes := make([]int, n)
	active := make([]bool, n)
	work := make([][]float64, n)
	for i := 0; i < n; i++ {
		nodes[i] = &node{leaf: i, leaves: []int{i}}
		sizes[i] = 1
		active[i] = true
		work[i] = append([]float64(nil), dist[i]...)
	}

	for merges := 0; merges < n-1; merges++ {
		bi, bj := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if work[i][j] < best {
					best = work[i][j]
					bi, bj = i, j
				}
			}
		}

		merged := &node{
			leaf:   -1,
			left:   nodes[bi],
			right:  nodes[bj],
			leaves: mergeSorted(nodes[bi].leaves, nodes[bj].leaves),
		}
		// Lance-Williams update for average linkage.
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			d := (float64(sizes[bi])*work[bi][k] + float64(sizes[bj])*work[bj][k]) /
				float64(sizes[bi]+sizes[bj])
			work[bi][k] = d
			work[k][bi] = d
		}
		nodes[bi] = merged
		sizes[bi] += sizes[bj]
		active[bj] = false
	}

	for i := 0; i < n; i++ {
		if active[i] {
			return &Dendrogram{root: nodes[i], dist: dist, n: n}
		}
	}
	return &Dendrogram{n: 0}
}

// oloTable holds, for one node, the minimal adjacent-leaf distance sum of
// any ordering with leftmost leaf u and rightmost leaf w, plus the chosen
// boundary pair for reconstruction.
type oloTable struct {
	cost  [][]float64
	split [][][2]int
}

// OptimalOrder returns the leaf order minimizing the summed distance
// between adjacent leaves over all orderings consistent with the tree,
// where every internal node may swap its children (Bar-Joseph dynamic
// program).
func (d *Dendrogram) OptimalOrder() []int {
	if d.n == 0 {
		return nil
	}
	tables := make(map[*node]*oloTable)
	d.fill(d.root, tables)

	rootTable := tables[d.root]
	bu, bw := -1, -1
	best := math.Inf(1)
	for _, u := range d.root.leaves {
		for _, w := range d.root.leaves {
			if c := rootTable.cost[u][w]; c < best {
				best = c
				bu, bw = u, w
			}
		}
	}
	return d.reconstruct(d.root, tables, bu, bw)
}

func (d *Dendrogram) newTable() *oloTable {
	cost := make([][]float64, d.n)
	split := make([][][2]int, d.n)
	for i := range cost {
		cost[i] = make([]float64, d.n)
		split[i] = make([][2]int, d.n)
		for j := range cost[i] {
			cost[i][j] = math.Inf(1)
		}
	}
	return &oloTable{cost: cost, split: split}
}

func (d *Dendrogram) fill(v *node, tables map[*node]*oloTable) {
	t := d.newTable()
	tables[v] = t
	if v.leaf >= 0 {
		t.cost[v.leaf][v.leaf] = 0
		return
	}
	d.fill(v.left, tables)
	d.fill(v.right, tables)

	d.combine(t, tables[v.left], v.left, tables[v.right], v.right)
	d.combine(t, tables[v.right], v.right, tables[v.left], v.left)
}

// combine folds orderings that start inside first and end inside second,
// bridging at the original leaf-to-leaf distance.
func (d *Dendrogram) combine(t *oloTable, firstTable *oloTable, first *node, secondTable *oloTable, second *node) {
	for _, u := range first.leaves {
		for _, m := range first.leaves {
			cm := firstTable.cost[u][m]
			if math.IsInf(cm, 1) {
				continue
			}
			for _, k := range second.leaves {
				bridge := cm + d.dist[m][k]
				for _, w := range second.leaves {
					ck := secondTable.cost[k][w]
					if math.IsInf(ck, 1) {
						continue
					}
					if total := bridge + ck; total < t.cost[u][w] {
						t.cost[u][w] = total
						t.split[u][w] = [2]int{m, k}
					}
				}
			}
		}
	}
}

func (d *Dendrogram) reconstruct(v *node, tables map[*node]*oloTable, u, w int) []int {
	if v.leaf >= 0 {
		return []int{v.leaf}
	}
	p := tables[v].split[u][w]
	m, k := p[0], p[1]
	if containsLeaf(v.left, u) {
		return append(d.reconstruct(v.left, tables, u, m), d.reconstruct(v.right, tables, k, w)...)
	}
	return append(d.reconstruct(v.right, tables, u, m), d.reconstruct(v.left, tables, k, w)...)
}

func containsLeaf(v *node, leaf int) bool {
	i := sort.SearchInts(v.leaves, leaf)
	return i < len(v.leaves) && v.leaves[i] == leaf
}

func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
