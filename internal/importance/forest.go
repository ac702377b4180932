package importance

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// forest is a random forest of CART classifiers that keeps only what is
// needed for impurity-based importance: no prediction state is retained.
type forest struct {
	trees           int
	seed            int64
	maxDepth        int // 0 means unlimited
	maxFeatures     int // 0 means floor(sqrt(p))
	minSamplesSplit int
	bootstrap       bool
}

// fitResult is the outcome of fitting a forest.
type fitResult struct {
	importances []float64
	splitTrees  int
}

// fit grows the forest on column-major features x (x[f][i]) and labels y in
// [0, classes). Importances are the mean decrease in Gini impurity per
// feature, normalised per tree, averaged over trees that split at least once
// and normalised again.
func (f *forest) fit(x [][]float64, y []int, classes int) fitResult {
	p := len(x)
	n := len(y)
	res := fitResult{importances: make([]float64, p)}
	if p == 0 || n == 0 {
		return res
	}
	maxFeatures := f.maxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(p)))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	if maxFeatures > p {
		maxFeatures = p
	}
	for t := 0; t < f.trees; t++ {
		rnd := rand.New(rand.NewSource(f.seed + int64(t)))
		idx := make([]int, n)
		for i := range idx {
			if f.bootstrap {
				idx[i] = rnd.Intn(n)
			} else {
				idx[i] = i
			}
		}
		g := &grower{
			x: x, y: y, classes: classes,
			maxDepth: f.maxDepth, maxFeatures: maxFeatures, minSamplesSplit: f.minSamplesSplit,
			rnd: rnd, gain: make([]float64, p),
		}
		g.grow(idx, 0)
		total := floats.Sum(g.gain)
		if total <= 0 {
			continue
		}
		floats.AddScaled(res.importances, 1/total, g.gain)
		res.splitTrees++
	}
	if s := floats.Sum(res.importances); s > 0 {
		floats.Scale(1/s, res.importances)
	}
	return res
}

// grower builds one tree and accumulates weighted impurity decreases.
type grower struct {
	x               [][]float64
	y               []int
	classes         int
	maxDepth        int
	maxFeatures     int
	minSamplesSplit int
	rnd             *rand.Rand
	gain            []float64
}

func (g *grower) grow(idx []int, depth int) {
	counts := g.counts(idx)
	imp := gini(counts, len(idx))
	if imp == 0 || len(idx) < g.minSamplesSplit || (g.maxDepth > 0 && depth >= g.maxDepth) {
		return
	}
	sp, ok := g.bestSplit(idx, imp)
	if !ok {
		return
	}
	var left, right []int
	for _, i := range idx {
		if g.x[sp.feature][i] <= sp.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return
	}
	g.gain[sp.feature] += sp.decrease
	g.grow(left, depth+1)
	g.grow(right, depth+1)
}

type split struct {
	feature   int
	threshold float64
	decrease  float64
}

// bestSplit draws features in random order until maxFeatures non-constant
// ones have been examined, and returns the threshold with the largest
// weighted impurity decrease.
func (g *grower) bestSplit(idx []int, parentImp float64) (split, bool) {
	best := split{decrease: -1}
	found := false
	visited := 0
	n := float64(len(idx))
	order := make([]int, len(idx))
	left := make([]int, g.classes)
	right := make([]int, g.classes)
	for _, f := range g.rnd.Perm(len(g.x)) {
		if visited >= g.maxFeatures {
			break
		}
		col := g.x[f]
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return col[order[a]] < col[order[b]] })
		if col[order[0]] == col[order[len(order)-1]] {
			continue
		}
		visited++
		for c := range left {
			left[c] = 0
		}
		copy(right, g.counts(idx))
		for k := 0; k < len(order)-1; k++ {
			c := g.y[order[k]]
			left[c]++
			right[c]--
			lo, hi := col[order[k]], col[order[k+1]]
			if lo == hi {
				continue
			}
			nl, nr := float64(k+1), n-float64(k+1)
			dec := n*parentImp - nl*gini(left, k+1) - nr*gini(right, len(order)-k-1)
			if dec > best.decrease {
				th := lo + (hi-lo)/2
				if math.IsNaN(th) || math.IsInf(th, 0) || th >= hi {
					th = lo
				}
				best = split{feature: f, threshold: th, decrease: dec}
				found = true
			}
		}
	}
	if best.decrease < 0 {
		best.decrease = 0
	}
	return best, found
}

func (g *grower) counts(idx []int) []int {
	out := make([]int, g.classes)
	for _, i := range idx {
		out[g.y[i]]++
	}
	return out
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	s := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		s += p * p
	}
	return 1 - s
}
