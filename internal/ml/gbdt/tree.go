package gbdt

import "sort"

// Node is one split or leaf of a regression tree. Every node, internal or
// leaf, carries the Newton-step value of its region so per-feature
// contributions can be decomposed along the decision path.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// Tree is a regression tree fit to gradient/hessian pairs with second-order
// leaf values (sum(grad) / (sum(hess) + lambda)).
type Tree struct {
	Nodes []Node `json:"nodes"`
}

type treeBuilder struct {
	x        [][]float64
	grad     []float64
	hess     []float64
	maxDepth int
	minLeaf  int
	lambda   float64
	nodes    []Node
}

func buildTree(x [][]float64, grad, hess []float64, maxDepth, minLeaf int, lambda float64) *Tree {
	b := &treeBuilder{x: x, grad: grad, hess: hess, maxDepth: maxDepth, minLeaf: minLeaf, lambda: lambda}
	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}
	b.grow(indices, 0)
	return &Tree{Nodes: b.nodes}
}

// grow appends the node for the given sample set and returns its index.
func (b *treeBuilder) grow(indices []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Value: b.leafValue(indices), Leaf: true})

	if depth >= b.maxDepth || len(indices) < 2*b.minLeaf {
		return id
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		return id
	}

	b.nodes[id].Leaf = false
	b.nodes[id].Feature = feature
	b.nodes[id].Threshold = threshold
	b.nodes[id].Left = b.grow(left, depth+1)
	b.nodes[id].Right = b.grow(right, depth+1)
	return id
}

func (b *treeBuilder) leafValue(indices []int) float64 {
	g, h := 0.0, 0.0
	for _, i := range indices {
		g += b.grad[i]
		h += b.hess[i]
	}
	return g / (h + b.lambda)
}

// bestSplit scans every feature for the split maximizing the second-order
// gain. Features and thresholds are visited in a fixed order so training is
// deterministic.
func (b *treeBuilder) bestSplit(indices []int) (int, float64, bool) {
	totalG, totalH := 0.0, 0.0
	for _, i := range indices {
		totalG += b.grad[i]
		totalH += b.hess[i]
	}
	parentScore := totalG * totalG / (totalH + b.lambda)

	bestGain := 1e-12
	bestFeature, bestThreshold := -1, 0.0

	dims := len(b.x[indices[0]])
	order := make([]int, len(indices))

	for f := 0; f < dims; f++ {
		copy(order, indices)
		sort.SliceStable(order, func(a, c int) bool {
			return b.x[order[a]][f] < b.x[order[c]][f]
		})

		leftG, leftH := 0.0, 0.0
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftG += b.grad[i]
			leftH += b.hess[i]

			cur, next := b.x[i][f], b.x[order[pos+1]][f]
			if cur == next {
				continue
			}
			if pos+1 < b.minLeaf || len(order)-pos-1 < b.minLeaf {
				continue
			}

			rightG, rightH := totalG-leftG, totalH-leftH
			gain := leftG*leftG/(leftH+b.lambda) +
				rightG*rightG/(rightH+b.lambda) - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// Predict returns the leaf value for a sample.
func (t *Tree) Predict(row []float64) float64 {
	id := 0
	for !t.Nodes[id].Leaf {
		n := t.Nodes[id]
		if row[n.Feature] <= n.Threshold {
			id = n.Left
		} else {
			id = n.Right
		}
	}
	return t.Nodes[id].Value
}

// Contributions walks the decision path, attributing each value change to the
// feature split at that step (local contribution decomposition). The returned
// delta satisfies root.Value + sum(contrib) == leaf value.
func (t *Tree) Contributions(row []float64, contrib []float64) float64 {
	id := 0
	for !t.Nodes[id].Leaf {
		n := t.Nodes[id]
		next := n.Left
		if row[n.Feature] > n.Threshold {
			next = n.Right
		}
		contrib[n.Feature] += t.Nodes[next].Value - n.Value
		id = next
	}
	return t.Nodes[0].Value
}
