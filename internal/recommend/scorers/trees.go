// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package scorers

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/lumen/internal/recommend/storage"
)

// TreeEnsemble is an additive ensemble of regression trees as exported from a
// gradient boosted model. Splits send x <= threshold left; NaN follows the
// node's default direction.
type TreeEnsemble struct {
	base        float64
	trees       [][]storage.NodeState
	numFeatures int
}

// NewTreeEnsemble validates a stored ensemble for numFeatures inputs.
//
// Children must have a larger index than their parent, which rules out
// cycles and bounds every walk by the node count.
func NewTreeEnsemble(state *storage.TreeEnsembleState, numFeatures int) (*TreeEnsemble, error) {
	if state == nil {
		return nil, errors.New("tree ensemble state is missing")
	}
	if len(state.Trees) == 0 {
		return nil, errors.New("tree ensemble has no trees")
	}
	if !isFinite(state.BaseScore) {
		return nil, fmt.Errorf("tree ensemble base score is %v", state.BaseScore)
	}

	trees := make([][]storage.NodeState, len(state.Trees))
	for t, tree := range state.Trees {
		if err := validateTree(tree.Nodes, numFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
		trees[t] = append([]storage.NodeState(nil), tree.Nodes...)
	}

	return &TreeEnsemble{
		base:        state.BaseScore,
		trees:       trees,
		numFeatures: numFeatures,
	}, nil
}

func validateTree(nodes []storage.NodeState, numFeatures int) error {
	if len(nodes) == 0 {
		return errors.New("no nodes")
	}
	for i, n := range nodes {
		if !isFinite(n.Value) {
			return fmt.Errorf("node %d value is %v", i, n.Value)
		}
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, numFeatures)
		}
		if math.IsNaN(n.Threshold) {
			return fmt.Errorf("node %d threshold is NaN", i)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

// Kind returns storage.KindTrees.
func (m *TreeEnsemble) Kind() string {
	return storage.KindTrees
}

// NumFeatures returns the input width.
func (m *TreeEnsemble) NumFeatures() int {
	return m.numFeatures
}

// Predict returns base + the sum of the reached leaf values.
func (m *TreeEnsemble) Predict(x []float64) float64 {
	y := m.base
	for _, nodes := range m.trees {
		i := 0
		for nodes[i].Feature >= 0 {
			i = next(&nodes[i], x)
		}
		y += nodes[i].Value
	}
	return y
}

// Attribute walks each decision path and credits the change in expected
// value at every split to the split feature. The bias is base plus the root
// values, so bias + sum(contribs) equals Predict(x).
func (m *TreeEnsemble) Attribute(x []float64) (contribs []float64, bias float64) {
	contribs = make([]float64, m.numFeatures)
	bias = m.base
	for _, nodes := range m.trees {
		bias += nodes[0].Value
		i := 0
		for nodes[i].Feature >= 0 {
			child := next(&nodes[i], x)
			contribs[nodes[i].Feature] += nodes[child].Value - nodes[i].Value
			i = child
		}
	}
	return contribs, bias
}

// State returns the serializable form.
func (m *TreeEnsemble) State() *storage.ModelState {
	trees := make([]storage.TreeState, len(m.trees))
	for t, nodes := range m.trees {
		trees[t] = storage.TreeState{Nodes: append([]storage.NodeState(nil), nodes...)}
	}
	return &storage.ModelState{
		Kind:  storage.KindTrees,
		Trees: &storage.TreeEnsembleState{BaseScore: m.base, Trees: trees},
	}
}

func next(n *storage.NodeState, x []float64) int {
	v := x[n.Feature]
	switch {
	case math.IsNaN(v):
		if n.DefaultLeft {
			return n.Left
		}
		return n.Right
	case v <= n.Threshold:
		return n.Left
	default:
		return n.Right
	}
}
