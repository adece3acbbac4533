package core

import (
	"encoding/json"
	"fmt"
	"os"
)

const leafNode = -1

// forestTree mirrors the node arrays of a fitted decision tree. Node i splits
// on Feature[i] at Threshold[i]; ChildrenLeft[i] == -1 marks a leaf whose
// per-class weights are Value[i].
type forestTree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type forestArtifact struct {
	NFeatures int          `json:"n_features"`
	Classes   []float64    `json:"classes"`
	Trees     []forestTree `json:"trees"`
}

// ForestModel is a random forest classifier exported to JSON. Prediction is
// the class with the highest mean leaf probability across trees.
type ForestModel struct {
	nFeatures int
	classes   []float64
	trees     []forestTree
}

func LoadForestModel(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forest artifact: %w", err)
	}

	var artifact forestArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse forest artifact: %w", err)
	}

	model, err := newForestModel(artifact.NFeatures, artifact.Classes, artifact.Trees)
	if err != nil {
		return nil, err
	}
	return model, nil
}

func newForestModel(nFeatures int, classes []float64, trees []forestTree) (*ForestModel, error) {
	if nFeatures <= 0 {
		return nil, fmt.Errorf("n_features must be positive, got %d", nFeatures)
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("forest has no classes")
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	for i, tree := range trees {
		if err := tree.validate(nFeatures, len(classes)); err != nil {
			return nil, fmt.Errorf("invalid tree %d: %w", i, err)
		}
	}
	return &ForestModel{nFeatures: nFeatures, classes: classes, trees: trees}, nil
}

func (t *forestTree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have mismatched lengths")
	}
	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafNode {
			if len(t.Value[i]) != nClasses {
				return fmt.Errorf("leaf %d has %d class weights, expected %d", i, len(t.Value[i]), nClasses)
			}
			continue
		}
		// Children always come after their parent, which also rules out cycles.
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has invalid children %d, %d", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on invalid feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// leaf returns the normalized class distribution for one sample.
func (t *forestTree) leaf(x []float32) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leafNode {
		if float64(x[t.Feature[node]]) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

func (m *ForestModel) InputShape() []int64 {
	return []int64{1, int64(m.nFeatures)}
}

// Predict evaluates a single row of n_features values and returns the
// predicted class value.
func (m *ForestModel) Predict(input []float32) ([]float32, error) {
	if len(input) != m.nFeatures {
		return nil, fmt.Errorf("X has %d features, but the forest is expecting %d features as input", len(input), m.nFeatures)
	}

	proba := make([]float64, len(m.classes))
	for i := range m.trees {
		weights := m.trees[i].leaf(input)
		var total float64
		for _, w := range weights {
			total += w
		}
		if total == 0 {
			continue
		}
		for c, w := range weights {
			proba[c] += w / total
		}
	}

	best := 0
	for c := range proba {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return []float32{float32(m.classes[best])}, nil
}

func (m *ForestModel) Release() {}
