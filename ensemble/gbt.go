// Package ensemble provides the library's default classifier: a binary
// gradient-boosted tree model over logistic loss.
package ensemble

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/shabarka/autoimpute/core/model"
	"github.com/shabarka/autoimpute/core/parallel"
	"github.com/shabarka/autoimpute/pkg/errors"
)

// rowParallelThreshold is the row count below which per-row work stays
// sequential.
const rowParallelThreshold = 512

// GradientBoostingClassifier is a binary classifier built from
// depth-limited regression trees boosted on logistic loss, using
// second-order (gradient and hessian) split gains and leaf values.
//
// NaN feature values are routed to the left child of every split, so
// predictor matrices carrying NaN for missing cells can be fitted
// directly, without imputation.
type GradientBoostingClassifier struct {
	state *model.StateManager

	// Hyperparameters
	nRounds        int
	learningRate   float64
	maxDepth       int
	minLeafSamples int
	lambda         float64 // L2 regularization on leaf values

	// Fitted state
	baseScore float64 // initial log-odds
	trees     []*treeNode
	nFeatures int
}

// Option is a functional option for GradientBoostingClassifier.
type Option func(*GradientBoostingClassifier)

// WithNumRounds sets the number of boosting rounds.
func WithNumRounds(n int) Option {
	return func(g *GradientBoostingClassifier) { g.nRounds = n }
}

// WithLearningRate sets the shrinkage applied to each tree.
func WithLearningRate(lr float64) Option {
	return func(g *GradientBoostingClassifier) { g.learningRate = lr }
}

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(d int) Option {
	return func(g *GradientBoostingClassifier) { g.maxDepth = d }
}

// WithMinLeafSamples sets the minimum sample count per leaf.
func WithMinLeafSamples(n int) Option {
	return func(g *GradientBoostingClassifier) { g.minLeafSamples = n }
}

// WithLambda sets the L2 regularization on leaf values.
func WithLambda(l float64) Option {
	return func(g *GradientBoostingClassifier) { g.lambda = l }
}

// NewGradientBoostingClassifier creates a classifier with the given
// options applied over the defaults.
func NewGradientBoostingClassifier(opts ...Option) *GradientBoostingClassifier {
	g := &GradientBoostingClassifier{
		state:          model.NewStateManager(),
		nRounds:        50,
		learningRate:   0.3,
		maxDepth:       3,
		minLeafSamples: 1,
		lambda:         1.0,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Clone returns an unfitted copy with the same hyperparameters.
func (g *GradientBoostingClassifier) Clone() model.Classifier {
	return NewGradientBoostingClassifier(
		WithNumRounds(g.nRounds),
		WithLearningRate(g.learningRate),
		WithMaxDepth(g.maxDepth),
		WithMinLeafSamples(g.minLeafSamples),
		WithLambda(g.lambda),
	)
}

// treeNode is one node of a regression tree. Leaves carry the boosted
// value; internal nodes split on feature <= threshold, NaN going left.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// Fit trains the boosted ensemble on features X and binary target y
// (n x 1, values 0 or 1).
func (g *GradientBoostingClassifier) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	yr, yc := y.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("GradientBoostingClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if yr != n {
		return errors.NewDimensionError("GradientBoostingClassifier.Fit", n, yr, 0)
	}
	if yc != 1 {
		return errors.NewDimensionError("GradientBoostingClassifier.Fit", 1, yc, 1)
	}

	labels := make([]float64, n)
	pos := 0.0
	for i := 0; i < n; i++ {
		labels[i] = y.At(i, 0)
		pos += labels[i]
	}
	prior := clampProb(pos / float64(n))
	g.baseScore = math.Log(prior / (1 - prior))
	g.nFeatures = p
	g.trees = g.trees[:0]

	margins := make([]float64, n)
	for i := range margins {
		margins[i] = g.baseScore
	}
	grads := make([]float64, n)
	hess := make([]float64, n)

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	for round := 0; round < g.nRounds; round++ {
		parallel.ParallelizeWithThreshold(n, rowParallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				prob := sigmoid(margins[i])
				grads[i] = prob - labels[i]
				hess[i] = math.Max(prob*(1-prob), 1e-16)
			}
		})

		root := g.buildNode(X, all, grads, hess, 0)
		g.trees = append(g.trees, root)

		parallel.ParallelizeWithThreshold(n, rowParallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				margins[i] += g.learningRate * evalTree(root, X, i)
			}
		})
	}

	g.state.SetDimensions(p, n)
	g.state.SetFitted()
	return nil
}

// buildNode grows one tree node over the sample subset rows.
func (g *GradientBoostingClassifier) buildNode(X mat.Matrix, rows []int, grads, hess []float64, depth int) *treeNode {
	var sumG, sumH float64
	for _, i := range rows {
		sumG += grads[i]
		sumH += hess[i]
	}
	leafValue := -sumG / (sumH + g.lambda)

	if depth >= g.maxDepth || len(rows) < 2*g.minLeafSamples {
		return &treeNode{leaf: true, value: leafValue}
	}

	split, ok := g.bestSplit(X, rows, grads, hess, sumG, sumH)
	if !ok {
		return &treeNode{leaf: true, value: leafValue}
	}

	var left, right []int
	for _, i := range rows {
		v := X.At(i, split.feature)
		if math.IsNaN(v) || v <= split.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   split.feature,
		threshold: split.threshold,
		left:      g.buildNode(X, left, grads, hess, depth+1),
		right:     g.buildNode(X, right, grads, hess, depth+1),
	}
}

type splitCandidate struct {
	feature   int
	threshold float64
	gain      float64
}

// bestSplit scans every feature for the threshold with the highest
// second-order gain. NaN rows always accompany the left partition.
func (g *GradientBoostingClassifier) bestSplit(X mat.Matrix, rows []int, grads, hess []float64, sumG, sumH float64) (splitCandidate, bool) {
	_, p := X.Dims()
	parent := sumG * sumG / (sumH + g.lambda)

	best := splitCandidate{gain: 1e-12}
	found := false

	for j := 0; j < p; j++ {
		var nanG, nanH float64
		nanCount := 0
		observed := make([]int, 0, len(rows))
		for _, i := range rows {
			if math.IsNaN(X.At(i, j)) {
				nanG += grads[i]
				nanH += hess[i]
				nanCount++
			} else {
				observed = append(observed, i)
			}
		}
		if len(observed) < 2 {
			continue
		}
		sort.Slice(observed, func(a, b int) bool {
			return X.At(observed[a], j) < X.At(observed[b], j)
		})

		leftG, leftH := nanG, nanH
		leftCount := nanCount
		for k := 0; k < len(observed)-1; k++ {
			i := observed[k]
			leftG += grads[i]
			leftH += hess[i]
			leftCount++

			cur := X.At(i, j)
			next := X.At(observed[k+1], j)
			if cur == next {
				continue
			}
			rightCount := len(rows) - leftCount
			if leftCount < g.minLeafSamples || rightCount < g.minLeafSamples {
				continue
			}

			rightG := sumG - leftG
			rightH := sumH - leftH
			gain := 0.5 * (leftG*leftG/(leftH+g.lambda) +
				rightG*rightG/(rightH+g.lambda) - parent)
			if gain > best.gain {
				best = splitCandidate{feature: j, threshold: (cur + next) / 2, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

// evalTree returns the tree's value for row i of X.
func evalTree(node *treeNode, X mat.Matrix, i int) float64 {
	for !node.leaf {
		v := X.At(i, node.feature)
		if math.IsNaN(v) || v <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// margin returns the raw boosted score for row i.
func (g *GradientBoostingClassifier) margin(X mat.Matrix, i int) float64 {
	score := g.baseScore
	for _, tree := range g.trees {
		score += g.learningRate * evalTree(tree, X, i)
	}
	return score
}

// Predict returns hard 0/1 class labels as an n x 1 matrix.
func (g *GradientBoostingClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := g.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if proba.At(i, 1) >= 0.5 {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

// PredictProba returns class membership probabilities as an n x 2
// matrix, column 1 holding P(class == 1).
func (g *GradientBoostingClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := g.state.RequireFitted("GradientBoostingClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if p != g.nFeatures {
		return nil, errors.NewDimensionError("GradientBoostingClassifier.PredictProba", g.nFeatures, p, 1)
	}

	out := mat.NewDense(n, 2, nil)
	parallel.ParallelizeWithThreshold(n, rowParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			prob := sigmoid(g.margin(X, i))
			out.Set(i, 0, 1-prob)
			out.Set(i, 1, prob)
		}
	})
	return out, nil
}

// GetParams returns the classifier's hyperparameters.
func (g *GradientBoostingClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_rounds":         g.nRounds,
		"learning_rate":    g.learningRate,
		"max_depth":        g.maxDepth,
		"min_leaf_samples": g.minLeafSamples,
		"lambda":           g.lambda,
	}
}

// String returns a description of the classifier.
func (g *GradientBoostingClassifier) String() string {
	return fmt.Sprintf("GradientBoostingClassifier(n_rounds=%d, learning_rate=%g, max_depth=%d)",
		g.nRounds, g.learningRate, g.maxDepth)
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func clampProb(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
