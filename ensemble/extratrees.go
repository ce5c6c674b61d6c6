// Package ensemble implements ensembles of randomized decision trees. The
// ExtraTreesClassifier is the engine behind ensemble feature importance: it
// trains a forest of extremely randomized trees and averages their
// impurity-based importances.
package ensemble

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/core/model"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
	"github.com/selgo-ml/selgo/tree"
)

// ExtraTreesClassifier implements an extremely randomized trees classifier.
// Each tree is grown on the full sample with random split thresholds and a
// random feature subset per split. Results are deterministic under a fixed
// seed.
type ExtraTreesClassifier struct {
	state *model.StateManager

	// Hyperparameters
	nEstimators     int
	criterion       string // "gini" or "entropy"
	maxDepth        int    // 0 = unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     string // "all", "sqrt" or "log2"
	seed            int64

	// Fitted state
	trees_              []*tree.DecisionTreeClassifier
	classes_            []int
	nFeatures_          int
	featureImportances_ []float64
}

// ExtraTreesClassifierOption is a functional option.
type ExtraTreesClassifierOption func(*ExtraTreesClassifier)

// NewExtraTreesClassifier creates an extra-trees classifier with 100 trees,
// gini criterion and sqrt feature subsampling.
func NewExtraTreesClassifier(opts ...ExtraTreesClassifierOption) *ExtraTreesClassifier {
	et := &ExtraTreesClassifier{
		state:           model.NewStateManager(),
		nEstimators:     100,
		criterion:       "gini",
		maxDepth:        0,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     "sqrt",
		seed:            0,
	}

	for _, opt := range opts {
		opt(et)
	}

	return et
}

// WithNEstimators sets the number of trees in the forest.
func WithNEstimators(n int) ExtraTreesClassifierOption {
	return func(et *ExtraTreesClassifier) {
		et.nEstimators = n
	}
}

// WithETCriterion sets the splitting criterion ("gini" or "entropy").
func WithETCriterion(criterion string) ExtraTreesClassifierOption {
	return func(et *ExtraTreesClassifier) {
		et.criterion = criterion
	}
}

// WithETMaxDepth sets the maximum depth of each tree. Zero means unlimited.
func WithETMaxDepth(depth int) ExtraTreesClassifierOption {
	return func(et *ExtraTreesClassifier) {
		et.maxDepth = depth
	}
}

// WithETMinSamplesSplit sets the minimum samples required to split a node.
func WithETMinSamplesSplit(n int) ExtraTreesClassifierOption {
	return func(et *ExtraTreesClassifier) {
		et.minSamplesSplit = n
	}
}

// WithETMinSamplesLeaf sets the minimum samples required in a leaf.
func WithETMinSamplesLeaf(n int) ExtraTreesClassifierOption {
	return func(et *ExtraTreesClassifier) {
		et.minSamplesLeaf = n
	}
}

// WithETMaxFeatures sets the per-split feature subsampling: "all", "sqrt" or
// "log2".
func WithETMaxFeatures(maxFeatures string) ExtraTreesClassifierOption {
	return func(et *ExtraTreesClassifier) {
		et.maxFeatures = maxFeatures
	}
}

// WithETSeed sets the seed for the forest. Per-tree seeds are derived from
// it, so a fixed seed makes the whole ensemble reproducible.
func WithETSeed(seed int64) ExtraTreesClassifierOption {
	return func(et *ExtraTreesClassifier) {
		et.seed = seed
	}
}

// Fit trains the forest on X (n_samples x n_features) and integer labels y
// (n_samples x 1).
func (et *ExtraTreesClassifier) Fit(X, y mat.Matrix) (err error) {
	defer selgoErrors.Recover(&err, "ExtraTreesClassifier.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return selgoErrors.NewModelError("ExtraTreesClassifier.Fit", "empty data", selgoErrors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return selgoErrors.NewDimensionError("ExtraTreesClassifier.Fit", 1, yCols, 1)
	}
	if nSamples != yRows {
		return selgoErrors.NewDimensionError("ExtraTreesClassifier.Fit", nSamples, yRows, 0)
	}
	if et.nEstimators < 1 {
		return selgoErrors.NewValidationError("n_estimators", "must be >= 1", et.nEstimators)
	}

	rng := rand.New(rand.NewSource(et.seed))
	et.nFeatures_ = nFeatures
	et.trees_ = make([]*tree.DecisionTreeClassifier, et.nEstimators)
	et.featureImportances_ = make([]float64, nFeatures)

	for t := 0; t < et.nEstimators; t++ {
		dt := tree.NewDecisionTreeClassifier(
			tree.WithCriterion(et.criterion),
			tree.WithSplitter(tree.SplitterRandom),
			tree.WithMaxFeatures(et.maxFeatures),
			tree.WithMaxDepth(et.maxDepth),
			tree.WithMinSamplesSplit(et.minSamplesSplit),
			tree.WithMinSamplesLeaf(et.minSamplesLeaf),
			tree.WithTreeSeed(rng.Int63()),
		)
		if err := dt.Fit(X, y); err != nil {
			return selgoErrors.Wrapf(err, "failed to fit tree %d", t)
		}
		et.trees_[t] = dt

		for j, imp := range dt.FeatureImportances() {
			et.featureImportances_[j] += imp
		}
	}

	// Average of per-tree normalized importances.
	for j := range et.featureImportances_ {
		et.featureImportances_[j] /= float64(et.nEstimators)
	}

	et.classes_ = et.trees_[0].Classes()

	et.state.SetDimensions(nFeatures, nSamples)
	et.state.SetFitted()
	return nil
}

// Predict returns the majority-vote class label for each row of X.
func (et *ExtraTreesClassifier) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "ExtraTreesClassifier.Predict")
	if !et.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("ExtraTreesClassifier", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != et.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("ExtraTreesClassifier.Predict", et.nFeatures_, nFeatures, 1)
	}

	votes := make([]map[int]int, nSamples)
	for i := range votes {
		votes[i] = make(map[int]int)
	}

	for _, dt := range et.trees_ {
		preds, err := dt.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := 0; i < nSamples; i++ {
			votes[i][int(preds.At(i, 0))]++
		}
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		bestClass := et.classes_[0]
		bestCount := -1
		// Iterate classes in sorted order for a deterministic tie-break.
		for _, class := range et.classes_ {
			if count := votes[i][class]; count > bestCount {
				bestCount = count
				bestClass = class
			}
		}
		predictions.Set(i, 0, float64(bestClass))
	}
	return predictions, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (et *ExtraTreesClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := et.Predict(X)
	if err != nil {
		return 0.0
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples)
}

// FeatureImportances returns a copy of the averaged per-feature importance
// scores. Scores are non-negative; no particular normalization is
// guaranteed.
func (et *ExtraTreesClassifier) FeatureImportances() []float64 {
	if et.featureImportances_ == nil {
		return nil
	}
	importances := make([]float64, len(et.featureImportances_))
	copy(importances, et.featureImportances_)
	return importances
}

// Classes returns the sorted class labels.
func (et *ExtraTreesClassifier) Classes() []int {
	classes := make([]int, len(et.classes_))
	copy(classes, et.classes_)
	return classes
}

// NEstimators returns the number of trees in the forest.
func (et *ExtraTreesClassifier) NEstimators() int {
	return et.nEstimators
}

// IsFitted reports whether the forest has been trained.
func (et *ExtraTreesClassifier) IsFitted() bool {
	return et.state.IsFitted()
}
