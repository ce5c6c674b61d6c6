// Package tree implements decision tree classifiers. Trees report
// impurity-based feature importances, which is what the ensemble importance
// selector aggregates.
package tree

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/core/model"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// Splitter strategies.
const (
	// SplitterBest evaluates every candidate threshold and picks the best.
	SplitterBest = "best"
	// SplitterRandom draws one uniform threshold per candidate feature, as
	// in extremely randomized trees.
	SplitterRandom = "random"
)

// Node is a node in the decision tree.
type Node struct {
	IsLeaf       bool
	Feature      int     // Split feature (internal nodes)
	Threshold    float64 // Split threshold (internal nodes)
	Left         *Node   // Values <= threshold
	Right        *Node   // Values > threshold
	ClassCounts  []int   // Per-class sample counts at this node
	PredictClass int     // Majority class index
	Impurity     float64
	NSamples     int
	Depth        int
}

// DecisionTreeClassifier implements a decision tree for classification.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// Hyperparameters
	criterion           string  // "gini" or "entropy"
	splitter            string  // SplitterBest or SplitterRandom
	maxDepth            int     // 0 = unlimited
	minSamplesSplit     int     // Minimum samples to split a node
	minSamplesLeaf      int     // Minimum samples in a leaf
	maxFeatures         string  // "all", "sqrt" or "log2"
	minImpurityDecrease float64 // Minimum impurity decrease for a split
	seed                int64

	// Fitted state
	tree_               *Node
	nClasses_           int
	nFeatures_          int
	classes_            []int
	featureImportances_ []float64
	rng                 *rand.Rand
}

// DecisionTreeClassifierOption is a functional option.
type DecisionTreeClassifierOption func(*DecisionTreeClassifier)

// NewDecisionTreeClassifier creates a decision tree classifier with gini
// criterion, best-split strategy and all features considered at each split.
func NewDecisionTreeClassifier(opts ...DecisionTreeClassifierOption) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:               model.NewStateManager(),
		criterion:           "gini",
		splitter:            SplitterBest,
		maxDepth:            0,
		minSamplesSplit:     2,
		minSamplesLeaf:      1,
		maxFeatures:         "all",
		minImpurityDecrease: 0.0,
		seed:                0,
	}

	for _, opt := range opts {
		opt(dt)
	}

	return dt
}

// WithCriterion sets the splitting criterion ("gini" or "entropy").
func WithCriterion(criterion string) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.criterion = criterion
	}
}

// WithSplitter sets the split strategy (SplitterBest or SplitterRandom).
func WithSplitter(splitter string) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.splitter = splitter
	}
}

// WithMaxDepth sets the maximum tree depth. Zero means unlimited.
func WithMaxDepth(depth int) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum samples required to split a node.
func WithMinSamplesSplit(n int) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum samples required in a leaf.
func WithMinSamplesLeaf(n int) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesLeaf = n
	}
}

// WithMaxFeatures sets how many features are considered per split: "all",
// "sqrt" or "log2".
func WithMaxFeatures(maxFeatures string) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.maxFeatures = maxFeatures
	}
}

// WithMinImpurityDecrease sets the minimum impurity decrease for a split.
func WithMinImpurityDecrease(d float64) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minImpurityDecrease = d
	}
}

// WithTreeSeed sets the seed driving feature subsampling and random splits.
func WithTreeSeed(seed int64) DecisionTreeClassifierOption {
	return func(dt *DecisionTreeClassifier) {
		dt.seed = seed
	}
}

// Fit trains the decision tree on X (n_samples x n_features) and integer
// labels y (n_samples x 1).
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) (err error) {
	defer selgoErrors.Recover(&err, "DecisionTreeClassifier.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return selgoErrors.NewModelError("DecisionTreeClassifier.Fit", "empty data", selgoErrors.ErrEmptyData)
	}

	yRows, yCols := y.Dims()
	if yCols != 1 {
		return selgoErrors.NewDimensionError("DecisionTreeClassifier.Fit", 1, yCols, 1)
	}
	if nSamples != yRows {
		return selgoErrors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, yRows, 0)
	}

	if dt.splitter != SplitterBest && dt.splitter != SplitterRandom {
		return selgoErrors.NewValidationError("splitter", "must be \"best\" or \"random\"", dt.splitter)
	}
	if dt.criterion != "gini" && dt.criterion != "entropy" {
		return selgoErrors.NewValidationError("criterion", "must be \"gini\" or \"entropy\"", dt.criterion)
	}

	dt.rng = rand.New(rand.NewSource(dt.seed))
	dt.extractClasses(y)
	dt.nFeatures_ = nFeatures
	dt.featureImportances_ = make([]float64, nFeatures)

	yIndices := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		label := int(y.At(i, 0))
		for j, class := range dt.classes_ {
			if class == label {
				yIndices[i] = j
				break
			}
		}
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	xD := mat.DenseCopyOf(X)
	dt.tree_ = dt.buildTree(xD, yIndices, indices, 0)
	dt.normalizeFeatureImportances()

	dt.state.SetDimensions(nFeatures, nSamples)
	dt.state.SetFitted()
	return nil
}

// extractClasses identifies unique class labels, sorted ascending.
func (dt *DecisionTreeClassifier) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}

	dt.classes_ = make([]int, 0, len(classMap))
	for class := range classMap {
		dt.classes_ = append(dt.classes_, class)
	}
	sort.Ints(dt.classes_)
	dt.nClasses_ = len(dt.classes_)
}

// buildTree recursively grows the tree over the samples named by indices.
// Rows are partitioned by index; columns keep their original positions so
// importances accumulate against the right feature.
func (dt *DecisionTreeClassifier) buildTree(X *mat.Dense, y []int, indices []int, depth int) *Node {
	nSamples := len(indices)

	classCounts := make([]int, dt.nClasses_)
	for _, idx := range indices {
		classCounts[y[idx]]++
	}

	maxCount := 0
	predictClass := 0
	for i, count := range classCounts {
		if count > maxCount {
			maxCount = count
			predictClass = i
		}
	}

	impurity := dt.calculateImpurity(classCounts)

	node := &Node{
		ClassCounts:  classCounts,
		PredictClass: predictClass,
		Impurity:     impurity,
		NSamples:     nSamples,
		Depth:        depth,
	}

	if dt.shouldStop(nSamples, impurity, depth) {
		node.IsLeaf = true
		return node
	}

	bestFeature, bestThreshold, bestDecrease := dt.findSplit(X, y, indices, impurity)
	if bestFeature == -1 || bestDecrease < dt.minImpurityDecrease {
		node.IsLeaf = true
		return node
	}

	var leftIndices, rightIndices []int
	for _, idx := range indices {
		if X.At(idx, bestFeature) <= bestThreshold {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}

	if len(leftIndices) < dt.minSamplesLeaf || len(rightIndices) < dt.minSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	node.Feature = bestFeature
	node.Threshold = bestThreshold

	// Weight by node size so splits near the root count more.
	dt.featureImportances_[bestFeature] += bestDecrease * float64(nSamples)

	node.Left = dt.buildTree(X, y, leftIndices, depth+1)
	node.Right = dt.buildTree(X, y, rightIndices, depth+1)

	return node
}

// shouldStop checks the stopping criteria.
func (dt *DecisionTreeClassifier) shouldStop(nSamples int, impurity float64, depth int) bool {
	if dt.maxDepth > 0 && depth >= dt.maxDepth {
		return true
	}
	if nSamples < dt.minSamplesSplit {
		return true
	}
	if impurity == 0.0 {
		return true
	}
	return false
}

// calculateImpurity computes gini or entropy impurity from class counts.
func (dt *DecisionTreeClassifier) calculateImpurity(classCounts []int) float64 {
	total := 0
	for _, count := range classCounts {
		total += count
	}
	if total == 0 {
		return 0.0
	}

	if dt.criterion == "entropy" {
		impurity := 0.0
		for _, count := range classCounts {
			if count > 0 {
				p := float64(count) / float64(total)
				impurity -= p * math.Log2(p)
			}
		}
		return impurity
	}

	// gini
	sumSquared := 0.0
	for _, count := range classCounts {
		if count > 0 {
			p := float64(count) / float64(total)
			sumSquared += p * p
		}
	}
	return 1.0 - sumSquared
}

// candidateFeatures returns the features considered at one split, shuffled
// and truncated according to maxFeatures.
func (dt *DecisionTreeClassifier) candidateFeatures() []int {
	n := dt.nFeatures_
	k := n
	switch dt.maxFeatures {
	case "sqrt":
		k = int(math.Sqrt(float64(n)))
	case "log2":
		k = int(math.Log2(float64(n)))
	}
	if k < 1 {
		k = 1
	}
	if k >= n {
		features := make([]int, n)
		for i := range features {
			features[i] = i
		}
		return features
	}
	return dt.rng.Perm(n)[:k]
}

// findSplit finds a split over the candidate features, either exhaustively
// or with one random threshold per feature.
func (dt *DecisionTreeClassifier) findSplit(X *mat.Dense, y []int, indices []int, parentImpurity float64) (int, float64, float64) {
	bestFeature := -1
	bestThreshold := 0.0
	bestDecrease := 0.0

	for _, feature := range dt.candidateFeatures() {
		minV, maxV := X.At(indices[0], feature), X.At(indices[0], feature)
		for _, idx := range indices {
			v := X.At(idx, feature)
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		if minV == maxV {
			continue
		}

		var thresholds []float64
		if dt.splitter == SplitterRandom {
			thresholds = []float64{minV + dt.rng.Float64()*(maxV-minV)}
		} else {
			thresholds = dt.midpointThresholds(X, indices, feature)
		}

		for _, threshold := range thresholds {
			decrease, ok := dt.evaluateSplit(X, y, indices, feature, threshold, parentImpurity)
			if ok && decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestDecrease
}

// midpointThresholds returns the midpoints between consecutive distinct
// sorted values of the feature.
func (dt *DecisionTreeClassifier) midpointThresholds(X *mat.Dense, indices []int, feature int) []float64 {
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = X.At(idx, feature)
	}
	sort.Float64s(values)

	var thresholds []float64
	for i := 0; i < len(values)-1; i++ {
		if values[i] != values[i+1] {
			thresholds = append(thresholds, (values[i]+values[i+1])/2.0)
		}
	}
	return thresholds
}

// evaluateSplit computes the impurity decrease of one candidate split.
func (dt *DecisionTreeClassifier) evaluateSplit(X *mat.Dense, y []int, indices []int, feature int, threshold, parentImpurity float64) (float64, bool) {
	leftCounts := make([]int, dt.nClasses_)
	rightCounts := make([]int, dt.nClasses_)
	nLeft, nRight := 0, 0

	for _, idx := range indices {
		if X.At(idx, feature) <= threshold {
			leftCounts[y[idx]]++
			nLeft++
		} else {
			rightCounts[y[idx]]++
			nRight++
		}
	}

	if nLeft < dt.minSamplesLeaf || nRight < dt.minSamplesLeaf {
		return 0, false
	}

	nTotal := float64(nLeft + nRight)
	leftImpurity := dt.calculateImpurity(leftCounts)
	rightImpurity := dt.calculateImpurity(rightCounts)
	weightedImpurity := (float64(nLeft)*leftImpurity + float64(nRight)*rightImpurity) / nTotal

	return parentImpurity - weightedImpurity, true
}

// normalizeFeatureImportances scales the importances to sum to one.
func (dt *DecisionTreeClassifier) normalizeFeatureImportances() {
	sum := 0.0
	for _, imp := range dt.featureImportances_ {
		sum += imp
	}
	if sum > 0 {
		for i := range dt.featureImportances_ {
			dt.featureImportances_[i] /= sum
		}
	}
}

// Predict returns the predicted class label for each row of X.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "DecisionTreeClassifier.Predict")
	if !dt.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("DecisionTreeClassifier.Predict", dt.nFeatures_, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		node := dt.tree_
		for !node.IsLeaf {
			if X.At(i, node.Feature) <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		predictions.Set(i, 0, float64(dt.classes_[node.PredictClass]))
	}
	return predictions, nil
}

// PredictProba returns per-class probability estimates derived from leaf
// class counts, one column per class in ascending label order.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "DecisionTreeClassifier.PredictProba")
	if !dt.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("DecisionTreeClassifier.PredictProba", dt.nFeatures_, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, dt.nClasses_, nil)
	for i := 0; i < nSamples; i++ {
		node := dt.tree_
		for !node.IsLeaf {
			if X.At(i, node.Feature) <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}

		total := 0
		for _, count := range node.ClassCounts {
			total += count
		}
		for j := 0; j < dt.nClasses_; j++ {
			if total > 0 {
				probas.Set(i, j, float64(node.ClassCounts[j])/float64(total))
			}
		}
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := dt.Predict(X)
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

// FeatureImportances returns a copy of the normalized impurity-based
// importance scores.
func (dt *DecisionTreeClassifier) FeatureImportances() []float64 {
	if dt.featureImportances_ == nil {
		return nil
	}
	importances := make([]float64, len(dt.featureImportances_))
	copy(importances, dt.featureImportances_)
	return importances
}

// Classes returns the sorted class labels.
func (dt *DecisionTreeClassifier) Classes() []int {
	classes := make([]int, len(dt.classes_))
	copy(classes, dt.classes_)
	return classes
}

// IsFitted reports whether the tree has been trained.
func (dt *DecisionTreeClassifier) IsFitted() bool {
	return dt.state.IsFitted()
}

// Depth returns the maximum depth of the fitted tree.
func (dt *DecisionTreeClassifier) Depth() int {
	if dt.tree_ == nil {
		return 0
	}
	return maxDepth(dt.tree_)
}

func maxDepth(node *Node) int {
	if node == nil {
		return 0
	}
	if node.IsLeaf {
		return node.Depth
	}
	left := maxDepth(node.Left)
	right := maxDepth(node.Right)
	if left > right {
		return left
	}
	return right
}

// NLeaves returns the number of leaf nodes in the fitted tree.
func (dt *DecisionTreeClassifier) NLeaves() int {
	if dt.tree_ == nil {
		return 0
	}
	return countLeaves(dt.tree_)
}

func countLeaves(node *Node) int {
	if node == nil {
		return 0
	}
	if node.IsLeaf {
		return 1
	}
	return countLeaves(node.Left) + countLeaves(node.Right)
}
