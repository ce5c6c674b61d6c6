// Package metrics provides classification metrics used to report on the
// predictive models wrapped by the feature selectors.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// ClassificationError calculates the fraction of incorrect predictions.
//
// Parameters:
//   - yTrue: Ground truth labels (integers)
//   - yPred: Predicted labels (integers)
//
// Returns:
//   - The error rate (between 0 and 1)
//   - An error if inputs are invalid
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, selgoErrors.NewValueError(
			"ClassificationError",
			"input vectors cannot be nil",
		)
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, selgoErrors.NewValueError(
			"ClassificationError",
			"input vectors cannot be empty",
		)
	}

	if n != yPred.Len() {
		return 0, selgoErrors.NewDimensionError(
			"ClassificationError",
			n,
			yPred.Len(),
			0,
		)
	}

	errorCount := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			errorCount++
		}
	}

	return float64(errorCount) / float64(n), nil
}

// Accuracy calculates the fraction of correct predictions.
//
// Parameters:
//   - yTrue: Ground truth labels
//   - yPred: Predicted labels
//
// Returns:
//   - The accuracy (between 0 and 1)
//   - An error if inputs are invalid
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	errorRate, err := ClassificationError(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1.0 - errorRate, nil
}

// AccuracyMatrix is a convenience wrapper for Accuracy that accepts column
// vectors as matrices, the shape the estimators produce.
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	tr, tc := yTrue.Dims()
	pr, pc := yPred.Dims()
	if tc != 1 {
		return 0, selgoErrors.NewDimensionError("AccuracyMatrix", 1, tc, 1)
	}
	if pc != 1 {
		return 0, selgoErrors.NewDimensionError("AccuracyMatrix", 1, pc, 1)
	}
	if tr != pr {
		return 0, selgoErrors.NewDimensionError("AccuracyMatrix", tr, pr, 0)
	}

	trueVec := mat.NewVecDense(tr, nil)
	predVec := mat.NewVecDense(pr, nil)
	for i := 0; i < tr; i++ {
		trueVec.SetVec(i, yTrue.At(i, 0))
		predVec.SetVec(i, yPred.At(i, 0))
	}

	return Accuracy(trueVec, predVec)
}

// ConfusionMatrix computes the confusion matrix for integer labels. The
// returned classes slice gives the row/column ordering (ascending); entry
// [i][j] counts samples of true class classes[i] predicted as classes[j].
func ConfusionMatrix(yTrue, yPred *mat.VecDense) ([][]int, []int, error) {
	if yTrue == nil || yPred == nil {
		return nil, nil, selgoErrors.NewValueError(
			"ConfusionMatrix",
			"input vectors cannot be nil",
		)
	}

	n := yTrue.Len()
	if n == 0 {
		return nil, nil, selgoErrors.NewValueError(
			"ConfusionMatrix",
			"input vectors cannot be empty",
		)
	}
	if n != yPred.Len() {
		return nil, nil, selgoErrors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}

	classSet := make(map[int]bool)
	for i := 0; i < n; i++ {
		classSet[int(yTrue.AtVec(i))] = true
		classSet[int(yPred.AtVec(i))] = true
	}

	classes := make([]int, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	index := make(map[int]int, len(classes))
	for i, class := range classes {
		index[class] = i
	}

	cm := make([][]int, len(classes))
	for i := range cm {
		cm[i] = make([]int, len(classes))
	}
	for i := 0; i < n; i++ {
		cm[index[int(yTrue.AtVec(i))]][index[int(yPred.AtVec(i))]]++
	}

	return cm, classes, nil
}
