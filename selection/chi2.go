package selection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// ScoreFunc computes one relevance score and one p-value per attribute
// column of X against the label vector y. Higher scores mean more relevant.
type ScoreFunc func(X, y mat.Matrix) (scores, pValues []float64, err error)

// Chi2 computes chi-squared statistics between each non-negative feature
// and the class label.
//
// For each feature the observed value per class is the sum of that feature
// over the class's samples; the expected value assumes the feature is
// distributed across classes proportionally to class frequency. The
// statistic follows a chi-squared distribution with (n_classes - 1) degrees
// of freedom, from which the p-value is derived.
//
// Non-negative input is a caller precondition. Unlike the underlying
// statistical routine in other libraries, Chi2 rejects negative values with
// a ValueError instead of silently producing invalid scores. A feature that
// sums to zero has an undefined statistic; it scores zero and raises a
// ConstantFeatureWarning.
func Chi2(X, y mat.Matrix) ([]float64, []float64, error) {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return nil, nil, selgoErrors.NewModelError("selection.Chi2", "empty data", selgoErrors.ErrEmptyData)
	}
	if err := checkLabelVector(y, nSamples, "selection.Chi2"); err != nil {
		return nil, nil, err
	}

	classIndex, classCounts := classDistribution(y, nSamples)
	nClasses := len(classCounts)
	if nClasses < 2 {
		return nil, nil, selgoErrors.NewValueError("selection.Chi2",
			"need at least 2 classes in y")
	}

	scores := make([]float64, nFeatures)
	pValues := make([]float64, nFeatures)
	chiDist := distuv.ChiSquared{K: float64(nClasses - 1)}

	for j := 0; j < nFeatures; j++ {
		observed := make([]float64, nClasses)
		total := 0.0
		for i := 0; i < nSamples; i++ {
			v := X.At(i, j)
			if v < 0 {
				return nil, nil, selgoErrors.NewValueError("selection.Chi2",
					fmt.Sprintf("negative value in feature column %d; chi-squared requires non-negative input", j))
			}
			observed[classIndex[int(y.At(i, 0))]] += v
			total += v
		}

		if total == 0 {
			selgoErrors.Warn(selgoErrors.NewConstantFeatureWarning("selection.Chi2", j, 0))
			scores[j] = 0
			pValues[j] = 1
			continue
		}

		stat := 0.0
		for c := 0; c < nClasses; c++ {
			expected := total * float64(classCounts[c]) / float64(nSamples)
			diff := observed[c] - expected
			stat += diff * diff / expected
		}

		scores[j] = stat
		pValues[j] = chiDist.Survival(stat)
	}

	return scores, pValues, nil
}

// FClassif computes the one-way ANOVA F-statistic between each feature and
// the class label. It accepts arbitrary-signed input and is the usual
// alternative to Chi2 when features are not non-negative.
func FClassif(X, y mat.Matrix) ([]float64, []float64, error) {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return nil, nil, selgoErrors.NewModelError("selection.FClassif", "empty data", selgoErrors.ErrEmptyData)
	}
	if err := checkLabelVector(y, nSamples, "selection.FClassif"); err != nil {
		return nil, nil, err
	}

	classIndex, classCounts := classDistribution(y, nSamples)
	nClasses := len(classCounts)
	if nClasses < 2 {
		return nil, nil, selgoErrors.NewValueError("selection.FClassif",
			"need at least 2 classes in y")
	}
	if nSamples <= nClasses {
		return nil, nil, selgoErrors.NewValueError("selection.FClassif",
			"need more samples than classes")
	}

	scores := make([]float64, nFeatures)
	pValues := make([]float64, nFeatures)
	fDist := distuv.F{
		D1: float64(nClasses - 1),
		D2: float64(nSamples - nClasses),
	}

	for j := 0; j < nFeatures; j++ {
		groupSums := make([]float64, nClasses)
		grandSum := 0.0
		for i := 0; i < nSamples; i++ {
			v := X.At(i, j)
			groupSums[classIndex[int(y.At(i, 0))]] += v
			grandSum += v
		}
		grandMean := grandSum / float64(nSamples)

		ssBetween := 0.0
		for c := 0; c < nClasses; c++ {
			groupMean := groupSums[c] / float64(classCounts[c])
			diff := groupMean - grandMean
			ssBetween += float64(classCounts[c]) * diff * diff
		}

		ssWithin := 0.0
		for i := 0; i < nSamples; i++ {
			c := classIndex[int(y.At(i, 0))]
			diff := X.At(i, j) - groupSums[c]/float64(classCounts[c])
			ssWithin += diff * diff
		}

		if ssWithin == 0 {
			selgoErrors.Warn(selgoErrors.NewConstantFeatureWarning("selection.FClassif", j, 0))
			scores[j] = 0
			pValues[j] = 1
			continue
		}

		msBetween := ssBetween / float64(nClasses-1)
		msWithin := ssWithin / float64(nSamples-nClasses)
		f := msBetween / msWithin

		scores[j] = f
		pValues[j] = fDist.Survival(f)
	}

	return scores, pValues, nil
}

// checkLabelVector validates that y is an (nSamples x 1) column vector.
func checkLabelVector(y mat.Matrix, nSamples int, op string) error {
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return selgoErrors.NewDimensionError(op, 1, yCols, 1)
	}
	if yRows != nSamples {
		return selgoErrors.NewDimensionError(op, nSamples, yRows, 0)
	}
	return nil
}

// classDistribution maps each integer label to a dense class index and
// counts samples per class.
func classDistribution(y mat.Matrix, nSamples int) (map[int]int, []int) {
	classIndex := make(map[int]int)
	var classCounts []int
	for i := 0; i < nSamples; i++ {
		label := int(y.At(i, 0))
		if _, ok := classIndex[label]; !ok {
			classIndex[label] = len(classCounts)
			classCounts = append(classCounts, 0)
		}
		classCounts[classIndex[label]]++
	}
	return classIndex, classCounts
}
