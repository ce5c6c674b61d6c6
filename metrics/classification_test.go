package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/metrics"
)

func TestClassificationError(t *testing.T) {
	t.Run("mixed predictions", func(t *testing.T) {
		yTrue := mat.NewVecDense(4, []float64{0, 1, 1, 0})
		yPred := mat.NewVecDense(4, []float64{0, 1, 0, 0})

		rate, err := metrics.ClassificationError(yTrue, yPred)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, rate, 1e-12)
	})

	t.Run("nil input", func(t *testing.T) {
		_, err := metrics.ClassificationError(nil, nil)
		require.Error(t, err)
	})

	t.Run("length mismatch", func(t *testing.T) {
		yTrue := mat.NewVecDense(3, []float64{0, 1, 0})
		yPred := mat.NewVecDense(2, []float64{0, 1})

		_, err := metrics.ClassificationError(yTrue, yPred)
		require.Error(t, err)
	})
}

func TestAccuracy(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{0, 1, 1, 0})
	yPred := mat.NewVecDense(4, []float64{0, 1, 1, 1})

	acc, err := metrics.Accuracy(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-12)
}

func TestAccuracyMatrix(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{0, 1, 1})
	yPred := mat.NewDense(3, 1, []float64{0, 1, 0})

	acc, err := metrics.AccuracyMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, acc, 1e-12)

	_, err = metrics.AccuracyMatrix(mat.NewDense(3, 2, nil), yPred)
	require.Error(t, err)
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{0, 0, 1, 1, 1})
	yPred := mat.NewVecDense(5, []float64{0, 1, 1, 1, 0})

	cm, classes, err := metrics.ConfusionMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, classes)
	assert.Equal(t, [][]int{{1, 1}, {1, 2}}, cm)
}
