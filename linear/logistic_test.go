package linear_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/linear"
)

// trainingData returns a small binary problem where the first feature
// carries the signal and the second is constant.
func trainingData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 2, []float64{
		-2.0, 1.0,
		-1.5, 1.0,
		-1.0, 1.0,
		-0.5, 1.0,
		0.5, 1.0,
		1.0, 1.0,
		1.5, 1.0,
		2.0, 1.0,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestLogisticRegression_Fit(t *testing.T) {
	t.Run("lbfgs solver", func(t *testing.T) {
		X, y := trainingData()
		lr := linear.NewLogisticRegression()
		require.NoError(t, lr.Fit(X, y))
		assert.True(t, lr.IsFitted())

		coef := lr.Coef()
		require.Len(t, coef, 2)
		// The informative feature gets a positive weight.
		assert.Greater(t, coef[0], 0.0)

		assert.Equal(t, [2]int{0, 1}, lr.Classes())
		assert.GreaterOrEqual(t, lr.Score(X, y), 0.9)
	})

	t.Run("gradient descent solver", func(t *testing.T) {
		X, y := trainingData()
		lr := linear.NewLogisticRegression(
			linear.WithLRSolver("gd"),
			linear.WithLRMaxIter(500),
		)
		require.NoError(t, lr.Fit(X, y))
		assert.GreaterOrEqual(t, lr.Score(X, y), 0.9)
	})

	t.Run("more than two classes rejected", func(t *testing.T) {
		X := mat.NewDense(3, 1, []float64{1, 2, 3})
		y := mat.NewDense(3, 1, []float64{0, 1, 2})

		lr := linear.NewLogisticRegression()
		require.Error(t, lr.Fit(X, y))
	})

	t.Run("label shape mismatch", func(t *testing.T) {
		X := mat.NewDense(4, 2, nil)
		y := mat.NewDense(3, 1, nil)

		lr := linear.NewLogisticRegression()
		require.Error(t, lr.Fit(X, y))
	})

	t.Run("invalid solver", func(t *testing.T) {
		X, y := trainingData()
		lr := linear.NewLogisticRegression(linear.WithLRSolver("newton"))
		require.Error(t, lr.Fit(X, y))
	})
}

func TestLogisticRegression_Predict(t *testing.T) {
	X, y := trainingData()
	lr := linear.NewLogisticRegression()
	require.NoError(t, lr.Fit(X, y))

	t.Run("labels", func(t *testing.T) {
		preds, err := lr.Predict(X)
		require.NoError(t, err)

		r, c := preds.Dims()
		assert.Equal(t, 8, r)
		assert.Equal(t, 1, c)
	})

	t.Run("probabilities sum to one", func(t *testing.T) {
		probas, err := lr.PredictProba(X)
		require.NoError(t, err)

		r, c := probas.Dims()
		require.Equal(t, 2, c)
		for i := 0; i < r; i++ {
			assert.InDelta(t, 1.0, probas.At(i, 0)+probas.At(i, 1), 1e-9)
		}
	})

	t.Run("not fitted", func(t *testing.T) {
		fresh := linear.NewLogisticRegression()
		_, err := fresh.Predict(X)
		require.Error(t, err)
	})

	t.Run("feature count mismatch", func(t *testing.T) {
		_, err := lr.Predict(mat.NewDense(2, 3, nil))
		require.Error(t, err)
	})
}

func TestLogisticRegression_Reproducible(t *testing.T) {
	X, y := trainingData()

	a := linear.NewLogisticRegression(linear.WithLRSeed(42))
	b := linear.NewLogisticRegression(linear.WithLRSeed(42))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	assert.Equal(t, a.Coef(), b.Coef())
	assert.InDelta(t, a.Intercept(), b.Intercept(), 1e-12)
}
