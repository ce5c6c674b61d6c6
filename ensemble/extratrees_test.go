package ensemble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/ensemble"
)

// forestData returns a problem where the first feature separates the classes
// and the second is noise.
func forestData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(12, 2, []float64{
		1.0, 0.3,
		1.2, 0.9,
		0.8, 0.1,
		1.1, 0.7,
		0.9, 0.5,
		1.3, 0.2,
		6.0, 0.4,
		6.2, 0.8,
		5.8, 0.6,
		6.1, 0.3,
		5.9, 0.9,
		6.3, 0.1,
	})
	y := mat.NewDense(12, 1, []float64{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1})
	return X, y
}

func TestExtraTreesClassifier_Fit(t *testing.T) {
	t.Run("separable data", func(t *testing.T) {
		X, y := forestData()
		et := ensemble.NewExtraTreesClassifier(ensemble.WithNEstimators(25))
		require.NoError(t, et.Fit(X, y))
		assert.True(t, et.IsFitted())
		assert.Equal(t, []int{0, 1}, et.Classes())
		assert.GreaterOrEqual(t, et.Score(X, y), 0.9)
	})

	t.Run("importances are non-negative and favor the signal", func(t *testing.T) {
		X, y := forestData()
		et := ensemble.NewExtraTreesClassifier(ensemble.WithNEstimators(50))
		require.NoError(t, et.Fit(X, y))

		importances := et.FeatureImportances()
		require.Len(t, importances, 2)
		for _, imp := range importances {
			assert.GreaterOrEqual(t, imp, 0.0)
		}
		assert.Greater(t, importances[0], importances[1])
	})

	t.Run("invalid estimator count", func(t *testing.T) {
		X, y := forestData()
		et := ensemble.NewExtraTreesClassifier(ensemble.WithNEstimators(0))
		require.Error(t, et.Fit(X, y))
	})

	t.Run("label shape mismatch", func(t *testing.T) {
		X := mat.NewDense(4, 2, nil)
		y := mat.NewDense(3, 1, nil)
		et := ensemble.NewExtraTreesClassifier()
		require.Error(t, et.Fit(X, y))
	})
}

func TestExtraTreesClassifier_Reproducible(t *testing.T) {
	X, y := forestData()

	a := ensemble.NewExtraTreesClassifier(
		ensemble.WithNEstimators(20),
		ensemble.WithETSeed(11),
	)
	b := ensemble.NewExtraTreesClassifier(
		ensemble.WithNEstimators(20),
		ensemble.WithETSeed(11),
	)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	assert.Equal(t, a.FeatureImportances(), b.FeatureImportances())

	predsA, err := a.Predict(X)
	require.NoError(t, err)
	predsB, err := b.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(predsA, predsB))
}

func TestExtraTreesClassifier_Predict(t *testing.T) {
	X, y := forestData()
	et := ensemble.NewExtraTreesClassifier(ensemble.WithNEstimators(10))
	require.NoError(t, et.Fit(X, y))

	t.Run("not fitted", func(t *testing.T) {
		fresh := ensemble.NewExtraTreesClassifier()
		_, err := fresh.Predict(X)
		require.Error(t, err)
	})

	t.Run("feature count mismatch", func(t *testing.T) {
		_, err := et.Predict(mat.NewDense(2, 5, nil))
		require.Error(t, err)
	})
}
