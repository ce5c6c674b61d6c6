package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/tree"
)

// separableData returns a problem where the second feature separates the
// classes perfectly and the first is noise.
func separableData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 2, []float64{
		0.3, 1.0,
		0.9, 2.0,
		0.1, 1.5,
		0.7, 2.5,
		0.2, 7.0,
		0.8, 8.0,
		0.4, 7.5,
		0.6, 8.5,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestDecisionTreeClassifier_Fit(t *testing.T) {
	t.Run("best splitter separates classes", func(t *testing.T) {
		X, y := separableData()
		dt := tree.NewDecisionTreeClassifier()
		require.NoError(t, dt.Fit(X, y))
		assert.True(t, dt.IsFitted())
		assert.Equal(t, []int{0, 1}, dt.Classes())
		assert.InDelta(t, 1.0, dt.Score(X, y), 1e-12)
	})

	t.Run("importances sum to one", func(t *testing.T) {
		X, y := separableData()
		dt := tree.NewDecisionTreeClassifier()
		require.NoError(t, dt.Fit(X, y))

		importances := dt.FeatureImportances()
		require.Len(t, importances, 2)
		sum := 0.0
		for _, imp := range importances {
			assert.GreaterOrEqual(t, imp, 0.0)
			sum += imp
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		// The informative feature dominates.
		assert.Greater(t, importances[1], importances[0])
	})

	t.Run("entropy criterion", func(t *testing.T) {
		X, y := separableData()
		dt := tree.NewDecisionTreeClassifier(tree.WithCriterion("entropy"))
		require.NoError(t, dt.Fit(X, y))
		assert.InDelta(t, 1.0, dt.Score(X, y), 1e-12)
	})

	t.Run("max depth limits the tree", func(t *testing.T) {
		X, y := separableData()
		dt := tree.NewDecisionTreeClassifier(tree.WithMaxDepth(1))
		require.NoError(t, dt.Fit(X, y))
		assert.LessOrEqual(t, dt.Depth(), 1)
	})

	t.Run("invalid criterion", func(t *testing.T) {
		X, y := separableData()
		dt := tree.NewDecisionTreeClassifier(tree.WithCriterion("mse"))
		require.Error(t, dt.Fit(X, y))
	})

	t.Run("label shape mismatch", func(t *testing.T) {
		X := mat.NewDense(4, 2, nil)
		y := mat.NewDense(3, 1, nil)
		dt := tree.NewDecisionTreeClassifier()
		require.Error(t, dt.Fit(X, y))
	})
}

func TestDecisionTreeClassifier_RandomSplitter(t *testing.T) {
	X, y := separableData()

	t.Run("reproducible under fixed seed", func(t *testing.T) {
		a := tree.NewDecisionTreeClassifier(
			tree.WithSplitter(tree.SplitterRandom),
			tree.WithTreeSeed(7),
		)
		b := tree.NewDecisionTreeClassifier(
			tree.WithSplitter(tree.SplitterRandom),
			tree.WithTreeSeed(7),
		)
		require.NoError(t, a.Fit(X, y))
		require.NoError(t, b.Fit(X, y))

		assert.Equal(t, a.FeatureImportances(), b.FeatureImportances())

		predsA, err := a.Predict(X)
		require.NoError(t, err)
		predsB, err := b.Predict(X)
		require.NoError(t, err)
		assert.True(t, mat.Equal(predsA, predsB))
	})

	t.Run("sqrt feature subsampling", func(t *testing.T) {
		dt := tree.NewDecisionTreeClassifier(
			tree.WithSplitter(tree.SplitterRandom),
			tree.WithMaxFeatures("sqrt"),
			tree.WithTreeSeed(7),
		)
		require.NoError(t, dt.Fit(X, y))
		assert.True(t, dt.IsFitted())
	})
}

func TestDecisionTreeClassifier_Predict(t *testing.T) {
	X, y := separableData()
	dt := tree.NewDecisionTreeClassifier()
	require.NoError(t, dt.Fit(X, y))

	t.Run("not fitted", func(t *testing.T) {
		fresh := tree.NewDecisionTreeClassifier()
		_, err := fresh.Predict(X)
		require.Error(t, err)
	})

	t.Run("feature count mismatch", func(t *testing.T) {
		_, err := dt.Predict(mat.NewDense(2, 3, nil))
		require.Error(t, err)
	})

	t.Run("probabilities are distributions", func(t *testing.T) {
		probas, err := dt.PredictProba(X)
		require.NoError(t, err)

		r, c := probas.Dims()
		require.Equal(t, 2, c)
		for i := 0; i < r; i++ {
			sum := 0.0
			for j := 0; j < c; j++ {
				sum += probas.At(i, j)
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		}
	})
}
