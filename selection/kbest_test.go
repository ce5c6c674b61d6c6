package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/selection"
)

// eightFeatureData returns non-negative data with eight features whose
// class dependence decreases with the column index.
func eightFeatureData() (*mat.Dense, *mat.Dense) {
	nSamples := 10
	X := mat.NewDense(nSamples, 8, nil)
	y := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		class := 0.0
		if i >= nSamples/2 {
			class = 1.0
		}
		y.Set(i, 0, class)
		for j := 0; j < 8; j++ {
			// The lower the column index, the larger the class offset.
			base := 1.0 + float64(i%3)*0.1
			X.Set(i, j, base+class*float64(8-j))
		}
	}
	return X, y
}

func TestSelectKBest_Fit(t *testing.T) {
	X, y := eightFeatureData()

	t.Run("scores cover every feature for any k", func(t *testing.T) {
		for k := 1; k <= 8; k++ {
			kb := selection.NewSelectKBest(selection.Chi2, selection.WithK(k))
			require.NoError(t, kb.Fit(X, y))

			assert.Len(t, kb.Scores(), 8)
			assert.Len(t, kb.PValues(), 8)

			retained := 0
			for _, keep := range kb.Support() {
				if keep {
					retained++
				}
			}
			assert.Equal(t, k, retained)
		}
	})

	t.Run("keeps the top scoring features", func(t *testing.T) {
		kb := selection.NewSelectKBest(selection.Chi2, selection.WithK(3))
		require.NoError(t, kb.Fit(X, y))

		scores := kb.Scores()
		support := kb.Support()
		for j, keep := range support {
			if keep {
				continue
			}
			// Every dropped feature scores no higher than every kept one.
			for i, kept := range support {
				if kept {
					assert.LessOrEqual(t, scores[j], scores[i])
				}
			}
		}
	})

	t.Run("k out of range", func(t *testing.T) {
		kb := selection.NewSelectKBest(selection.Chi2, selection.WithK(9))
		require.Error(t, kb.Fit(X, y))

		kb = selection.NewSelectKBest(selection.Chi2, selection.WithK(0))
		require.Error(t, kb.Fit(X, y))
	})

	t.Run("nil score function", func(t *testing.T) {
		kb := selection.NewSelectKBest(nil, selection.WithK(2))
		require.Error(t, kb.Fit(X, y))
	})
}

func TestSelectKBest_Transform(t *testing.T) {
	X, y := eightFeatureData()

	t.Run("keeps original column order", func(t *testing.T) {
		kb := selection.NewSelectKBest(selection.Chi2, selection.WithK(4))
		reduced, err := kb.FitTransform(X, y)
		require.NoError(t, err)

		r, c := reduced.Dims()
		assert.Equal(t, 10, r)
		assert.Equal(t, 4, c)

		indices := selection.SupportIndices(kb.Support())
		require.Len(t, indices, 4)
		for i := 0; i < r; i++ {
			for pos, j := range indices {
				assert.InDelta(t, X.At(i, j), reduced.At(i, pos), 1e-12)
			}
		}
	})

	t.Run("not fitted", func(t *testing.T) {
		kb := selection.NewSelectKBest(selection.Chi2)
		_, err := kb.Transform(X)
		require.Error(t, err)
	})

	t.Run("feature count mismatch", func(t *testing.T) {
		kb := selection.NewSelectKBest(selection.Chi2, selection.WithK(2))
		require.NoError(t, kb.Fit(X, y))

		_, err := kb.Transform(mat.NewDense(2, 5, nil))
		require.Error(t, err)
	})
}

func TestSelectKBest_Result(t *testing.T) {
	X, y := eightFeatureData()
	kb := selection.NewSelectKBest(selection.Chi2, selection.WithK(4))

	_, err := kb.Result()
	require.Error(t, err)

	require.NoError(t, kb.Fit(X, y))
	result, err := kb.Result()
	require.NoError(t, err)
	assert.Len(t, result.Scores, 8)
	assert.Len(t, result.PValues, 8)
	assert.Len(t, result.Support, 8)
	assert.Nil(t, result.Ranking)
	assert.Nil(t, result.ExplainedVarianceRatio)
}
