package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selgo-ml/selgo/ensemble"
	"github.com/selgo-ml/selgo/linear"
	"github.com/selgo-ml/selgo/selection"
)

func TestSelectFromModel_Fit(t *testing.T) {
	X, y := rfeData()

	t.Run("mean threshold keeps the strong features", func(t *testing.T) {
		et := ensemble.NewExtraTreesClassifier(
			ensemble.WithNEstimators(30),
			ensemble.WithETSeed(3),
		)
		sfm := selection.NewSelectFromModel(et)
		require.NoError(t, sfm.Fit(X, y))

		scores := sfm.Scores()
		require.Len(t, scores, 4)

		threshold := sfm.Threshold()
		for j, keep := range sfm.Support() {
			if keep {
				assert.GreaterOrEqual(t, scores[j], threshold)
			} else {
				assert.Less(t, scores[j], threshold)
			}
		}
	})

	t.Run("explicit threshold", func(t *testing.T) {
		et := ensemble.NewExtraTreesClassifier(ensemble.WithNEstimators(20))
		sfm := selection.NewSelectFromModel(et, selection.WithThreshold(0.0))
		require.NoError(t, sfm.Fit(X, y))

		// A zero threshold keeps everything with non-negative importance.
		assert.Len(t, selection.SupportIndices(sfm.Support()), 4)
	})

	t.Run("max features caps the selection", func(t *testing.T) {
		et := ensemble.NewExtraTreesClassifier(ensemble.WithNEstimators(20))
		sfm := selection.NewSelectFromModel(et,
			selection.WithThreshold(0.0),
			selection.WithMaxFeatures(2),
		)
		require.NoError(t, sfm.Fit(X, y))

		indices := selection.SupportIndices(sfm.Support())
		require.Len(t, indices, 2)

		// The capped selection keeps the highest-weighted features.
		scores := sfm.Scores()
		for _, kept := range indices {
			for j := range scores {
				if !sfm.Support()[j] {
					assert.GreaterOrEqual(t, scores[kept], scores[j])
				}
			}
		}
	})

	t.Run("coefficient-based estimator", func(t *testing.T) {
		sfm := selection.NewSelectFromModel(linear.NewLogisticRegression())
		require.NoError(t, sfm.Fit(X, y))
		assert.NotEmpty(t, selection.SupportIndices(sfm.Support()))
	})

	t.Run("nil estimator", func(t *testing.T) {
		sfm := selection.NewSelectFromModel(nil)
		require.Error(t, sfm.Fit(X, y))
	})
}

func TestSelectFromModel_Transform(t *testing.T) {
	X, y := rfeData()
	et := ensemble.NewExtraTreesClassifier(ensemble.WithNEstimators(20))
	sfm := selection.NewSelectFromModel(et, selection.WithMaxFeatures(2))

	t.Run("not fitted", func(t *testing.T) {
		_, err := sfm.Transform(X)
		require.Error(t, err)
	})

	t.Run("reduces columns", func(t *testing.T) {
		reduced, err := sfm.FitTransform(X, y)
		require.NoError(t, err)

		_, c := reduced.Dims()
		assert.LessOrEqual(t, c, 4)
	})
}

func TestSelectFromModel_Result(t *testing.T) {
	X, y := rfeData()
	et := ensemble.NewExtraTreesClassifier(ensemble.WithNEstimators(20))
	sfm := selection.NewSelectFromModel(et)
	require.NoError(t, sfm.Fit(X, y))

	result, err := sfm.Result()
	require.NoError(t, err)
	assert.Len(t, result.Scores, 4)
	assert.Len(t, result.Support, 4)
	assert.Nil(t, result.Ranking)
}
