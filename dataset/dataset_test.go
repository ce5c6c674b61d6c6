package dataset_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/dataset"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

func TestNew(t *testing.T) {
	t.Run("valid data", func(t *testing.T) {
		x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
		y := mat.NewDense(3, 1, []float64{0, 1, 0})

		ds, err := dataset.New(x, y)
		require.NoError(t, err)
		assert.Equal(t, 3, ds.NumSamples())
		assert.Equal(t, 2, ds.NumFeatures())
	})

	t.Run("nil data", func(t *testing.T) {
		_, err := dataset.New(nil, nil)
		require.Error(t, err)
		assert.True(t, selgoErrors.Is(err, selgoErrors.ErrEmptyData))
	})

	t.Run("row count mismatch", func(t *testing.T) {
		x := mat.NewDense(3, 2, nil)
		y := mat.NewDense(2, 1, nil)

		_, err := dataset.New(x, y)
		require.Error(t, err)

		var dimErr *selgoErrors.DimensionError
		assert.True(t, selgoErrors.As(err, &dimErr))
	})

	t.Run("y must be a column vector", func(t *testing.T) {
		x := mat.NewDense(3, 2, nil)
		y := mat.NewDense(3, 2, nil)

		_, err := dataset.New(x, y)
		require.Error(t, err)
	})

	t.Run("feature names", func(t *testing.T) {
		x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		y := mat.NewDense(2, 1, []float64{0, 1})

		ds, err := dataset.New(x, y, dataset.WithFeatureNames([]string{"a", "b"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ds.FeatureNames())
		assert.Equal(t, "b", ds.FeatureName(1))
	})

	t.Run("feature name count mismatch", func(t *testing.T) {
		x := mat.NewDense(2, 2, nil)
		y := mat.NewDense(2, 1, nil)

		_, err := dataset.New(x, y, dataset.WithFeatureNames([]string{"a"}))
		require.Error(t, err)
	})

	t.Run("fallback feature name", func(t *testing.T) {
		x := mat.NewDense(2, 2, nil)
		y := mat.NewDense(2, 1, nil)

		ds, err := dataset.New(x, y)
		require.NoError(t, err)
		assert.Equal(t, "x1", ds.FeatureName(1))
	})
}

func TestLoadCSV(t *testing.T) {
	t.Run("valid rows", func(t *testing.T) {
		csv := "1,2,3,0\n4,5,6,1\n7,8,9,0\n"

		ds, err := dataset.LoadCSV(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, 3, ds.NumSamples())
		assert.Equal(t, 3, ds.NumFeatures())
		assert.InDelta(t, 5.0, ds.X().At(1, 1), 1e-12)
		assert.InDelta(t, 1.0, ds.Y().At(1, 0), 1e-12)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := dataset.LoadCSV(strings.NewReader(""))
		require.Error(t, err)
		assert.True(t, selgoErrors.Is(err, selgoErrors.ErrEmptyData))
	})

	t.Run("ragged rows", func(t *testing.T) {
		csv := "1,2,0\n3,4\n"

		_, err := dataset.LoadCSV(strings.NewReader(csv))
		require.Error(t, err)

		var dimErr *selgoErrors.DimensionError
		assert.True(t, selgoErrors.As(err, &dimErr))
	})

	t.Run("non-numeric field", func(t *testing.T) {
		csv := "1,abc,0\n"

		_, err := dataset.LoadCSV(strings.NewReader(csv))
		require.Error(t, err)

		var valErr *selgoErrors.ValueError
		assert.True(t, selgoErrors.As(err, &valErr))
	})

	t.Run("single column rejected", func(t *testing.T) {
		_, err := dataset.LoadCSV(strings.NewReader("1\n2\n"))
		require.Error(t, err)
	})
}

func TestSelectColumns(t *testing.T) {
	X := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})

	t.Run("keeps order", func(t *testing.T) {
		sub, err := dataset.SelectColumns(X, []int{0, 2})
		require.NoError(t, err)

		r, c := sub.Dims()
		assert.Equal(t, 2, r)
		assert.Equal(t, 2, c)
		assert.InDelta(t, 3.0, sub.At(0, 1), 1e-12)
		assert.InDelta(t, 7.0, sub.At(1, 1), 1e-12)
	})

	t.Run("empty selection", func(t *testing.T) {
		_, err := dataset.SelectColumns(X, nil)
		require.Error(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := dataset.SelectColumns(X, []int{4})
		require.Error(t, err)
	})
}
