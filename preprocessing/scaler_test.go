package preprocessing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/preprocessing"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	t.Run("fit transform", func(t *testing.T) {
		scaler := preprocessing.NewStandardScalerDefault()
		scaled, err := scaler.FitTransform(X)
		require.NoError(t, err)

		r, c := scaled.Dims()
		require.Equal(t, 4, r)
		require.Equal(t, 2, c)

		// Each column should have zero mean and unit variance.
		for j := 0; j < c; j++ {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += scaled.At(i, j)
			}
			assert.InDelta(t, 0.0, sum/float64(r), 1e-9)
		}
	})

	t.Run("inverse transform roundtrip", func(t *testing.T) {
		scaler := preprocessing.NewStandardScalerDefault()
		scaled, err := scaler.FitTransform(X)
		require.NoError(t, err)

		restored, err := scaler.InverseTransform(scaled)
		require.NoError(t, err)

		r, c := restored.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				assert.InDelta(t, X.At(i, j), restored.At(i, j), 1e-9)
			}
		}
	})

	t.Run("transform before fit", func(t *testing.T) {
		scaler := preprocessing.NewStandardScalerDefault()
		_, err := scaler.Transform(X)
		require.Error(t, err)
	})
}

func TestMinMaxScaler(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		-1, 0,
		0, 5,
		1, 10,
	})

	t.Run("scales into unit range", func(t *testing.T) {
		scaler := preprocessing.NewMinMaxScalerDefault()
		scaled, err := scaler.FitTransform(X)
		require.NoError(t, err)

		r, c := scaled.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v := scaled.At(i, j)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
		assert.InDelta(t, 0.0, scaled.At(0, 0), 1e-12)
		assert.InDelta(t, 1.0, scaled.At(2, 0), 1e-12)
	})

	t.Run("custom range", func(t *testing.T) {
		scaler := preprocessing.NewMinMaxScaler([2]float64{-1, 1})
		scaled, err := scaler.FitTransform(X)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, scaled.At(0, 0), 1e-12)
		assert.InDelta(t, 1.0, scaled.At(2, 0), 1e-12)
	})
}
