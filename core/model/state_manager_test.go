package model_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selgo-ml/selgo/core/model"
)

func TestStateManager(t *testing.T) {
	t.Run("lifecycle", func(t *testing.T) {
		sm := model.NewStateManager()
		assert.False(t, sm.IsFitted())
		require.Error(t, sm.RequireFitted())

		sm.SetDimensions(8, 768)
		sm.SetFitted()
		assert.True(t, sm.IsFitted())
		require.NoError(t, sm.RequireFitted())

		nFeatures, nSamples := sm.GetDimensions()
		assert.Equal(t, 8, nFeatures)
		assert.Equal(t, 768, nSamples)

		sm.Reset()
		assert.False(t, sm.IsFitted())
		nFeatures, nSamples = sm.GetDimensions()
		assert.Equal(t, 0, nFeatures)
		assert.Equal(t, 0, nSamples)
	})

	t.Run("concurrent reads", func(t *testing.T) {
		sm := model.NewStateManager()
		sm.SetFitted()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = sm.IsFitted()
					_, _ = sm.GetDimensions()
				}
			}()
		}
		wg.Wait()
	})
}
