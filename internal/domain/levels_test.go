package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorbarLevels(t *testing.T) {
	assert.Equal(t, []float64{-10, -8, -6, -4, -2, 2, 4, 6, 8, 10}, ColorbarLevels(10, 2))
	assert.Equal(t, []float64{-1, -0.5, 0.5, 1}, ColorbarLevels(1, 0.5))
	assert.Nil(t, ColorbarLevels(0, 1))
	assert.Nil(t, ColorbarLevels(1, -1))
}
