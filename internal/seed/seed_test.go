package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	data, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var setCount int
	for _, theme := range data {
		assert.NotEmpty(t, theme.Name)
		assert.NotEmpty(t, theme.Sets, "theme %s has no sets", theme.Name)
		for _, set := range theme.Sets {
			assert.NotEmpty(t, set.Num)
			assert.NotEmpty(t, set.Name)
			assert.Positive(t, set.Year)
		}
		setCount += len(theme.Sets)
	}

	assert.Equal(t, 6, len(data))
	assert.Equal(t, 14, setCount)
}
