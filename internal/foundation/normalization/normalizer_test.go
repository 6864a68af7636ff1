package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

const (
	levelInfo level = iota
	levelDebug
	levelWarn
)

func newLevels() *Normalizer[level] {
	return New("log level", map[string]level{
		"info":    levelInfo,
		"debug":   levelDebug,
		"warn":    levelWarn,
		"WARNING": levelWarn,
	}, levelInfo)
}

func TestNormalize(t *testing.T) {
	n := newLevels()
	assert.Equal(t, levelDebug, n.Normalize("  DEBUG "))
	assert.Equal(t, levelWarn, n.Normalize("warning"))
	assert.Equal(t, levelInfo, n.Normalize("nonsense"))
}

func TestParse(t *testing.T) {
	n := newLevels()

	v, err := n.Parse("")
	require.NoError(t, err)
	assert.Equal(t, levelInfo, v)

	v, err = n.Parse("Warn")
	require.NoError(t, err)
	assert.Equal(t, levelWarn, v)

	_, err = n.Parse("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
	assert.Contains(t, err.Error(), "debug, info, warn, warning")
}

func TestKeysAreCopied(t *testing.T) {
	n := newLevels()
	keys := n.Keys()
	keys[0] = "mutated"
	assert.Equal(t, "debug", n.Keys()[0])
	assert.True(t, n.Valid("INFO"))
	assert.False(t, n.Valid("trace"))
}
