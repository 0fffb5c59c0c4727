package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority_CaseInsensitive(t *testing.T) {
	for _, s := range []string{"high", "HIGH", "High", " high "} {
		p, err := ParsePriority(s)
		require.NoError(t, err, s)
		assert.Equal(t, PriorityHigh, p)
	}
}

func TestParsePriority_Unknown(t *testing.T) {
	_, err := ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrUnknownPriority)
}
