package vectorstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointIDIsDeterministic(t *testing.T) {
	first := PointID("frontend.md-chunk-0")
	second := PointID("frontend.md-chunk-0")
	assert.Equal(t, first, second)

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestPointIDDistinguishesRecords(t *testing.T) {
	assert.NotEqual(t, PointID("frontend.md-chunk-0"), PointID("frontend.md-chunk-1"))
	assert.NotEqual(t, PointID("frontend.md-chunk-0"), PointID("deploy.md-chunk-0"))
}
