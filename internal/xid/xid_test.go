package xid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsPrefixedUUID(t *testing.T) {
	id := New("req")
	require.True(t, strings.HasPrefix(id, "req-"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "req-"))
	assert.NoError(t, err)
	assert.NotEqual(t, id, New("req"))
}

func TestNewWithoutPrefix(t *testing.T) {
	_, err := uuid.Parse(New(""))
	assert.NoError(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(New("req")))
	assert.True(t, Valid("upstream_42.a"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("bad id"))
	assert.False(t, Valid("line\nbreak"))
	assert.False(t, Valid(strings.Repeat("a", 129)))
}
