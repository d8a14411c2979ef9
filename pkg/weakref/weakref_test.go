package weakref_test

import (
	"testing"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/weakref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBeforeInvalidate(t *testing.T) {
	owner := weakref.NewOwner(&struct{ N int }{N: 7})
	ref := owner.Ref()

	v, err := ref.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 7, v.N)
}

func TestResolveAfterInvalidate(t *testing.T) {
	owner := weakref.NewOwner(&struct{ N int }{N: 7})
	ref := owner.Ref()

	owner.Invalidate()

	_, err := ref.Resolve()
	require.Error(t, err)
	assert.True(t, ferr.Is(err, ferr.Disposed))
}

func TestInvalidateIsIdempotent(t *testing.T) {
	owner := weakref.NewOwner(&struct{}{})
	owner.Invalidate()
	owner.Invalidate()
	_, err := owner.Ref().Resolve()
	assert.True(t, ferr.Is(err, ferr.Disposed))
}
