package rpc_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/containifyci/foundry/pkg/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadMessageRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	body := []byte(`{"jsonrpc":"2.0","method":"ping"}`)
	require.NoError(t, rpc.WriteMessage(&buf, body))

	r := rpc.NewReader(&buf)
	got, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestReadMessageMultipleFrames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rpc.WriteMessage(&buf, []byte(`{"a":1}`)))
	require.NoError(t, rpc.WriteMessage(&buf, []byte(`{"b":2}`)))

	r := rpc.NewReader(&buf)
	first, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(first))

	second, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(second))

	_, err = r.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadMessageMissingContentLength(t *testing.T) {
	raw := "X-Custom: 1\r\n\r\n{}"
	r := rpc.NewReader(bytes.NewBufferString(raw))
	_, err := r.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, ferr.InvalidData, ferr.Of(err))
}

func TestReadMessageRejectsOversizedContentLength(t *testing.T) {
	raw := fmt.Sprintf("Content-Length: %d\r\n\r\n", rpc.MaxContentLength+1)
	r := rpc.NewReader(bytes.NewBufferString(raw))
	_, err := r.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, ferr.InvalidData, ferr.Of(err))
}

func TestReadMessageMalformedHeaderLine(t *testing.T) {
	raw := "not-a-header-line\r\n\r\n"
	r := rpc.NewReader(bytes.NewBufferString(raw))
	_, err := r.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, ferr.InvalidData, ferr.Of(err))
}
