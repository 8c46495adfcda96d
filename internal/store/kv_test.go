package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	value := json.RawMessage(`{"a":1}`)
	require.NoError(t, kv.Set(ctx, "k", value))

	// Stored values do not alias the caller's buffer
	value[2] = 'b'
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	got[2] = 'c'
	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(again))
}

func TestMemoryKV_SetMany(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	require.NoError(t, kv.SetMany(ctx, map[string]json.RawMessage{
		"one": json.RawMessage(`1`),
		"two": json.RawMessage(`2`),
	}))

	assert.ElementsMatch(t, []string{"one", "two"}, kv.Keys())
	got, err := kv.Get(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))
}
