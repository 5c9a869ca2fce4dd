package docstore

import (
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "model/missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Put(ctx, "model/1", []byte(`{"resource": "model/1"}`)))
	doc, err := s.Get(ctx, "model/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"resource": "model/1"}`, string(doc))

	require.NoError(t, s.Put(ctx, "model/1", []byte(`{"resource": "model/1", "v": 2}`)))
	doc, err = s.Get(ctx, "model/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"resource": "model/1", "v": 2}`, string(doc))

	assert.NoError(t, s.Close(ctx))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesDocuments(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	doc := []byte(`{}`)
	require.NoError(t, s.Put(ctx, "model/1", doc))
	doc[0] = '['
	got, err := s.Get(ctx, "model/1")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	_, err := s.Get(ctx, "model/1")
	assert.Error(t, err)
	assert.Error(t, s.Put(ctx, "model/1", []byte(`{}`)))
}

func TestDirStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDirStore(filepath.Join(dir, "docs"))
	require.NoError(t, err)
	testStore(t, s)

	data, err := ioutil.ReadFile(filepath.Join(dir, "docs", "model_1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"v": 2`)
}

func TestDirStoreRejectsEscapingIDs(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "../model/1")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Error(t, s.Put(context.Background(), "", []byte(`{}`)))
}
