package jsonstore_test

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/kv"
)

func newAdapter(store kv.Store) (*jsonstore.Adapter, *bytes.Buffer) {
	var buf bytes.Buffer
	return jsonstore.New(store, log.New(&buf, "", 0)), &buf
}

func TestLoadMissingKey(t *testing.T) {
	a, _ := newAdapter(kv.NewMemory())
	assert.Empty(t, a.Load())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := kv.NewMemory()
	a, _ := newAdapter(store)

	items := []model.LocalTodo{
		{ID: "b", Text: "second", Completed: true},
		{ID: "a", Text: "first"},
	}
	a.Save(items)
	loaded := a.Load()
	assert.Equal(t, items, loaded)

	// saving what was just loaded does not change the stored value
	before, _, _ := store.Get(jsonstore.Key)
	a.Save(loaded)
	after, _, _ := store.Get(jsonstore.Key)
	assert.Equal(t, before, after)
	assert.Equal(t, items, a.Load())
}

func TestLoadMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `{oops`,
		"object":           `{"id":"a","text":"x","completed":false}`,
		"array of strings": `["a","b"]`,
		"null":             `null`,
		"number":           `42`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store := kv.NewMemory()
			require.NoError(t, store.Set(jsonstore.Key, raw))
			a, logs := newAdapter(store)

			assert.Empty(t, a.Load())
			_, ok, _ := store.Get(jsonstore.Key)
			assert.False(t, ok, "corrupt value should be cleared")
			assert.NotEmpty(t, logs.String())
		})
	}
}

func TestLoadPartialRecovery(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(jsonstore.Key, `[
		{"id":"a","text":"keep","completed":false},
		{"id":1,"text":"numeric id","completed":false},
		{"id":"c","text":"no completed"},
		"junk",
		{"id":"d","text":"also keep","completed":true,"extra":1}
	]`))
	a, _ := newAdapter(store)

	assert.Equal(t, []model.LocalTodo{
		{ID: "a", Text: "keep"},
		{ID: "d", Text: "also keep", Completed: true},
	}, a.Load())

	_, ok, _ := store.Get(jsonstore.Key)
	assert.True(t, ok, "partially valid value is left in place")
}

func TestSaveFailureIsLogged(t *testing.T) {
	store := kv.NewMemory()
	store.Quota = 5
	a, logs := newAdapter(store)

	assert.NotPanics(t, func() {
		a.Save([]model.LocalTodo{{ID: "a", Text: "too long for the quota"}})
	})
	assert.Contains(t, logs.String(), "failed to save local todos")
}

func TestNilStore(t *testing.T) {
	a, _ := newAdapter(nil)
	a.Save([]model.LocalTodo{{ID: "a", Text: "x"}})
	assert.Empty(t, a.Load())
}
