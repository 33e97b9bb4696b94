package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadItem_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"Metro Update","content":"The Red Line extension opens next month.","category":"transport"}`), 0o644))

	item, err := readItem(path)
	require.NoError(t, err)
	assert.Equal(t, "Metro Update", item.Title)
	assert.Equal(t, "transport", item.Category)
}

func TestReadItem_MissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"no body"}`), 0o644))

	_, err := readItem(path)
	assert.ErrorContains(t, err, "title and content")
}

func TestReadItem_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := readItem(path)
	assert.Error(t, err)
}
