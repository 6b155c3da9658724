package reasonchain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedResult(prompt string) *Result {
	return &Result{
		Timestamp:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		OriginalPrompt:    prompt,
		PipelineStatus:    StatusCompleted,
		ReferenceMaterial: "ref",
		FinalAnswer:       "answer",
	}
}

func TestSaveAndLoadResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reasoning_results.json")
	r := completedResult("p")

	require.NoError(t, SaveResult(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"timestamp\""), string(data))

	loaded, err := LoadResult(path)
	require.NoError(t, err)
	assert.Equal(t, r, loaded)
}

func TestLoadResult_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadResult(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNoResults)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	_, err = LoadResult(bad)
	assert.Error(t, err)

	inconsistent := filepath.Join(dir, "inconsistent.json")
	require.NoError(t, os.WriteFile(inconsistent, []byte(`{"timestamp":"2025-01-01T00:00:00Z","original_prompt":"p","pipeline_status":"completed"}`), 0644))
	_, err = LoadResult(inconsistent)
	assert.ErrorIs(t, err, ErrInconsistentResult)
}

func TestResultStore_LatestFile(t *testing.T) {
	latest := filepath.Join(t.TempDir(), "reasoning_results.json")
	store, err := NewResultStore(StoreConfig{LatestFile: latest})
	require.NoError(t, err)

	_, err = store.Latest()
	assert.ErrorIs(t, err, ErrNoResults)

	path, err := store.Save(completedResult("first"))
	require.NoError(t, err)
	assert.Equal(t, latest, path)

	_, err = store.Save(completedResult("second"))
	require.NoError(t, err)

	got, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, "second", got.OriginalPrompt)
}

func TestResultStore_HistoryPruning(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	store, err := NewResultStore(StoreConfig{Directory: dir, MaxFiles: 2})
	require.NoError(t, err)

	_, err = store.Latest()
	assert.ErrorIs(t, err, ErrNoResults)

	var paths []string
	for _, prompt := range []string{"one", "two", "three"} {
		p, err := store.Save(completedResult(prompt))
		require.NoError(t, err)
		paths = append(paths, p)
		// distinct modification times for ordering
		past := time.Now().Add(time.Duration(len(paths)-10) * time.Second)
		require.NoError(t, os.Chtimes(p, past, past))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	_, err = os.Stat(paths[0])
	assert.True(t, os.IsNotExist(err))

	got, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, "three", got.OriginalPrompt)
}

func TestResultStore_Retention(t *testing.T) {
	dir := t.TempDir()
	store, err := NewResultStore(StoreConfig{Directory: dir, Retention: time.Hour})
	require.NoError(t, err)

	old, err := store.Save(completedResult("old"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	_, err = store.Save(completedResult("new"))
	require.NoError(t, err)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}

func TestNewResultStore_RequiresTarget(t *testing.T) {
	_, err := NewResultStore(StoreConfig{})
	assert.Error(t, err)

	store, err := NewResultStoreFromSettings(ResultSettings{File: filepath.Join(t.TempDir(), "r.json")})
	require.NoError(t, err)
	assert.NotNil(t, store)
}
