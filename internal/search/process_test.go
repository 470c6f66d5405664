package search

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchFile(path string) ([]Match, error) {
	args := m.Called(path)
	matches, _ := args.Get(0).([]Match)
	return matches, args.Error(1)
}

func createFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(name), 0o644))
	}
	return dir
}

func TestProcessPathsOrdering(t *testing.T) {
	t.Parallel()
	dir := createFiles(t, "a.txt", "b.txt", "c.md", "sub/d.txt", ".git/e.txt")

	searcher := new(mockSearcher)
	for _, name := range []string{"a.txt", "b.txt", "sub/d.txt"} {
		path := filepath.Join(dir, name)
		searcher.On("SearchFile", path).Return([]Match{
			{Filename: path, Line: 1},
			{Filename: path, Line: 2},
		}, nil).Once()
	}

	matches, err := ProcessPaths(context.Background(), zap.NewNop(), searcher, []string{dir}, ProcessOptions{
		Workers:     2,
		Extensions:  []string{".txt"},
		ExcludeDirs: []string{".git"},
	})
	require.NoError(t, err)
	searcher.AssertExpectations(t)

	require.Len(t, matches, 6)
	want := []string{"a.txt", "a.txt", "b.txt", "b.txt", "sub/d.txt", "sub/d.txt"}
	for i, m := range matches {
		assert.Equal(t, filepath.Join(dir, want[i]), m.Filename)
		assert.Equal(t, i%2+1, m.Line)
	}
}

func TestProcessOptionsFilesIgnore(t *testing.T) {
	t.Parallel()
	dir := createFiles(t, "a.txt", "b.log", "out/c.txt")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hmgrepignore"), []byte("*.log\nout/\n"), 0o644))

	files, err := ProcessOptions{IgnoreFiles: []string{".hmgrepignore"}}.Files([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, ".hmgrepignore"),
		filepath.Join(dir, "a.txt"),
	}, files)
}

func TestProcessPathsSkipsFailures(t *testing.T) {
	t.Parallel()
	dir := createFiles(t, "bin.dat", "bad.txt", "good.txt")

	searcher := new(mockSearcher)
	searcher.On("SearchFile", filepath.Join(dir, "bin.dat")).Return(nil, fmt.Errorf("%w: bin.dat", ErrBinaryFile))
	searcher.On("SearchFile", filepath.Join(dir, "bad.txt")).Return(nil, os.ErrPermission)
	searcher.On("SearchFile", filepath.Join(dir, "good.txt")).Return([]Match{{Filename: "good.txt", Line: 3}}, nil)

	matches, err := ProcessPaths(context.Background(), nil, searcher, []string{dir}, ProcessOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Match{{Filename: "good.txt", Line: 3}}, matches)
	searcher.AssertNumberOfCalls(t, "SearchFile", 3)
}

func TestProcessPathsMissingPath(t *testing.T) {
	t.Parallel()
	searcher := new(mockSearcher)
	_, err := ProcessPaths(context.Background(), nil, searcher, []string{filepath.Join(t.TempDir(), "nope")}, ProcessOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
	searcher.AssertNotCalled(t, "SearchFile", mock.Anything)
}

func TestProcessPathsContextCancellation(t *testing.T) {
	t.Parallel()
	dir := createFiles(t, "a.txt", "b.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := new(mockSearcher)
	searcher.On("SearchFile", mock.Anything).Return([]Match{}, nil).Maybe()

	_, err := ProcessPaths(ctx, nil, searcher, []string{dir}, ProcessOptions{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessPathsRealSearcher(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.txt"), []byte("foo\nｆoo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.txt"), []byte("bar\nfoo\n"), 0o644))

	s, err := New("(f|ｆ)oo", Options{})
	require.NoError(t, err)

	var progress bytes.Buffer
	matches, err := ProcessPaths(context.Background(), nil, s, []string{dir}, ProcessOptions{
		Progress:       true,
		ProgressWriter: &progress,
	})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "ｆoo", matches[1].Text)
	assert.Equal(t, 2, matches[2].Line)
	assert.Equal(t, filepath.Join(dir, "two.txt"), matches[2].Filename)
}
