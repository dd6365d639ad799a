package dedup_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symphorien/nix-du/dedup"
	"github.com/symphorien/nix-du/depgraph"
)

// storeAt builds a graph with one path node inside dir, so the detector
// infers dir/.links.
func storeAt(t *testing.T, dir string) *depgraph.DepInfos {
	t.Helper()
	g := depgraph.NewDepGraph()
	g.AddNode(depgraph.NewPathDescription(filepath.Join(dir, "abc-x")), 1)
	root := g.AddNode(depgraph.NewDummyDescription(), 0)
	di := &depgraph.DepInfos{Graph: g, Root: root}
	di.RecordMetadata()
	return di
}

func TestStoreIsOptimised_Hardlinks(t *testing.T) {
	dir := t.TempDir()
	links := filepath.Join(dir, ".links")
	writeFile(t, filepath.Join(links, "aaa"), 10)
	require.NoError(t, os.Link(filepath.Join(links, "aaa"), filepath.Join(dir, "somewhere")))

	optimised, known, err := dedup.StoreIsOptimised(storeAt(t, dir))
	require.NoError(t, err)
	assert.True(t, known)
	assert.True(t, optimised)
}

func TestStoreIsOptimised_NoHardlinks(t *testing.T) {
	dir := t.TempDir()
	links := filepath.Join(dir, ".links")
	for i := 0; i < 10; i++ {
		writeFile(t, filepath.Join(links, fmt.Sprintf("f%02d", i)), 10)
	}

	optimised, known, err := dedup.StoreIsOptimised(storeAt(t, dir))
	require.NoError(t, err)
	assert.True(t, known)
	assert.False(t, optimised)
}

func TestStoreIsOptimised_TooFewEntries(t *testing.T) {
	dir := t.TempDir()
	links := filepath.Join(dir, ".links")
	for i := 0; i < 3; i++ {
		writeFile(t, filepath.Join(links, fmt.Sprintf("f%02d", i)), 10)
	}

	_, known, err := dedup.StoreIsOptimised(storeAt(t, dir))
	require.NoError(t, err)
	assert.False(t, known, "three solitary links prove nothing")
}

func TestStoreIsOptimised_TooManyEntries(t *testing.T) {
	dir := t.TempDir()
	links := filepath.Join(dir, ".links")
	for i := 0; i < 12; i++ {
		writeFile(t, filepath.Join(links, fmt.Sprintf("f%02d", i)), 10)
	}

	_, known, err := dedup.StoreIsOptimised(storeAt(t, dir))
	require.NoError(t, err)
	assert.False(t, known, "more than ten solitary links prove nothing")
}

func TestStoreIsOptimised_EmptyLinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".links"), 0o755))

	_, known, err := dedup.StoreIsOptimised(storeAt(t, dir))
	require.NoError(t, err)
	assert.False(t, known, "a fresh .links directory is not evidence either way")
}

func TestStoreIsOptimised_MissingLinks(t *testing.T) {
	_, _, err := dedup.StoreIsOptimised(storeAt(t, t.TempDir()))
	assert.Error(t, err)
}

func TestStoreIsOptimised_StrangeEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".links", "subdir"), 0o755))

	_, known, err := dedup.StoreIsOptimised(storeAt(t, dir))
	require.NoError(t, err)
	assert.False(t, known, "a directory inside .links is suspicious")
}

func TestStoreIsOptimised_NoPathNode(t *testing.T) {
	g := depgraph.NewDepGraph()
	root := g.AddNode(depgraph.NewDummyDescription(), 0)
	di := &depgraph.DepInfos{Graph: g, Root: root}
	_, known, err := dedup.StoreIsOptimised(di)
	require.NoError(t, err)
	assert.False(t, known)
}
