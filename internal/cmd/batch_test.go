package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadTopicsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
topics:
  - topic: How long does a SOC 2 audit take?
    category: compliance
    tags: [soc2, audit]
    featured: true
  - topic: "   "
  - topic: Pen test scoping basics
    slug: pen-test-scoping
`), 0o600))

	entries, err := readTopicsFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "How long does a SOC 2 audit take?", entries[0].Topic)
	require.Equal(t, "compliance", entries[0].Category)
	require.Equal(t, []string{"soc2", "audit"}, entries[0].Tags)
	require.True(t, entries[0].Featured)

	require.Equal(t, "pen-test-scoping", entries[1].Slug)
}

func TestReadTopicsFileMissing(t *testing.T) {
	_, err := readTopicsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestReadTopicsFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topics: [unclosed"), 0o600))

	_, err := readTopicsFile(path)
	require.Error(t, err)
}
