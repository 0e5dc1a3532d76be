package config_test

import (
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/config"
)

func TestRootedFS(t *testing.T) {
	rfs := config.NewRootedFS(root, fstest.MapFS{
		"javelin.yaml":  &fstest.MapFile{Data: []byte("strict: true\n")},
		"lib/a.jar":     &fstest.MapFile{},
		"lib/b.jar":     &fstest.MapFile{},
		"lib/notes.txt": &fstest.MapFile{},
	})

	data, err := rfs.ReadFile(filepath.Join(root, "javelin.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "strict: true\n", string(data))

	info, err := rfs.Stat(filepath.Join(root, "lib"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = rfs.Stat("/work/javelin.yaml")
	require.ErrorIs(t, err, fs.ErrNotExist)
	_, err = rfs.ReadFile("/elsewhere/javelin.yaml")
	require.ErrorIs(t, err, fs.ErrNotExist)

	matches, err := rfs.Glob(filepath.Join(root, "lib", "*.jar"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "lib", "a.jar"), filepath.Join(root, "lib", "b.jar")}, matches)

	matches, err = rfs.Glob("/elsewhere/*.jar")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
