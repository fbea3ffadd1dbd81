package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestResolveRootFindsConfigMarker(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "p", "tsconfig.json"), "{}")
	writeFile(t, filepath.Join(dir, "p", "src", "a.ts"), "const a = 1;")

	root := ResolveRoot(filepath.Join(dir, "p", "src", "a.ts"))
	assert.Equal(t, filepath.Join(dir, "p"), root)
}

func TestResolveRootFindsPackageManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "p", "package.json"), "{}")
	writeFile(t, filepath.Join(dir, "p", "lib", "deep", "b.ts"), "")

	root := ResolveRoot(filepath.Join(dir, "p", "lib", "deep", "b.ts"))
	assert.Equal(t, filepath.Join(dir, "p"), root)
}

func TestResolveRootNearestMarkerWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "outer", "package.json"), "{}")
	writeFile(t, filepath.Join(dir, "outer", "inner", "tsconfig.json"), "{}")
	writeFile(t, filepath.Join(dir, "outer", "inner", "src", "c.ts"), "")

	root := ResolveRoot(filepath.Join(dir, "outer", "inner", "src", "c.ts"))
	assert.Equal(t, filepath.Join(dir, "outer", "inner"), root)
}

func TestResolveRootDefaultsToOwnDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "loose", "script.ts"), "")

	root := ResolveRoot(filepath.Join(dir, "loose", "script.ts"))
	assert.Equal(t, filepath.Join(dir, "loose"), root)
}

func TestConfigFilePath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", ConfigFilePath(dir))

	writeFile(t, filepath.Join(dir, "jsconfig.json"), "{}")
	assert.Equal(t, filepath.Join(dir, "jsconfig.json"), ConfigFilePath(dir))

	// tsconfig takes precedence once both exist
	writeFile(t, filepath.Join(dir, "tsconfig.json"), "{}")
	assert.Equal(t, filepath.Join(dir, "tsconfig.json"), ConfigFilePath(dir))
}
