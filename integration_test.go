package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koron/dl-kaoriya-vim/internal/cli"
)

func TestDownloadAllSkipsDebugSymbols(t *testing.T) {
	assets := kaoriyaAssets()
	hub := newFakeHub(t, assets...)
	dir := t.TempDir()

	code, stdout, stderr := runIn(t, hub, dir, "-p")
	require.Equal(t, cli.ExitOK, code, stderr)

	// 4 assets, 2 carry the debug marker.
	assert.ElementsMatch(t, []string{
		"vim81-kaoriya-win32-8.1.1646.zip",
		"vim81-kaoriya-win64-8.1.1646.zip",
	}, dirEntries(t, dir))

	_, assetHits := hub.hits()
	assert.Len(t, assetHits, 2)
	assert.Zero(t, assetHits["vim81-kaoriya-win32-8.1.1646-pdb.zip"])

	assert.Contains(t, stdout, "Downloading to: vim81-kaoriya-win32-8.1.1646.zip\n")
	assert.Contains(t, stdout, "Downloading from: "+hub.URL+"/assets/vim81-kaoriya-win64-8.1.1646.zip\n")
	assert.NotContains(t, stdout, "\r", "progress disabled")

	for _, a := range assets {
		if strings.Contains(a.name, "pdb") {
			continue
		}
		got, err := os.ReadFile(filepath.Join(dir, a.name))
		require.NoError(t, err)
		assert.Equal(t, a.body, got)
	}
}

func TestDownloadWin64Only(t *testing.T) {
	hub := newFakeHub(t, kaoriyaAssets()...)
	dir := t.TempDir()

	code, _, stderr := runIn(t, hub, dir, "-p", "-a", "win64")
	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Equal(t, []string{"vim81-kaoriya-win64-8.1.1646.zip"}, dirEntries(t, dir))
}

func TestDownloadSetsModTime(t *testing.T) {
	hub := newFakeHub(t, kaoriyaAssets()...)
	dir := t.TempDir()

	before := time.Now().Add(-time.Second)
	code, _, stderr := runIn(t, hub, dir, "-p", "-a", "win64")
	require.Equal(t, cli.ExitOK, code, stderr)

	fi, err := os.Stat(filepath.Join(dir, "vim81-kaoriya-win64-8.1.1646.zip"))
	require.NoError(t, err)
	want := time.Date(2019, 7, 3, 14, 6, 11, 0, time.UTC)
	assert.True(t, fi.ModTime().Equal(want), "mtime %v, want %v", fi.ModTime(), want)
	assert.True(t, fi.ModTime().Before(before))
}

func TestDownloadRenamed(t *testing.T) {
	hub := newFakeHub(t, kaoriyaAssets()...)
	dir := t.TempDir()

	code, stdout, stderr := runIn(t, hub, dir, "-p", "-a", "win32", "-n", "vim-latest.zip")
	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Equal(t, []string{"vim-latest.zip"}, dirEntries(t, dir))
	assert.Contains(t, stdout, "Downloading to: vim-latest.zip\n")

	got, err := os.ReadFile(filepath.Join(dir, "vim-latest.zip"))
	require.NoError(t, err)
	assert.Equal(t, []byte("win32 build"), got)
}

func TestExistingFileIsKept(t *testing.T) {
	hub := newFakeHub(t, kaoriyaAssets()...)
	dir := t.TempDir()
	existing := filepath.Join(dir, "vim81-kaoriya-win64-8.1.1646.zip")
	require.NoError(t, os.WriteFile(existing, []byte("local copy"), 0o644))
	stamp := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(existing, stamp, stamp))

	code, stdout, stderr := runIn(t, hub, dir, "-p", "-a", "win64")
	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Contains(t, stdout, "File exists: vim81-kaoriya-win64-8.1.1646.zip\n")
	assert.NotContains(t, stdout, "Downloading")

	_, assetHits := hub.hits()
	assert.Empty(t, assetHits)

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("local copy"), got)
	fi, err := os.Stat(existing)
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(stamp))
}

func TestExistingFileIsForced(t *testing.T) {
	hub := newFakeHub(t, kaoriyaAssets()...)
	dir := t.TempDir()
	existing := filepath.Join(dir, "vim81-kaoriya-win64-8.1.1646.zip")
	require.NoError(t, os.WriteFile(existing, []byte("local copy"), 0o644))

	code, stdout, stderr := runIn(t, hub, dir, "-pf", "-a", "win64")
	require.Equal(t, cli.ExitOK, code, stderr)
	assert.NotContains(t, stdout, "File exists")

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("win64 build!"), got)
}

func TestRenamedTargetIsWrittenOnce(t *testing.T) {
	hub := newFakeHub(t,
		fakeAsset{name: "vim81-kaoriya-win64-8.1.1646.zip", updatedAt: "2019-07-03T14:06:11Z", body: []byte("first")},
		fakeAsset{name: "vim81-kaoriya-win64-8.1.1646.7z", updatedAt: "2019-07-03T14:06:12Z", body: []byte("second")},
	)
	dir := t.TempDir()

	code, stdout, stderr := runIn(t, hub, dir, "-p", "-a", "win64", "-n", "vim.zip")
	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Contains(t, stdout, "File exists: vim.zip\n")

	got, err := os.ReadFile(filepath.Join(dir, "vim.zip"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestProgressOutput(t *testing.T) {
	hub := newFakeHub(t, kaoriyaAssets()...)
	dir := t.TempDir()

	code, stdout, stderr := runIn(t, hub, dir, "-a", "win32")
	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Contains(t, stdout, "\r11 / 11 (100.0%)\n")
}

func TestDestDirFromConfig(t *testing.T) {
	hub := newFakeHub(t, kaoriyaAssets()...)
	dest := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dest_dir: "+dest+"\n"), 0o600))

	cwd := t.TempDir()
	code, _, stderr := runIn(t, hub, cwd, "-p", "-a", "win64", "--config", cfgPath)
	require.Equal(t, cli.ExitOK, code, stderr)
	assert.Empty(t, dirEntries(t, cwd))
	assert.Equal(t, []string{"vim81-kaoriya-win64-8.1.1646.zip"}, dirEntries(t, dest))
}
