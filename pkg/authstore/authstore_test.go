package authstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAndListEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")

	require.NoError(t, SetAPIKey(path, "anthropic", "test-key"))

	summary, err := Summary(path)
	require.NoError(t, err)
	require.Len(t, summary.Entries, 1)
	require.Equal(t, "anthropic", summary.Entries[0].Provider)
	require.Equal(t, "api_key", summary.Entries[0].EntryType)
}

func TestDeleteEntryRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")

	require.NoError(t, SetAPIKey(path, "openai", "test-key"))
	require.NoError(t, Delete(path, "openai"))

	summary, err := Summary(path)
	require.NoError(t, err)
	require.Empty(t, summary.Entries)
	require.NoFileExists(t, path)
}

func TestDeleteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, Delete(path, "anthropic"))
}

func TestSetAPIKeyRejectsBlankProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	err := SetAPIKey(path, "   ", "key")
	require.Error(t, err)
}

func TestSetAPIKeyRejectsBlankKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	err := SetAPIKey(path, "anthropic", "  ")
	require.Error(t, err)
}

func TestSummaryOfMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	summary, err := Summary(path)
	require.NoError(t, err)
	require.Empty(t, summary.Entries)
}

func TestSummaryRejectsNonObjectRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`["not", "an", "object"]`), 0o644))

	_, err := Summary(path)
	require.Error(t, err)
}

func TestSetAPIKeyWritesOwnerOnlyPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, SetAPIKey(path, "anthropic", "key"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestImportSourceWinsOnConflict(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target", "auth.json")
	sourcePath := filepath.Join(dir, "source.json")

	require.NoError(t, SetAPIKey(targetPath, "anthropic", "target-key"))
	require.NoError(t, os.WriteFile(sourcePath, []byte(`{"anthropic":{"type":"api_key","key":"source-key"},"openai":{"type":"api_key","key":"o-key"}}`), 0o644))

	require.NoError(t, Import(targetPath, sourcePath))

	summary, err := Summary(targetPath)
	require.NoError(t, err)
	require.Len(t, summary.Entries, 2)

	data, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "source-key")
}

func TestValidateProfileRejectsTraversal(t *testing.T) {
	require.Error(t, ValidateProfile("../escape"))
	require.Error(t, ValidateProfile(""))
	require.Error(t, ValidateProfile("bad profile"))
	require.NoError(t, ValidateProfile("default"))
	require.NoError(t, ValidateProfile("work_profile-2"))
}

func TestProfilePathJoinsUnderRoot(t *testing.T) {
	path, err := ProfilePath("/data/auth", "default")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/data/auth", "default", "auth.json"), path)
}
