// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Registry store and protection tests

package registry_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/pybench/internal/env"
	"github.com/sony-level/pybench/internal/gitx"
	"github.com/sony-level/pybench/internal/registry"
)

func TestStoreSaveLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "registry-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	store := registry.NewStore(tmpDir)

	now := time.Now().Truncate(time.Second)
	records := []*registry.Workspace{
		{
			Name:    "main",
			Ref:     "main",
			RefType: gitx.RefBranch,
			Commit:  "0123456789abcdef0123456789abcdef01234567",
			Root:    "/home/user/repo",
			Python: &env.PythonSpec{
				Root:       "/home/user/repo/venv",
				Executable: "/home/user/repo/venv/bin/python",
				Version:    "3.12.1",
				Packages:   []string{"pip==24.0"},
			},
			Created:      now,
			LastModified: now,
		},
		{
			Name:    "workspace_1",
			Ref:     "v1.0.0",
			RefType: gitx.RefTag,
			Commit:  "aaaa456789abcdef0123456789abcdef01234567",
			Root:    "/home/user/repo@v1.0.0",
			Python:  &env.PythonSpec{Linked: true},
		},
	}

	require.NoError(t, store.Save(records))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "main", loaded[0].Name)
	assert.Equal(t, gitx.RefBranch, loaded[0].RefType)
	assert.Equal(t, "3.12.1", loaded[0].Python.Version)
	assert.True(t, loaded[1].Python.Linked)
}

func TestStoreLoad_Missing(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "registry-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	store := registry.NewStore(tmpDir)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoreSave_NoPartialFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "registry-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	store := registry.NewStore(tmpDir)
	require.NoError(t, store.Save([]*registry.Workspace{{Name: "main"}}))

	// the replace is atomic, so no temp files linger next to the record file
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.Equal(t, []string{filepath.Base(store.Path())}, names)
}

func TestStoreTryAcquire_Exclusive(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "registry-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	holder := registry.NewStore(tmpDir)
	release, err := holder.Acquire()
	require.NoError(t, err)
	defer release()

	contender := registry.NewStore(tmpDir)
	_, ok, err := contender.TryAcquire()
	require.NoError(t, err)
	assert.False(t, ok, "TryAcquire should fail while another store holds the lock")
}

func TestDelete_MainProtected(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "registry-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	store := registry.NewStore(tmpDir)
	require.NoError(t, store.Save([]*registry.Workspace{
		{Name: "main", Ref: "main", Root: "/home/user/repo"},
	}))

	reg := registry.New(nil, tmpDir)

	err = reg.Delete("main", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrProtectedWorkspace),
		"deleting main should surface ErrProtectedWorkspace, got %v", err)
}

func TestResolve_NotFound(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "registry-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	reg := registry.New(nil, tmpDir)

	_, err = reg.Resolve("ghost")
	var notFoundErr *registry.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}
