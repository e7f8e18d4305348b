package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ExtractPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "webapp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("import flask\n"), 0o644))

	svc := NewService(newTestPipeline(nil, nil, nil, nil), nil)
	result, err := svc.ExtractPath(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, LocalOwner, result.Owner)
	assert.Equal(t, "webapp", result.Repo)
	assert.Equal(t, 1, result.FilesFound)
	assert.Empty(t, result.Collection)
	assert.NotEmpty(t, result.PersistError)
}

func TestService_ExtractPathMissing(t *testing.T) {
	svc := NewService(newTestPipeline(nil, nil, nil, nil), nil)
	_, err := svc.ExtractPath(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestService_ExtractRepoWithoutHost(t *testing.T) {
	svc := NewService(newTestPipeline(nil, nil, nil, nil), nil)
	_, err := svc.ExtractRepo(context.Background(), "octocat", "hello")
	assert.ErrorIs(t, err, ErrNoRepositoryHost)
}
