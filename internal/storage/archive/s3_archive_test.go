package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
)

func TestNewS3Archive_Validation(t *testing.T) {
	logger := arbor.NewLogger()

	_, err := NewS3Archive(common.ArchiveConfig{}, logger)
	assert.Error(t, err)

	_, err = NewS3Archive(common.ArchiveConfig{Endpoint: "localhost:9000", Bucket: "reports"}, logger)
	assert.Error(t, err)

	_, err = NewS3Archive(common.ArchiveConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, logger)
	assert.Error(t, err)

	a, err := NewS3Archive(common.ArchiveConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "reports"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", a.region)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "profiles/octocat.pdf", ObjectKey("/profiles/octocat.pdf"))
	assert.Equal(t, "octocat.pdf", ObjectKey("../../octocat.pdf"))
	assert.Equal(t, "", ObjectKey("  "))
}
