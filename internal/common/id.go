package common

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewSavedJobID generates a unique saved-job ID with the "job_" prefix
func NewSavedJobID() string {
	return "job_" + uuid.New().String()
}

// NewRunID generates a unique ID for an extraction or job-search run
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// CollectionName derives the vector collection for a repository.
// Format: <prefix><first 16 hex chars of sha256("owner/repo")>
func CollectionName(prefix, owner, repo string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(owner) + "/" + strings.ToLower(repo)))
	return prefix + hex.EncodeToString(sum[:])[:16]
}

// DocumentID returns a deterministic document ID within a collection
func DocumentID(collection, kind, key string) string {
	sum := sha256.Sum256([]byte(kind + ":" + key))
	return collection + "_" + kind + "_" + hex.EncodeToString(sum[:])[:12]
}
