package core

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// DefaultArtifactExt is the extension used for extracted text artifacts.
const DefaultArtifactExt = ".md"

// EmbeddingSidecarExt is the extension used for embedding sidecar files.
const EmbeddingSidecarExt = ".embeddings"

// ArtifactPath derives the output artifact location for a source file.
// The artifact keeps the directory-less base name of the source with the
// given extension, placed under outputDir. Two sources with the same base
// name in different directories map to the same artifact; callers that
// need to avoid that collision should use HashedArtifactPath instead.
func ArtifactPath(outputDir, sourcePath, ext string) string {
	base := filepath.Base(sourcePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, name+ext)
}

// HashedArtifactPath derives the output artifact location with a short
// BLAKE2b qualifier of the full source path inserted before the extension.
// Identical source paths always produce identical artifact paths, while
// sources that share a base name across directories no longer collide.
func HashedArtifactPath(outputDir, sourcePath, ext string) string {
	base := filepath.Base(sourcePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, name+"-"+PathHash(sourcePath)+ext)
}

// PathHash generates a deterministic 8-character hex qualifier from a
// source path using BLAKE2b hashing.
func PathHash(path string) string {
	h, _ := blake2b.New(4, nil) // 4 bytes = 8 hex chars
	h.Write([]byte(path))
	return hex.EncodeToString(h.Sum(nil))
}

// EmbeddingSidecarPath returns the sidecar location for an artifact's
// embedding vector: the artifact path with its extension replaced.
func EmbeddingSidecarPath(artifactPath string) string {
	return strings.TrimSuffix(artifactPath, filepath.Ext(artifactPath)) + EmbeddingSidecarExt
}
