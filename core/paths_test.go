package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name       string
		sourcePath string
		want       string
	}{
		{
			name:       "pdf source",
			sourcePath: "docs/report.pdf",
			want:       filepath.Join("out", "report.md"),
		},
		{
			name:       "nested source keeps only base name",
			sourcePath: "docs/2024/q3/report.pdf",
			want:       filepath.Join("out", "report.md"),
		},
		{
			name:       "no extension",
			sourcePath: "docs/README",
			want:       filepath.Join("out", "README.md"),
		},
		{
			name:       "multiple dots",
			sourcePath: "docs/archive.tar.gz",
			want:       filepath.Join("out", "archive.tar.md"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactPath("out", tt.sourcePath, DefaultArtifactExt))
		})
	}
}

func TestHashedArtifactPath(t *testing.T) {
	a := HashedArtifactPath("out", "docs/a/report.pdf", DefaultArtifactExt)
	b := HashedArtifactPath("out", "docs/b/report.pdf", DefaultArtifactExt)

	// Same base name, different directories: no collision.
	assert.NotEqual(t, a, b)

	// Deterministic for the same source path.
	assert.Equal(t, a, HashedArtifactPath("out", "docs/a/report.pdf", DefaultArtifactExt))

	// Qualifier is 8 hex chars between the base name and the extension.
	assert.Regexp(t, `report-[0-9a-f]{8}\.md$`, a)
}

func TestEmbeddingSidecarPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "report.embeddings"),
		EmbeddingSidecarPath(filepath.Join("out", "report.md")))
}

func TestUploadOutcomeOk(t *testing.T) {
	tests := []struct {
		name    string
		outcome *UploadOutcome
		want    bool
	}{
		{"nil outcome", nil, false},
		{"id and no error", &UploadOutcome{ID: "f-123"}, true},
		{"error only", &UploadOutcome{Error: "connection refused"}, false},
		{"id with error", &UploadOutcome{ID: "f-123", Error: "partial"}, false},
		{"empty", &UploadOutcome{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Ok())
		})
	}
}

func TestEmbeddingWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.embeddings")

	emb := NewEmbedding("nomic-embed-text", []float32{0.1, 0.2, 0.3})
	require.NoError(t, emb.WriteFile(path))

	assert.Equal(t, 3, emb.Dimensions)
	assert.FileExists(t, path)
}

func TestReportErr(t *testing.T) {
	r := NewReport("run-1")
	require.NoError(t, r.Err())

	r.Errors["docs/b.pdf"] = "corrupt input"
	r.Uploads["out/a.md"] = &UploadOutcome{ID: "f-1"}
	r.Uploads["out/b.md"] = &UploadOutcome{Error: "503"}

	err := r.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt input")
	assert.Contains(t, err.Error(), "out/b.md")
	assert.NotContains(t, err.Error(), "out/a.md")
}
