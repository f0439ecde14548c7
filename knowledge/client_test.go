package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "token")
	assert.ErrorIs(t, err, ErrBaseURLRequired)

	_, err = NewClient("http://localhost:3000", "")
	assert.ErrorIs(t, err, ErrTokenRequired)

	c, err := NewClient("http://localhost:3000/", "token")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", c.baseURL)
}

func TestClientUpload(t *testing.T) {
	var gotAuth, gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/files/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotName = header.Filename

		json.NewEncoder(w).Encode(map[string]string{"id": "f-42", "status": "uploaded"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk-test")
	require.NoError(t, err)

	outcome := client.Upload(context.Background(), writeArtifact(t, "# Report\n"))
	require.True(t, outcome.Ok(), "outcome error: %s", outcome.Error)
	assert.Equal(t, "f-42", outcome.ID)
	assert.Equal(t, "uploaded", outcome.Status)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "report.md", gotName)
}

func TestClientUploadHTTPErrorIsData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk-test")
	require.NoError(t, err)

	outcome := client.Upload(context.Background(), writeArtifact(t, "content"))
	assert.False(t, outcome.Ok())
	assert.Contains(t, outcome.Error, "429")
	assert.Contains(t, outcome.Error, "quota exceeded")
}

func TestClientUploadMissingArtifactIsData(t *testing.T) {
	client, err := NewClient("http://localhost:1", "sk-test")
	require.NoError(t, err)

	outcome := client.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.md"))
	assert.False(t, outcome.Ok())
	assert.Contains(t, outcome.Error, "open artifact")
}

func TestClientRegister(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk-test", WithKnowledgeID("kb-7"))
	require.NoError(t, err)

	require.NoError(t, client.Register(context.Background(), "f-42"))
	assert.Equal(t, "/api/v1/knowledge/kb-7/file/add", gotPath)
	assert.Equal(t, map[string]string{"file_id": "f-42"}, gotBody)
}

func TestClientRegisterRequiresKnowledgeID(t *testing.T) {
	client, err := NewClient("http://localhost:3000", "sk-test")
	require.NoError(t, err)

	err = client.Register(context.Background(), "f-42")
	assert.ErrorIs(t, err, ErrKnowledgeIDRequired)
}

func TestClientRegisterHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk-test", WithKnowledgeID("kb-7"))
	require.NoError(t, err)

	err = client.Register(context.Background(), "f-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
