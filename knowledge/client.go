// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/docpipe/core"
)

// Client talks to an OpenWebUI-compatible knowledge store over HTTP.
// It implements both Uploader and Registrar.
type Client struct {
	baseURL     string
	token       string
	knowledgeID string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithKnowledgeID sets the knowledge collection used by Register.
// There is no default: registration is unavailable until an ID is set.
func WithKnowledgeID(id string) ClientOption {
	return func(c *Client) {
		c.knowledgeID = id
	}
}

// WithHTTPClient sets a custom HTTP client.
// Default uses a 60 second timeout.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewClient creates a knowledge-store client for the given API base URL
// and bearer token.
func NewClient(baseURL, token string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if token == "" {
		return nil, ErrTokenRequired
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "knowledge-client")

	return c, nil
}

// uploadResponse is the subset of the file-upload response the pipeline
// cares about.
type uploadResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Upload submits the artifact via multipart POST to /api/v1/files/.
// All failures come back as data on the outcome.
func (c *Client) Upload(ctx context.Context, artifactPath string) *core.UploadOutcome {
	outcome := &core.UploadOutcome{ArtifactPath: artifactPath}

	file, err := os.Open(artifactPath)
	if err != nil {
		outcome.Error = fmt.Sprintf("open artifact: %v", err)
		return outcome
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(artifactPath))
	if err != nil {
		outcome.Error = fmt.Sprintf("build request: %v", err)
		return outcome
	}
	if _, err := io.Copy(part, file); err != nil {
		outcome.Error = fmt.Sprintf("read artifact: %v", err)
		return outcome
	}
	if err := writer.Close(); err != nil {
		outcome.Error = fmt.Sprintf("build request: %v", err)
		return outcome
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/files/", &body)
	if err != nil {
		outcome.Error = fmt.Sprintf("build request: %v", err)
		return outcome
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("uploading artifact", "path", artifactPath)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome.Error = fmt.Sprintf("upload request: %v", err)
		return outcome
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		outcome.Error = fmt.Sprintf("upload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		return outcome
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		outcome.Error = fmt.Sprintf("decode response: %v", err)
		return outcome
	}
	if parsed.ID == "" {
		outcome.Error = "upload response missing file id"
		return outcome
	}

	outcome.ID = parsed.ID
	outcome.Status = parsed.Status
	return outcome
}

// Register adds an uploaded file to the configured knowledge collection
// via POST /api/v1/knowledge/{id}/file/add.
func (c *Client) Register(ctx context.Context, fileID string) error {
	if c.knowledgeID == "" {
		return ErrKnowledgeIDRequired
	}

	payload, err := json.Marshal(map[string]string{"file_id": fileID})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/knowledge/%s/file/add", c.baseURL, c.knowledgeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("registering file with knowledge collection", "fileID", fileID, "knowledgeID", c.knowledgeID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("register request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("register failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
