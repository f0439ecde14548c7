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


package core

import (
	"encoding/json"
	"os"
)

// Embedding is the persisted form of a vector embedding for one artifact.
// It is written as a sidecar file next to the artifact it describes.
type Embedding struct {
	// Model is the identifier of the model that produced the vector.
	Model string `json:"model"`

	// Dimensions is the length of the embedding vector.
	Dimensions int `json:"dimensions"`

	// Embedding is the vector itself.
	Embedding []float32 `json:"embedding"`
}

// NewEmbedding builds an Embedding for a vector produced by the given model.
func NewEmbedding(model string, vector []float32) *Embedding {
	return &Embedding{
		Model:      model,
		Dimensions: len(vector),
		Embedding:  vector,
	}
}

// WriteFile persists the embedding as JSON at the given path.
func (e *Embedding) WriteFile(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// UploadOutcome records the result of one upload attempt against the
// remote knowledge store. Exactly one of ID or Error is meaningful:
// a populated ID with an empty Error means the artifact was accepted.
type UploadOutcome struct {
	// ID is the remote identifier assigned by the knowledge store.
	ID string `json:"id,omitempty"`

	// Status is the remote processing status, when reported.
	Status string `json:"status,omitempty"`

	// Error describes a failed attempt. Failed outcomes are retried on
	// subsequent runs.
	Error string `json:"error,omitempty"`

	// SourcePath and ArtifactPath identify the file for diagnostics.
	SourcePath   string `json:"source_path,omitempty"`
	ArtifactPath string `json:"artifact_path,omitempty"`
}

// Ok reports whether the outcome represents a completed upload that must
// not be re-submitted on later runs.
func (o *UploadOutcome) Ok() bool {
	return o != nil && o.ID != "" && o.Error == ""
}
