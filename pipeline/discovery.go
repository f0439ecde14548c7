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


package pipeline

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// Finder discovers regular files under a directory tree whose names end in
// one of a configured set of extensions.
type Finder struct {
	extensions map[string]struct{}
	logger     *slog.Logger
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithFinderLogger sets a custom logger.
// Default is slog.Default().
func WithFinderLogger(logger *slog.Logger) FinderOption {
	return func(f *Finder) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// NewFinder creates a finder for the given extensions. Extensions are
// matched case-insensitively and may be given with or without the leading
// dot.
func NewFinder(extensions []string, opts ...FinderOption) *Finder {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts[ext] = struct{}{}
		}
	}

	f := &Finder{
		extensions: exts,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "finder")
	return f
}

// Find walks the tree rooted at dir and returns every regular file whose
// name matches one of the configured extensions. Only a failure on the
// root itself is fatal; unreadable subtrees are skipped with a warning.
func (f *Finder) Find(dir string) ([]string, error) {
	var found []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			f.logger.Warn("skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if f.matches(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func (f *Finder) matches(name string) bool {
	name = strings.ToLower(name)
	for ext := range f.extensions {
		if strings.HasSuffix(name, "."+ext) {
			return true
		}
	}
	return false
}
