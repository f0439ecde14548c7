package main

import (
	"flag"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, args map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for name, value := range args {
		set.String(name, value, "")
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetupLoggerLevels(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{"Error", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			ctx := newContext(t, map[string]string{"log-level": tt.level, "log-file": ""})
			err := setupLogger(ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupLoggerWithFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "docpipe.log")
	ctx := newContext(t, map[string]string{"log-level": "info", "log-file": logFile})

	require.NoError(t, setupLogger(ctx))

	slog.Info("log line for the file handler")
	assert.FileExists(t, logFile)
}

func TestSetupLoggerBadFilePath(t *testing.T) {
	ctx := newContext(t, map[string]string{
		"log-level": "info",
		"log-file":  filepath.Join(t.TempDir(), "missing", "docpipe.log"),
	})

	err := setupLogger(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
}

func TestDefaultExtensionsCoverDocumentsAndImages(t *testing.T) {
	assert.Contains(t, defaultExtensions, "pdf")
	assert.Contains(t, defaultExtensions, "docx")
	assert.Contains(t, defaultExtensions, "png")
}
