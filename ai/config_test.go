package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Model)
	assert.Empty(t, cfg.Token)
}

func TestNewConfigWithOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://embed.internal:9100"),
		WithModel("text-embedding-3-small"),
		WithToken("sk-test"),
	)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://embed.internal:9100/v1", cfg.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.Model)
	assert.Equal(t, "sk-test", cfg.Token)
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"leaves v1 alone", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{"valid", &Config{Host: "http://localhost:11434", Model: "nomic-embed-text"}, ""},
		{"missing host", &Config{Model: "nomic-embed-text"}, "Host is required"},
		{"missing model", &Config{Host: "http://localhost:11434"}, "Model is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNopEmbedder(t *testing.T) {
	vector, err := NopEmbedder{}.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, vector)
}
