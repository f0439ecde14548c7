package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandConverterDefaults(t *testing.T) {
	c := NewCommandConverter("")
	assert.Equal(t, DefaultCommand, c.command)

	c = NewCommandConverter("pandoc", WithArgs("--to", "markdown"))
	assert.Equal(t, "pandoc", c.command)
	assert.Equal(t, []string{"--to", "markdown"}, c.args)
}

func TestCommandConverterConvert(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(source, []byte("Hello from note\n"), 0o644))

	// cat stands in for a real converter: stdout is the extracted text.
	c := NewCommandConverter("cat")

	text, err := c.Convert(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, "Hello from note\n", text)
}

func TestCommandConverterFailure(t *testing.T) {
	c := NewCommandConverter("cat")

	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestCommandConverterUnknownCommand(t *testing.T) {
	c := NewCommandConverter("docpipe-no-such-converter")

	_, err := c.Convert(context.Background(), "whatever.pdf")
	require.Error(t, err)
}
