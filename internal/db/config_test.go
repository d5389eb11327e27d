package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigurationMissingFile(t *testing.T) {
	base := DefaultConfiguration()
	loaded, err := LoadConfiguration(filepath.Join(t.TempDir(), "kieli.yml"), base)
	require.NoError(t, err)
	assert.Equal(t, base, loaded)
}

func TestLoadConfigurationOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kieli.yml")
	content := `
extension: kieli
semantic_tokens: full
inlay_hints: type
references: true
default_integers: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := LoadConfiguration(path, DefaultConfiguration())
	require.NoError(t, err)

	assert.Equal(t, "kieli", loaded.Extension)
	assert.Equal(t, SemanticTokensFull, loaded.SemanticTokens)
	assert.Equal(t, InlayHintsType, loaded.InlayHints)
	assert.True(t, loaded.References)
	assert.False(t, loaded.DefaultIntegers)
	// Untouched fields keep their defaults.
	assert.Equal(t, "main", loaded.MainName)
	assert.True(t, loaded.Diagnostics)
}

func TestLoadConfigurationInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kieli.yml")
	require.NoError(t, os.WriteFile(path, []byte("extension: [broken"), 0o644))

	_, err := LoadConfiguration(path, DefaultConfiguration())
	assert.Error(t, err)
}
