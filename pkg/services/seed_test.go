package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCategorySeed(t *testing.T) {
	path := writeSeed(t, `categories:
  - name: Picking
    description: Order picking
  - name: Packing
`)

	records, err := LoadCategorySeed(path)
	require.NoError(t, err)
	assert.Equal(t, []models.NamedRecord{
		{Name: "Picking", Description: "Order picking"},
		{Name: "Packing", Description: "Packing"},
	}, records)
}

func TestLoadCategorySeed_EmptyFile(t *testing.T) {
	records, err := LoadCategorySeed(writeSeed(t, ""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadCategorySeed_Errors(t *testing.T) {
	_, err := LoadCategorySeed(writeSeed(t, "categories:\n  - name: Picking\n    colour: red\n"))
	assert.ErrorContains(t, err, "failed to parse category seed file")

	_, err = LoadCategorySeed(writeSeed(t, "categories:\n  - description: nameless\n"))
	assert.ErrorContains(t, err, "entry 1 has no name")

	_, err = LoadCategorySeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open category seed file")
}
