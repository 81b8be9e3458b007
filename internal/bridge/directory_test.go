package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePartnerFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "partners.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDirectory(t *testing.T) {
	path := writePartnerFile(t, `[
  {"category": "Canalização", "area": "Almada", "pros": [
    {"name": "Aqua Rápida", "phone": "+351911111111"},
    {"name": "Tubos & Co", "phone": "+351922222222"}
  ]},
  {"category": "Eletricidade", "area": "Lisboa", "pros": [
    {"name": "Luz Certa", "phone": "+351933333333"}
  ]}
]`)

	dir, err := LoadDirectory(path)
	require.NoError(t, err)

	partner := dir.Find("Canalização", "Almada")
	require.NotNil(t, partner)
	assert.Equal(t, "Aqua Rápida", partner.Name, "first listed partner wins")

	assert.Nil(t, dir.Find("Canalização", "Porto"))
	assert.Nil(t, dir.Find("Jardinagem", "Almada"))
}

func TestLoadDirectoryCaseInsensitiveMatch(t *testing.T) {
	path := writePartnerFile(t, `[
  {"category": "Canalização", "area": "Almada", "pros": [{"name": "Aqua Rápida", "phone": "+351911111111"}]}
]`)

	dir, err := LoadDirectory(path)
	require.NoError(t, err)
	assert.NotNil(t, dir.Find("canalização", "ALMADA"))
}

func TestLoadDirectoryReportsAllProblems(t *testing.T) {
	path := writePartnerFile(t, `[
  {"category": "", "area": "Almada", "pros": []},
  {"category": "Eletricidade", "area": "", "pros": [{"name": "", "phone": ""}]}
]`)

	_, err := LoadDirectory(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 0: category required")
	assert.Contains(t, err.Error(), "entry 0: at least one partner required")
	assert.Contains(t, err.Error(), "entry 1: area required")
	assert.Contains(t, err.Error(), "entry 1 partner 0: name required")
	assert.Contains(t, err.Error(), "entry 1 partner 0: phone required")
}

func TestLoadDirectoryMissingFile(t *testing.T) {
	_, err := LoadDirectory(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
