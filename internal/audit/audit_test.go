package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	archiver := NewArchiver(dir)

	t.Run("Save creates directory and writes JSON", func(t *testing.T) {
		data := map[string]any{
			"filename": "estoque.xlsx",
			"rejected": 2,
			"isbns":    []string{"9788535914849", "9788573210452"},
		}

		filename, err := archiver.Save("catalog", data)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filename, "catalog-"))
		assert.True(t, strings.HasSuffix(filename, ".json"))

		content, err := os.ReadFile(filepath.Join(dir, filename))
		require.NoError(t, err)

		var saved map[string]any
		require.NoError(t, json.Unmarshal(content, &saved))
		assert.Equal(t, "estoque.xlsx", saved["filename"])
		assert.Equal(t, float64(2), saved["rejected"])
		assert.Equal(t, []any{"9788535914849", "9788573210452"}, saved["isbns"])
	})

	t.Run("Save generates unique filenames", func(t *testing.T) {
		first, err := archiver.Save("sales", map[string]string{"k": "v"})
		require.NoError(t, err)
		second, err := archiver.Save("sales", map[string]string{"k": "v"})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("Save rejects unmarshalable data", func(t *testing.T) {
		_, err := archiver.Save("catalog", map[string]any{"ch": make(chan int)})
		assert.Error(t, err)
	})
}

func TestArchiver_Disabled(t *testing.T) {
	var nilArchiver *Archiver
	name, err := nilArchiver.Save("catalog", "x")
	require.NoError(t, err)
	assert.Empty(t, name)

	name, err = NewArchiver("").Save("catalog", "x")
	require.NoError(t, err)
	assert.Empty(t, name)
}
