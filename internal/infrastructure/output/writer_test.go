package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"RankingsScanner/internal/domain"
)

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		DataVersion: "v1.0",
		LastUpdated: "2024-08-13",
		Total:       1,
		Colleges: []domain.College{{
			Name:           "Example College",
			City:           "Nagpur",
			State:          "Maharashtra",
			NIRFRank:       4,
			NIRFScore:      62.1,
			OverallRank:    4,
			CoursesOffered: []string{},
			Images:         []string{},
			Brochures:      []string{},
		}},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "colleges.json")
	require.NoError(t, NewFileWriter(path, "").Write(sampleDataset()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"dataVersion\": \"v1.0\""))
	assert.Contains(t, string(raw), `"fees": null`)
	assert.Contains(t, string(raw), `"coursesOffered": []`)

	ds, err := ReadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDataset(), ds)
}

func TestYAMLOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "colleges.yaml")
	require.NoError(t, NewFileWriter(path, FormatYAML).Write(sampleDataset()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	assert.Equal(t, "v1.0", decoded["dataVersion"])
	assert.Equal(t, 1, decoded["total"])
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Encode(sampleDataset(), "xml")
	assert.Error(t, err)
}
