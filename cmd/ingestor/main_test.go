package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_search/internal/shared"
)

const catalogJSON = `[
  {"id": "a1", "hotel_name_en": "Shinjuku Washington Hotel", "city_name_en": "Tokyo", "region_name": "Shinjuku", "search_count": 900},
  {"id": "a2", "hotel_name_en": "Osaka Station Hotel", "city_name_en": "Osaka", "search_count": 300}
]`

func testConfig() shared.Config {
	return shared.Config{AppEnv: "test", LogLevel: "error", SearchMinSimilarity: 0.5, Workers: 2}
}

func TestInspectPrintsSuggestAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotels.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o644))

	var out bytes.Buffer
	a := newApp(testConfig())
	a.Writer = &out

	require.NoError(t, a.Run([]string{"ingestor", "inspect", "--path", path, "--q", "shinjuku"}))

	var got struct {
		Hotels      int `json:"hotels"`
		Suggestions []struct {
			ID string `json:"hotelId"`
		} `json:"suggestions"`
		Search struct {
			TotalCount int `json:"totalCount"`
		} `json:"search"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got.Hotels)
	require.NotEmpty(t, got.Suggestions)
	assert.Equal(t, "a1", got.Suggestions[0].ID)
	assert.Equal(t, 1, got.Search.TotalCount)
}

func TestInspectRequiresQuery(t *testing.T) {
	a := newApp(testConfig())
	a.Writer = &bytes.Buffer{}
	a.ErrWriter = &bytes.Buffer{}

	err := a.Run([]string{"ingestor", "inspect", "--path", "unused.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q")
}

func TestInspectMissingFile(t *testing.T) {
	a := newApp(testConfig())
	a.Writer = &bytes.Buffer{}

	err := a.Run([]string{"ingestor", "inspect", "--path", filepath.Join(t.TempDir(), "nope.json"), "--q", "tokyo"})
	assert.Error(t, err)
}
