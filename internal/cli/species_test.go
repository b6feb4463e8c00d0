package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spearfished/internal/catalog"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderSpeciesList_Golden(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderSpeciesList(buf, catalog.Static()))

	newGoldie(t).Assert(t, "species_list", buf.Bytes())
}

func TestRenderSpecies_Golden(t *testing.T) {
	sp, ok := catalog.Match(catalog.Static(), "hogfish")
	require.True(t, ok)

	buf := &bytes.Buffer{}
	require.NoError(t, renderSpecies(buf, sp))

	newGoldie(t).Assert(t, "species_hogfish", buf.Bytes())
}

func TestRenderSpecies_Gallery(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderSpecies(buf, catalog.Species{
		Name:         "Lionfish",
		Illustration: "https://example.com/lionfish.png",
		Gallery:      []string{"https://example.com/1.jpg", "https://example.com/2.jpg"},
	}))

	assert.Equal(t, "Lionfish\n"+
		"  Illustration:  https://example.com/lionfish.png\n"+
		"  Gallery:\n"+
		"    https://example.com/1.jpg\n"+
		"    https://example.com/2.jpg\n", buf.String())
}

func TestSpeciesCommand_List(t *testing.T) {
	stdout, _, err := cliRun(t, t.TempDir(), nil, "species")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "species_list", []byte(stdout))
}

func TestSpeciesCommand_MatchJSON(t *testing.T) {
	stdout, _, err := cliRun(t, t.TempDir(), nil, "--format", "json", "species", "snapper")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   catalog.Species `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Red Snapper", resp.Data.Name)
	assert.Equal(t, "Lutjanus campechanus", resp.Data.ScientificName)
}

func TestSpeciesCommand_NotFound(t *testing.T) {
	stdout, stderr, err := cliRun(t, t.TempDir(), nil, "species", "tuna")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `Error [NOT_FOUND]: no species matches "tuna"`)
}

func TestSpeciesCommand_FileSource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "species.json", `[{"name":"Lionfish","habitat":"Reef"}]`)

	stdout, _, err := cliRun(t, dir, map[string]string{"SPECIES_SOURCE": path}, "species")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Lionfish")
	assert.Contains(t, stdout, "1 species")
	assert.NotContains(t, stdout, "Hogfish")
}
