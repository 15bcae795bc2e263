package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/tripserve/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, input string) string {
	t.Helper()
	store := catalog.NewMemoryStore()
	require.NoError(t, catalog.Seed(store, []catalog.Trip{
		{Code: "GALR210214", Name: "Gale Reef", Resort: "Emerald Bay, 3 stars", PerPerson: "799.00"},
		{Code: "DAWR210315", Name: "Dawson's Reef", Resort: "Blue Lagoon, 4 stars", PerPerson: "1199.00"},
	}))
	cat := catalog.New(store)
	require.NoError(t, cat.Load())

	var out bytes.Buffer
	h := NewInputHandler(cat, strings.NewReader(input), &out, 1, 20, false)
	require.NoError(t, h.Start())
	return out.String()
}

func TestInputHandlerSuggestions(t *testing.T) {
	out := runCLI(t, "daw\nzzz\nthis prefix is far too long\nx")

	assert.Contains(t, out, "Found 1 suggestions for prefix 'daw'")
	assert.Contains(t, out, "Dawson's Reef")
	assert.Contains(t, out, "'zzz' (filtered out)")
	assert.Contains(t, out, "Prefix too long")
	assert.Contains(t, out, "No suggestions found for prefix: 'x'")
}

func TestInputHandlerCommands(t *testing.T) {
	out := runCLI(t, ":trip DAWR210315\n:trip NOPE\n:codes G\n:list lagoon\n:bogus\n:q\ndaw\n")

	assert.Contains(t, out, "Blue Lagoon, 4 stars")
	assert.Contains(t, out, "1,199.00")
	assert.Contains(t, out, "trip not found")
	assert.Contains(t, out, "GALR210214")
	assert.Contains(t, out, "1 trips match 'lagoon'")
	assert.Contains(t, out, "Unknown command: bogus")
	assert.NotContains(t, out, "Found 1 suggestions", "input after :q is ignored")
}

func TestInputHandlerStatsSorted(t *testing.T) {
	out := runCLI(t, ":stats\n")

	keys := []string{"insertedWords", "loadedSecondsAgo", "nodes", "rootWords", "trips"}
	last := -1
	for _, k := range keys {
		i := strings.Index(out, k+" value=")
		require.NotEqual(t, -1, i, "missing %s", k)
		assert.Greater(t, i, last, "%s out of order", k)
		last = i
	}
}
