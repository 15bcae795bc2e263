package catalog

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bastiangx/tripserve/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reefTrips() []Trip {
	return []Trip{
		{
			Code: "GALR210214", Name: "Gale Reef", Length: "4 nights / 5 days",
			Start:  time.Date(2021, 2, 14, 8, 0, 0, 0, time.UTC),
			Resort: "Emerald Bay, 3 stars", PerPerson: "799.00", Image: "reef1.jpg",
		},
		{
			Code: "DAWR210315", Name: "Dawson's Reef", Length: "4 nights / 5 days",
			Start:  time.Date(2021, 3, 15, 8, 0, 0, 0, time.UTC),
			Resort: "Blue Lagoon, 4 stars", PerPerson: "1199.00", Image: "reef2.jpg",
		},
		{
			Code: "CLAR210621", Name: "Claire's Reef", Length: "4 nights / 5 days",
			Start:  time.Date(2021, 6, 21, 8, 0, 0, 0, time.UTC),
			Resort: "Coral Sands, 5 stars", PerPerson: "1999.00", Image: "reef3.jpg",
		},
	}
}

func newReefCatalog(t *testing.T) *Catalog {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, Seed(store, reefTrips()))
	c := New(store)
	require.NoError(t, c.Load())
	return c
}

func TestCatalogSuggest(t *testing.T) {
	c := newReefCatalog(t)

	testCases := []struct {
		prefix   string
		expected []string
	}{
		{"d", []string{"Dawson's Reef"}},
		{"c", []string{"Claire's Reef", "Coral Sands, 5 stars"}},
		{"bl", []string{"Blue Lagoon, 4 stars"}},
		{"EMERALD", []string{"Emerald Bay, 3 stars"}},
		{"reef", []string{}},
		{"", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.prefix, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Suggest(tc.prefix))
		})
	}
}

func TestCatalogFindByCode(t *testing.T) {
	c := newReefCatalog(t)

	trip, err := c.FindByCode("DAWR210315")
	require.NoError(t, err)
	assert.Equal(t, "Dawson's Reef", trip.Name)

	_, err = c.FindByCode("DAWR")
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestCatalogCodesWithPrefix(t *testing.T) {
	c := newReefCatalog(t)

	assert.Equal(t, []string{"CLAR210621", "DAWR210315", "GALR210214"}, c.CodesWithPrefix(""))
	assert.Equal(t, []string{"GALR210214"}, c.CodesWithPrefix("GA"))
	assert.Empty(t, c.CodesWithPrefix("X"))
}

func TestCatalogAddTrip(t *testing.T) {
	c := newReefCatalog(t)

	err := c.AddTrip(Trip{Code: "CORA220101", Name: "Coral Garden", Resort: "Sunset Cove", PerPerson: "650.00"})
	require.NoError(t, err)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"Claire's Reef", "Coral Sands, 5 stars", "Coral Garden"}, c.Suggest("c"))
	assert.Equal(t, []string{"Sunset Cove"}, c.Suggest("sun"))

	err = c.AddTrip(Trip{Code: "CORA220101", Name: "Duplicate"})
	assert.ErrorIs(t, err, ErrTripExists)

	err = c.AddTrip(Trip{Name: "No Code"})
	assert.ErrorIs(t, err, ErrInvalidTrip)
	assert.Equal(t, 4, c.Len())
}

func TestCatalogUpdateTripRebuildsIndex(t *testing.T) {
	c := newReefCatalog(t)

	updated := reefTrips()[0]
	updated.Name = "Gale Lagoon"
	updated.Code = "ignored"
	require.NoError(t, c.UpdateTrip("GALR210214", updated))

	trip, err := c.FindByCode("GALR210214")
	require.NoError(t, err)
	assert.Equal(t, "Gale Lagoon", trip.Name)
	assert.Equal(t, []string{"Gale Lagoon"}, c.Suggest("gale"))
	assert.Equal(t, 3, c.Len())

	_, err = c.FindByCode("ignored")
	assert.ErrorIs(t, err, ErrTripNotFound)

	err = c.UpdateTrip("NOPE", updated)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestCatalogSuggestCap(t *testing.T) {
	store := NewMemoryStore()
	for i := 0; i < 8; i++ {
		require.NoError(t, store.Put(Trip{Code: fmt.Sprintf("REEF%02d", i), Name: fmt.Sprintf("Reef %d", i)}))
	}
	c := New(store)
	require.NoError(t, c.Load())

	got := c.Suggest("reef")
	assert.Equal(t, []string{"Reef 0", "Reef 1", "Reef 2", "Reef 3", "Reef 4"}, got)
}

type failingStore struct{ MemoryStore }

func (failingStore) List() ([]Trip, error) { return nil, errors.New("disk on fire") }

func TestCatalogLoadError(t *testing.T) {
	c := New(&failingStore{})
	err := c.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestCatalogStats(t *testing.T) {
	c := newReefCatalog(t)
	stats := c.Stats()
	assert.Equal(t, 3, stats["trips"])
	assert.Equal(t, 6, stats["insertedWords"])
	assert.Equal(t, 5, stats["rootWords"])
}

func TestTripPrice(t *testing.T) {
	p, err := Trip{Code: "X", PerPerson: " 1199.00 "}.Price()
	require.NoError(t, err)
	assert.InDelta(t, 1199.0, p, 0.001)

	_, err = Trip{Code: "X", PerPerson: "call us"}.Price()
	assert.Error(t, err)
}

type recordingIndex struct {
	*suggest.PrefixIndex
	inserted []string
}

func (r *recordingIndex) Insert(word string) {
	r.inserted = append(r.inserted, word)
	r.PrefixIndex.Insert(word)
}

func TestCatalogLoadInsertsNameThenResort(t *testing.T) {
	var last *recordingIndex
	store := NewMemoryStore()
	require.NoError(t, Seed(store, reefTrips()[:2]))

	c := New(store, WithIndexer(func() suggest.Indexer {
		last = &recordingIndex{PrefixIndex: suggest.NewPrefixIndex()}
		return last
	}))
	require.NoError(t, c.Load())

	assert.Equal(t, []string{"Gale Reef", "Emerald Bay, 3 stars", "Dawson's Reef", "Blue Lagoon, 4 stars"}, last.inserted)
	assert.Equal(t, []string{"Dawson's Reef"}, c.Suggest("daw"))
}

type flakyListStore struct {
	*MemoryStore
	failList bool
}

func (s *flakyListStore) List() ([]Trip, error) {
	if s.failList {
		return nil, errors.New("disk on fire")
	}
	return s.MemoryStore.List()
}

func TestCatalogEditKeepsIndexWhenReloadFails(t *testing.T) {
	store := &flakyListStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, Seed(store, reefTrips()))
	c := New(store)
	require.NoError(t, c.Load())

	store.failList = true
	err := c.AddTrip(Trip{Code: "CORA220101", Name: "Coral Garden", Resort: "Sunset Cove"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORA220101 stored, re-index failed")

	// stored, but not yet visible
	_, err = store.Get("CORA220101")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Empty(t, c.Suggest("sun"))
	assert.Equal(t, []string{"Dawson's Reef"}, c.Suggest("daw"))

	updated := reefTrips()[1]
	updated.Name = "Dawson's Lagoon"
	require.Error(t, c.UpdateTrip("DAWR210315", updated))
	assert.Equal(t, []string{"Dawson's Reef"}, c.Suggest("daw"))

	store.failList = false
	require.NoError(t, c.Load())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"Sunset Cove"}, c.Suggest("sun"))
	assert.Equal(t, []string{"Dawson's Lagoon"}, c.Suggest("daw"))
}
