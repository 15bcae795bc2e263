package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bastiangx/tripserve/internal/logger"
	"github.com/bastiangx/tripserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Catalog serves trip lookups and typeahead over a Store.
//
// It holds the typeahead index and a patricia trie keyed by trip code, both
// rebuilt by Load. A Catalog is not safe for concurrent use; the IPC server
// and the CLI call it from a single loop.
type Catalog struct {
	store    Store
	newIndex func() suggest.Indexer
	index    suggest.Indexer
	codes    *patricia.Trie
	trips    []Trip
	pageSize int
	maxPage  int
	loadedAt time.Time
	logger   *log.Logger
}

// Option tweaks a Catalog at construction.
type Option func(*Catalog)

// WithPaging sets the default and maximum listing page sizes.
func WithPaging(defaultSize, maxSize int) Option {
	return func(c *Catalog) {
		c.pageSize = defaultSize
		c.maxPage = maxSize
	}
}

// WithIndexer replaces the default PrefixIndex factory.
func WithIndexer(newIndex func() suggest.Indexer) Option {
	return func(c *Catalog) {
		c.newIndex = newIndex
	}
}

// New returns an empty catalog over store. Call Load before serving.
func New(store Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:    store,
		newIndex: func() suggest.Indexer { return suggest.NewPrefixIndex() },
		codes:    patricia.NewTrie(),
		pageSize: DefaultPageSize,
		maxPage:  MaxPageSize,
		logger:   logger.New("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.index = c.newIndex()
	return c
}

// Load reads every trip from the store and rebuilds the indexes.
func (c *Catalog) Load() error {
	trips, err := c.store.List()
	if err != nil {
		return fmt.Errorf("failed to list trips: %w", err)
	}

	start := time.Now()
	index := c.newIndex()
	codes := patricia.NewTrie()
	for i := range trips {
		index.Insert(trips[i].Name)
		index.Insert(trips[i].Resort)
		codes.Set(patricia.Prefix(trips[i].Code), i)
	}

	c.trips = trips
	c.index = index
	c.codes = codes
	c.loadedAt = time.Now()
	c.logger.Debugf("Indexed %d trips in %v", len(trips), time.Since(start))
	return nil
}

// Suggest returns typeahead suggestions for prefix. An empty prefix yields
// no suggestions without consulting the index.
func (c *Catalog) Suggest(prefix string) []string {
	if prefix == "" {
		return []string{}
	}
	return c.index.Search(prefix)
}

// FindByCode returns the trip with the exact code.
func (c *Catalog) FindByCode(code string) (Trip, error) {
	item := c.codes.Get(patricia.Prefix(code))
	if item == nil {
		return Trip{}, fmt.Errorf("%w: %s", ErrTripNotFound, code)
	}
	return c.trips[item.(int)], nil
}

// CodesWithPrefix lists trip codes starting with prefix in lexical order.
func (c *Catalog) CodesWithPrefix(prefix string) []string {
	codes := []string{}
	err := c.codes.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		codes = append(codes, string(p))
		return nil
	})
	if err != nil {
		c.logger.Errorf("Error visiting code trie: %v", err)
	}
	sort.Strings(codes)
	return codes
}

// AddTrip stores a new trip and rebuilds the indexes.
//
// The store write and the rebuild are separate steps. If the rebuild fails
// the trip stays stored and the error says so, while lookups keep answering
// from the previous indexes until the next successful Load.
func (c *Catalog) AddTrip(trip Trip) error {
	if err := trip.Validate(); err != nil {
		return err
	}
	if _, err := c.store.Get(trip.Code); err == nil {
		return fmt.Errorf("%w: %s", ErrTripExists, trip.Code)
	} else if !errors.Is(err, ErrTripNotFound) {
		return err
	}
	if err := c.store.Put(trip); err != nil {
		return fmt.Errorf("failed to store trip %s: %w", trip.Code, err)
	}
	c.logger.Debugf("Added trip %s", trip.Code)
	return c.reindex(trip.Code)
}

// UpdateTrip replaces the trip stored under code. The code itself cannot
// change; trip.Code is overwritten with code. A failed rebuild behaves as in
// AddTrip.
func (c *Catalog) UpdateTrip(code string, trip Trip) error {
	if _, err := c.store.Get(code); err != nil {
		return err
	}
	trip.Code = code
	if err := trip.Validate(); err != nil {
		return err
	}
	if err := c.store.Put(trip); err != nil {
		return fmt.Errorf("failed to store trip %s: %w", code, err)
	}
	c.logger.Debugf("Updated trip %s", code)
	return c.reindex(code)
}

// reindex runs Load after a store write. Load swaps the indexes only on
// success, so on failure the previous ones stay in place.
func (c *Catalog) reindex(code string) error {
	if err := c.Load(); err != nil {
		c.logger.Errorf("Trip %s stored but re-index failed, serving previous index: %v", code, err)
		return fmt.Errorf("trip %s stored, re-index failed: %w", code, err)
	}
	return nil
}

// Search runs a listing query over the loaded trips.
func (c *Catalog) Search(params SearchParams) SearchResult {
	return Query(c.trips, params, c.pageSize, c.maxPage)
}

// Len returns the number of loaded trips.
func (c *Catalog) Len() int {
	return len(c.trips)
}

// Stats merges catalog counters with the index counters.
func (c *Catalog) Stats() map[string]int {
	stats := map[string]int{
		"trips": len(c.trips),
	}
	for k, v := range c.index.Stats() {
		stats[k] = v
	}
	if !c.loadedAt.IsZero() {
		stats["loadedSecondsAgo"] = int(time.Since(c.loadedAt).Seconds())
	}
	return stats
}
