/*
Package catalog owns the trip catalog: the stores trips live in, the seed
files they are loaded from, and the indexes built over them at startup.

The catalog is the source of truth for the typeahead index. The index is
never updated in place; any catalog change rebuilds it from the store.
*/
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTripNotFound = errors.New("trip not found")
	ErrInvalidTrip  = errors.New("invalid trip")
	ErrTripExists   = errors.New("trip already exists")
	ErrStoreClosed  = errors.New("store is closed")
)

// Trip mirrors a travlr catalog entry.
type Trip struct {
	Code        string    `toml:"code" msgpack:"code"`
	Name        string    `toml:"name" msgpack:"name"`
	Length      string    `toml:"length" msgpack:"length"`
	Start       time.Time `toml:"start" msgpack:"start"`
	Resort      string    `toml:"resort" msgpack:"resort"`
	PerPerson   string    `toml:"per_person" msgpack:"perPerson"`
	Image       string    `toml:"image" msgpack:"image,omitempty"`
	Description string    `toml:"description" msgpack:"description,omitempty"`
}

// Validate checks the fields the catalog relies on.
func (t Trip) Validate() error {
	if strings.TrimSpace(t.Code) == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidTrip)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: trip %s has no name", ErrInvalidTrip, t.Code)
	}
	return nil
}

// Price parses the per-person price, e.g. "1199.00". NaN, infinities and
// negative amounts are rejected.
func (t Trip) Price() (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(t.PerPerson), 64)
	if err != nil {
		return 0, fmt.Errorf("trip %s: bad price %q: %w", t.Code, t.PerPerson, err)
	}
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0, fmt.Errorf("trip %s: bad price %q", t.Code, t.PerPerson)
	}
	return p, nil
}
