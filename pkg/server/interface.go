/*
Package server implements msgpack IPC for trip typeahead and catalog queries.

Clients write a stream of msgpack maps to stdin and read one msgpack map per
request from stdout. Requests are handled synchronously in arrival order, so
a client may pipeline them and match answers by id.

# IPC

Every request carries an id and an op:

	{"id": "req_001", "op": "suggest", "p": "daw"}

Suggestions keep the catalog's casing and come back in index order,
with microsecond timing:

	{"id": "req_001", "s": [{"w": "Dawson's Reef", "r": 1}], "c": 1, "t": 12}

Listing, lookup and catalog edits:

	{"id": "req_002", "op": "trips", "q": "reef", "page": 1, "size": 10, "sort": "price", "dir": "desc"}
	{"id": "req_003", "op": "trip", "code": "GALR210214"}
	{"id": "req_004", "op": "codes", "p": "GA"}
	{"id": "req_005", "op": "add_trip", "trip": {"code": "...", "name": "..."}}
	{"id": "req_006", "op": "update_trip", "code": "GALR210214", "trip": {...}}
	{"id": "req_007", "op": "stats"}

Carts are kept per user and answered with the whole cart:

	{"id": "req_008", "op": "cart_add", "user": "u1", "item": {"code": "GALR210214", "quantity": 2}}
	{"id": "req_008", "cart": {"user": "u1", "items": [...], "total": 1598}}
	{"id": "req_009", "op": "cart_update", "user": "u1", "items": [{"code": "..."}]}
	{"id": "req_010", "op": "cart_remove", "user": "u1", "code": "GALR210214"}
	{"id": "req_011", "op": "cart_clear", "user": "u1"}
	{"id": "req_012", "op": "cart", "user": "u1"}

Failures answer with an error message and an HTTP style status:

	{"id": "req_003", "e": "trip not found: XXX", "c": 404}

On startup the server writes {"status": "ready"} once.
*/
package server

import (
	"github.com/bastiangx/tripserve/pkg/cart"
	"github.com/bastiangx/tripserve/pkg/catalog"
)

const (
	OpSuggest    = "suggest"
	OpTrips      = "trips"
	OpTrip       = "trip"
	OpCodes      = "codes"
	OpAddTrip    = "add_trip"
	OpUpdateTrip = "update_trip"
	OpStats      = "stats"
	OpHealth     = "health"
	OpCart       = "cart"
	OpCartAdd    = "cart_add"
	OpCartUpdate = "cart_update"
	OpCartRemove = "cart_remove"
	OpCartClear  = "cart_clear"
)

// Request is the envelope for every op. Listing params are inlined.
type Request struct {
	ID     string        `msgpack:"id"`
	Op     string        `msgpack:"op"`
	Prefix string        `msgpack:"p,omitempty"`
	Code   string        `msgpack:"code,omitempty"`
	Trip   *catalog.Trip `msgpack:"trip,omitempty"`
	User   string        `msgpack:"user,omitempty"`
	Item   *cart.Item    `msgpack:"item,omitempty"`
	Items  []cart.Item   `msgpack:"items,omitempty"`
	catalog.SearchParams
}

// Suggestion - one typeahead entry
type Suggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// SuggestResponse - typeahead response
type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// TripsResponse - one listing page
type TripsResponse struct {
	ID string `msgpack:"id"`
	catalog.SearchResult
}

// TripResponse - single trip lookup
type TripResponse struct {
	ID   string       `msgpack:"id"`
	Trip catalog.Trip `msgpack:"trip"`
}

// CodesResponse - trip codes sharing a prefix
type CodesResponse struct {
	ID    string   `msgpack:"id"`
	Codes []string `msgpack:"codes"`
	Count int      `msgpack:"c"`
}

// CartResponse - the cart after a cart op
type CartResponse struct {
	ID   string    `msgpack:"id"`
	Cart cart.Cart `msgpack:"cart"`
}

// StatusResponse - health, stats and acknowledgements of catalog edits
type StatusResponse struct {
	ID     string         `msgpack:"id,omitempty"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// ErrorResponse holds basic error information for any failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
