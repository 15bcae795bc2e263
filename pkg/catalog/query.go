package catalog

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/bastiangx/tripserve/internal/utils"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// SearchParams selects one page of the trip listing.
type SearchParams struct {
	Query         string `msgpack:"q,omitempty"`
	Page          int    `msgpack:"page,omitempty"`
	PageSize      int    `msgpack:"size,omitempty"`
	SortBy        string `msgpack:"sort,omitempty"`
	SortDirection string `msgpack:"dir,omitempty"` // "asc" or "desc"
}

// SearchResult is one page of trips plus the total match count.
type SearchResult struct {
	Trips    []Trip `msgpack:"trips"`
	Total    int    `msgpack:"total"`
	Page     int    `msgpack:"page"`
	PageSize int    `msgpack:"size"`
}

// normalize fills defaults and clamps paging.
func (p SearchParams) normalize(defaultSize, maxSize int) SearchParams {
	if defaultSize < 1 {
		defaultSize = DefaultPageSize
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	p.SortBy = strings.ToLower(p.SortBy)
	if p.SortBy == "" {
		p.SortBy = "name"
	}
	if !strings.EqualFold(p.SortDirection, "desc") {
		p.SortDirection = "asc"
	} else {
		p.SortDirection = "desc"
	}
	return p
}

// Query filters, sorts and pages trips. The input slice is left untouched.
func Query(trips []Trip, params SearchParams, defaultSize, maxSize int) SearchResult {
	params = params.normalize(defaultSize, maxSize)

	matched := make([]Trip, 0, len(trips))
	q := strings.TrimSpace(params.Query)
	for _, t := range trips {
		if q == "" || utils.StringContainsIgnoreCase(t.Name, q) || utils.StringContainsIgnoreCase(t.Resort, q) {
			matched = append(matched, t)
		}
	}

	less := lessFunc(params.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		if params.SortDirection == "desc" {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	result := SearchResult{
		Trips:    []Trip{},
		Total:    len(matched),
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return result
	}
	end := min(start+params.PageSize, len(matched))
	result.Trips = matched[start:end]
	return result
}

func lessFunc(sortBy string) func(a, b Trip) bool {
	switch sortBy {
	case "resort":
		return func(a, b Trip) bool { return strings.ToLower(a.Resort) < strings.ToLower(b.Resort) }
	case "length":
		return lessLength
	case "start":
		return func(a, b Trip) bool { return a.Start.Before(b.Start) }
	case "price":
		// unparseable prices sort after every valid one
		return func(a, b Trip) bool {
			pa, errA := a.Price()
			pb, errB := b.Price()
			switch {
			case errA != nil:
				return false
			case errB != nil:
				return true
			}
			return pa < pb
		}
	default:
		return func(a, b Trip) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
}

// lessLength orders lengths like "4 nights / 5 days" by their leading
// number, falling back to the text when either has none or they tie.
func lessLength(a, b Trip) bool {
	na, okA := leadingInt(a.Length)
	nb, okB := leadingInt(b.Length)
	if okA && okB && na != nb {
		return na < nb
	}
	if okA != okB {
		return okA
	}
	return strings.ToLower(a.Length) < strings.ToLower(b.Length)
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}
