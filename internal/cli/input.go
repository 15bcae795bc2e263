// Package cli handles interactive prefix input for debugging the catalog index
package cli

import (
	"bufio"
	"errors"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/catalog"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	codeStyle = lipgloss.NewStyle().Bold(true)
)

// InputHandler reads prefixes line by line and prints the catalog's
// suggestions. Lines starting with ':' are commands:
//
//	:trip CODE      show one trip
//	:codes PREFIX   list trip codes
//	:list QUERY     first listing page for a query
//	:stats          catalog and index counters
//	:q              quit
type InputHandler struct {
	catalog         *catalog.Catalog
	in              io.Reader
	out             *log.Logger
	minPrefixLength int
	maxPrefixLength int
	noFilter        bool
	requestCount    int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(cat *catalog.Catalog, in io.Reader, out io.Writer, minLength, maxLength int, noFilter bool) *InputHandler {
	return &InputHandler{
		catalog: cat,
		in:      in,
		out: log.NewWithOptions(out, log.Options{
			ReportTimestamp: false,
			Level:           log.DebugLevel,
		}),
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		noFilter:        noFilter,
	}
}

// Start runs the input loop until EOF or :q.
func (h *InputHandler) Start() error {
	h.out.Print("tripserve CLI")
	h.out.Print("type a prefix and press Enter to see the suggestions (:q or Ctrl+C to exit):")
	reader := bufio.NewReader(h.in)

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		line = strings.TrimSpace(line)
		if line == ":q" {
			return nil
		}
		if line != "" {
			h.handleLine(line)
		}
		if err != nil {
			return nil
		}
	}
}

func (h *InputHandler) handleLine(line string) {
	h.requestCount++
	if !strings.HasPrefix(line, ":") {
		h.handlePrefix(line)
		return
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "trip":
		h.showTrip(arg)
	case "codes":
		codes := h.catalog.CodesWithPrefix(arg)
		if len(codes) == 0 {
			h.out.Warnf("No trip codes start with '%s'", arg)
			return
		}
		for _, c := range codes {
			h.out.Print(codeStyle.Render(c))
		}
	case "list":
		h.showListing(arg)
	case "stats":
		stats := h.catalog.Stats()
		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.out.Print(k, "value", stats[k])
		}
	default:
		h.out.Errorf("Unknown command: %s", cmd)
	}
}

// handlePrefix validates length and content, then prints suggestions
func (h *InputHandler) handlePrefix(prefix string) {
	n := utf8.RuneCountInString(prefix)
	if n < h.minPrefixLength {
		h.out.Errorf("Prefix too short: %s", prefix)
		return
	}
	if n > h.maxPrefixLength {
		h.out.Errorf("Prefix too long: %s", prefix)
		return
	}
	if !h.noFilter && !utils.IsValidInput(prefix) {
		h.out.Warnf("No suggestions found for prefix: '%s' (filtered out)", prefix)
		return
	}

	start := time.Now()
	suggestions := h.catalog.Suggest(prefix)
	elapsed := time.Since(start)
	log.Debugf("Took %v for prefix '%s'", elapsed, prefix)

	if len(suggestions) == 0 {
		h.out.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}
	h.out.Printf("Found %d suggestions for prefix '%s':", len(suggestions), prefix)
	for i, s := range suggestions {
		h.out.Printf("%2d. %s", i+1, wordStyle.Render(s))
	}
}

func (h *InputHandler) showTrip(code string) {
	trip, err := h.catalog.FindByCode(code)
	if err != nil {
		h.out.Error(err)
		return
	}
	h.out.Print(codeStyle.Render(trip.Code), "name", trip.Name, "resort", trip.Resort, "length", trip.Length, "price", formatPrice(trip))
}

func (h *InputHandler) showListing(query string) {
	res := h.catalog.Search(catalog.SearchParams{Query: query})
	h.out.Printf("%d trips match '%s' (page %d, size %d):", res.Total, query, res.Page, res.PageSize)
	for _, t := range res.Trips {
		h.out.Printf("%s  %-20s %-24s %10s", codeStyle.Render(t.Code), t.Name, t.Resort, formatPrice(t))
	}
}

func formatPrice(t catalog.Trip) string {
	p, err := t.Price()
	if err != nil {
		return t.PerPerson
	}
	return utils.FormatPrice(p)
}
