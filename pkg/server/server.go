package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/tripserve/internal/logger"
	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/cart"
	"github.com/bastiangx/tripserve/pkg/catalog"
	"github.com/bastiangx/tripserve/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for trip suggestions and catalog queries
type Server struct {
	catalog      *catalog.Catalog
	carts        *cart.Service
	config       *config.Config
	decoder      *msgpack.Decoder
	writer       *bufio.Writer
	encoder      *msgpack.Encoder
	logger       *log.Logger
	requestCount int
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(cat *catalog.Catalog, carts *cart.Service, cfg *config.Config) *Server {
	return NewServerWithIO(cat, carts, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over arbitrary streams. A nil carts
// keeps carts in memory; a nil cfg uses the defaults.
func NewServerWithIO(cat *catalog.Catalog, carts *cart.Service, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if carts == nil {
		carts = cart.NewService(cart.NewMemoryStore(), cat)
	}
	bw := bufio.NewWriter(w)
	return &Server{
		catalog: cat,
		carts:   carts,
		config:  cfg,
		decoder: msgpack.NewDecoder(bufio.NewReader(r)),
		writer:  bw,
		encoder: msgpack.NewEncoder(bw),
		logger:  logger.New("ipc"),
	}
}

// Start signals readiness and serves requests until the input stream ends.
// A request that is valid msgpack but not a valid envelope gets an error
// response; a corrupt stream stops the server.
func (s *Server) Start() error {
	s.logger.Debug("Starting server")
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed, stopping", "requests", s.requestCount)
				return nil
			}
			s.logger.Errorf("Reading request: %v", err)
			return fmt.Errorf("reading request: %w", err)
		}
		s.handleRaw(raw)
	}
}

func (s *Server) handleRaw(raw msgpack.RawMessage) {
	s.requestCount++

	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.logger.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "Invalid msgpack request", 400)
		return
	}
	s.handleRequest(req)
}

func (s *Server) handleRequest(req Request) {
	switch req.Op {
	case OpSuggest:
		s.handleSuggest(req)
	case OpTrips:
		s.sendResponse(TripsResponse{ID: req.ID, SearchResult: s.catalog.Search(req.SearchParams)})
	case OpTrip:
		s.handleTrip(req)
	case OpCodes:
		codes := s.catalog.CodesWithPrefix(req.Prefix)
		s.sendResponse(CodesResponse{ID: req.ID, Codes: codes, Count: len(codes)})
	case OpAddTrip:
		s.handleAddTrip(req)
	case OpUpdateTrip:
		s.handleUpdateTrip(req)
	case OpStats:
		stats := s.catalog.Stats()
		stats["requests"] = s.requestCount
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Stats: stats})
	case OpHealth:
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	case OpCart, OpCartAdd, OpCartUpdate, OpCartRemove, OpCartClear:
		s.handleCart(req)
	case "":
		s.sendError(req.ID, "Missing 'op' field", 400)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown op: %s", req.Op), 400)
	}
}

// handleSuggest validates the prefix and answers from the catalog index.
// An empty or filtered prefix is not an error, it just has no suggestions.
func (s *Server) handleSuggest(req Request) {
	start := time.Now()
	prefix := req.Prefix
	n := utf8.RuneCountInString(prefix)

	if n > s.config.Server.MaxPrefix {
		s.sendError(req.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", s.config.Server.MaxPrefix), 400)
		return
	}
	if n > 0 && n < s.config.Server.MinPrefix {
		s.sendError(req.ID, fmt.Sprintf("Prefix must be at least %d characters", s.config.Server.MinPrefix), 400)
		return
	}

	var words []string
	if s.config.Server.EnableFilter && prefix != "" && !utils.IsValidInput(prefix) {
		s.logger.Debug("Prefix filtered out", "prefix", prefix)
	} else {
		words = s.catalog.Suggest(prefix)
	}

	ranks := utils.RankList(len(words))
	suggestions := make([]Suggestion, len(words))
	for i, w := range words {
		suggestions[i] = Suggestion{Word: w, Rank: ranks[i]}
	}

	s.sendResponse(SuggestResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleTrip(req Request) {
	if req.Code == "" {
		s.sendError(req.ID, "Missing 'code' field", 400)
		return
	}
	trip, err := s.catalog.FindByCode(req.Code)
	if err != nil {
		s.sendCatalogError(req.ID, err)
		return
	}
	s.sendResponse(TripResponse{ID: req.ID, Trip: trip})
}

func (s *Server) handleAddTrip(req Request) {
	if req.Trip == nil {
		s.sendError(req.ID, "Missing 'trip' field", 400)
		return
	}
	if err := s.catalog.AddTrip(*req.Trip); err != nil {
		s.sendCatalogError(req.ID, err)
		return
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "created"})
}

func (s *Server) handleUpdateTrip(req Request) {
	if req.Trip == nil {
		s.sendError(req.ID, "Missing 'trip' field", 400)
		return
	}
	code := req.Code
	if code == "" {
		code = req.Trip.Code
	}
	if err := s.catalog.UpdateTrip(code, *req.Trip); err != nil {
		s.sendCatalogError(req.ID, err)
		return
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "updated"})
}

func (s *Server) handleCart(req Request) {
	var (
		c   cart.Cart
		err error
	)
	switch req.Op {
	case OpCart:
		c, err = s.carts.Get(req.User)
	case OpCartAdd:
		if req.Item == nil {
			s.sendError(req.ID, "Missing 'item' field", 400)
			return
		}
		c, err = s.carts.Add(req.User, *req.Item)
	case OpCartUpdate:
		c, err = s.carts.Replace(req.User, req.Items)
	case OpCartRemove:
		c, err = s.carts.Remove(req.User, req.Code)
	case OpCartClear:
		c, err = s.carts.Clear(req.User)
	}
	if err != nil {
		s.sendCatalogError(req.ID, err)
		return
	}
	s.sendResponse(CartResponse{ID: req.ID, Cart: c})
}

// sendCatalogError maps catalog and cart errors onto status codes
func (s *Server) sendCatalogError(id string, err error) {
	switch {
	case errors.Is(err, catalog.ErrTripNotFound), errors.Is(err, cart.ErrCartNotFound):
		s.sendError(id, err.Error(), 404)
	case errors.Is(err, catalog.ErrInvalidTrip), errors.Is(err, cart.ErrInvalidCart), errors.Is(err, cart.ErrInvalidPrice):
		s.sendError(id, err.Error(), 400)
	case errors.Is(err, catalog.ErrTripExists):
		s.sendError(id, err.Error(), 409)
	default:
		s.logger.Errorf("Catalog failure: %v", err)
		s.sendError(id, "Internal server error", 500)
	}
}

// sendResponse encodes response as one msgpack map and flushes it
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.logger.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
