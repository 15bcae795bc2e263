/*
Package cart keeps per-user shopping carts of catalog trips.

Every item refers to a trip by code and is checked against the catalog
when it is added. Prices default to the trip's per-person price and the
cart total is recomputed as the sum of price × quantity on every change.
*/
package cart

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bastiangx/tripserve/internal/logger"
	"github.com/bastiangx/tripserve/pkg/catalog"
	"github.com/charmbracelet/log"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrInvalidCart  = errors.New("invalid cart data")
	ErrInvalidPrice = errors.New("invalid trip price")
)

// Item is one trip in a cart.
type Item struct {
	Code     string  `msgpack:"code"`
	Name     string  `msgpack:"name"`
	Price    float64 `msgpack:"price"`
	Quantity int     `msgpack:"quantity"`
	Image    string  `msgpack:"image,omitempty"`
}

// Cart is the cart of one user.
type Cart struct {
	UserID string  `msgpack:"user"`
	Items  []Item  `msgpack:"items"`
	Total  float64 `msgpack:"total"`
}

func (c *Cart) recalculate() {
	c.Total = 0
	for _, it := range c.Items {
		c.Total += it.Price * float64(it.Quantity)
	}
}

// TripFinder resolves trip codes. *catalog.Catalog satisfies it.
type TripFinder interface {
	FindByCode(code string) (catalog.Trip, error)
}

// Service applies cart operations against a Store. Like the catalog it is
// driven from a single loop and is not safe for concurrent use.
type Service struct {
	store  Store
	trips  TripFinder
	logger *log.Logger
}

func NewService(store Store, trips TripFinder) *Service {
	return &Service{
		store:  store,
		trips:  trips,
		logger: logger.New("cart"),
	}
}

// Get returns the user's cart, or an empty one when none is stored yet.
func (s *Service) Get(userID string) (Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return Cart{}, fmt.Errorf("%w: missing user", ErrInvalidCart)
	}
	c, err := s.store.Get(userID)
	if errors.Is(err, ErrCartNotFound) {
		return Cart{UserID: userID, Items: []Item{}}, nil
	}
	return c, err
}

// Add puts item into the user's cart. When the trip is already in the cart
// only its quantity grows.
func (s *Service) Add(userID string, item Item) (Cart, error) {
	c, err := s.Get(userID)
	if err != nil {
		return Cart{}, err
	}
	item, err = s.resolve(item)
	if err != nil {
		return Cart{}, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].Code == item.Code {
			c.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, item)
	}
	return s.save(c)
}

// Replace swaps every item in the user's cart. All codes must resolve or
// the cart is left unchanged.
func (s *Service) Replace(userID string, items []Item) (Cart, error) {
	if len(items) == 0 {
		return Cart{}, fmt.Errorf("%w: no items", ErrInvalidCart)
	}
	c, err := s.Get(userID)
	if err != nil {
		return Cart{}, err
	}
	resolved := make([]Item, len(items))
	for i, it := range items {
		if resolved[i], err = s.resolve(it); err != nil {
			return Cart{}, err
		}
	}
	c.Items = resolved
	return s.save(c)
}

// Remove drops the trip with code from the user's cart.
func (s *Service) Remove(userID, code string) (Cart, error) {
	if code == "" {
		return Cart{}, fmt.Errorf("%w: item code is required", ErrInvalidCart)
	}
	c, err := s.stored(userID)
	if err != nil {
		return Cart{}, err
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.Code != code {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return s.save(c)
}

// Clear empties the user's cart.
func (s *Service) Clear(userID string) (Cart, error) {
	c, err := s.stored(userID)
	if err != nil {
		return Cart{}, err
	}
	c.Items = []Item{}
	return s.save(c)
}

// stored is Get without the empty-cart fallback.
func (s *Service) stored(userID string) (Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return Cart{}, fmt.Errorf("%w: missing user", ErrInvalidCart)
	}
	return s.store.Get(userID)
}

// resolve checks item against the catalog and fills name, price, quantity
// and image from the trip where the item leaves them empty.
func (s *Service) resolve(item Item) (Item, error) {
	if strings.TrimSpace(item.Code) == "" {
		return Item{}, fmt.Errorf("%w: trip code is required", ErrInvalidCart)
	}
	trip, err := s.trips.FindByCode(item.Code)
	if err != nil {
		return Item{}, err
	}

	if item.Price == 0 {
		p, err := trip.Price()
		if err != nil {
			return Item{}, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
		}
		item.Price = p
	}
	if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
		return Item{}, fmt.Errorf("%w: %s costs %v", ErrInvalidPrice, item.Code, item.Price)
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.Name == "" {
		item.Name = trip.Name
	}
	if item.Image == "" {
		item.Image = trip.Image
	}
	return item, nil
}

func (s *Service) save(c Cart) (Cart, error) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	c.recalculate()
	if err := s.store.Put(c); err != nil {
		return Cart{}, fmt.Errorf("failed to store cart for %s: %w", c.UserID, err)
	}
	s.logger.Debug("Saved cart", "user", c.UserID, "items", len(c.Items), "total", c.Total)
	return c, nil
}
