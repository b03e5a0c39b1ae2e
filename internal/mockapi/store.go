package mockapi

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/utafrali/StorefrontGo/internal/domain"
)

// Store errors surfaced to handlers.
var (
	ErrUserExists          = errors.New("username is already taken")
	ErrUnknownUser         = errors.New("unknown user")
	ErrUnknownProduct      = errors.New("product doesn't exist")
	ErrUnknownAddress      = errors.New("address not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrBalanceInsufficient = errors.New("wallet balance not sufficient")
)

type account struct {
	passwordHash []byte
	balance      float64
	cart         []domain.CartEntry
	addresses    []domain.Address
}

// Store holds the fixture backend's state in memory: a seeded catalog and
// per-user accounts with cart, addresses, and wallet balance.
type Store struct {
	mu       sync.RWMutex
	catalog  []domain.Product
	accounts map[string]*account
}

// NewStore creates a Store seeded with the default catalog.
func NewStore() *Store {
	return &Store{
		catalog:  seedCatalog(),
		accounts: make(map[string]*account),
	}
}

// Catalog returns a copy of the product catalog.
func (s *Store) Catalog() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.catalog...)
}

// Search returns products whose name or category contains the query,
// case-insensitively. An empty query matches everything.
func (s *Store) Search(query string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	matches := make([]domain.Product, 0)
	for _, p := range s.catalog {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Category), q) {
			matches = append(matches, p)
		}
	}
	return matches
}

// CreateAccount registers a new user with the given bcrypt hash and starting balance.
func (s *Store) CreateAccount(username string, passwordHash []byte, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[username]; exists {
		return ErrUserExists
	}
	s.accounts[username] = &account{
		passwordHash: passwordHash,
		balance:      balance,
	}
	return nil
}

// CredentialsFor returns the stored password hash for a username.
func (s *Store) CredentialsFor(username string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	return acc.passwordHash, nil
}

// Balance returns the user's wallet balance.
func (s *Store) Balance(username string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[username]
	if !ok {
		return 0, ErrUnknownUser
	}
	return acc.balance, nil
}

// Cart returns a copy of the user's cart in insertion order.
func (s *Store) Cart(username string) ([]domain.CartEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	return append([]domain.CartEntry(nil), acc.cart...), nil
}

// UpsertCart sets the quantity for a product in the user's cart, keeping at
// most one entry per product. A quantity of zero or less removes the entry.
// Returns the full updated cart.
func (s *Store) UpsertCart(username, productID string, qty int) ([]domain.CartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	if !s.productExists(productID) {
		return nil, ErrUnknownProduct
	}

	idx := -1
	for i := range acc.cart {
		if acc.cart[i].ProductID == productID {
			idx = i
			break
		}
	}

	switch {
	case qty <= 0 && idx >= 0:
		acc.cart = append(acc.cart[:idx], acc.cart[idx+1:]...)
	case qty <= 0:
		// Removing an absent entry is a no-op.
	case idx >= 0:
		acc.cart[idx].Qty = qty
	default:
		acc.cart = append(acc.cart, domain.CartEntry{ProductID: productID, Qty: qty})
	}

	return append([]domain.CartEntry(nil), acc.cart...), nil
}

// Addresses returns a copy of the user's addresses in insertion order.
func (s *Store) Addresses(username string) ([]domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	return append([]domain.Address(nil), acc.addresses...), nil
}

// AddAddress appends a new address with a server-assigned id and returns the
// full updated list.
func (s *Store) AddAddress(username, text string) ([]domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	acc.addresses = append(acc.addresses, domain.Address{
		ID:   uuid.New().String(),
		Text: text,
	})
	return append([]domain.Address(nil), acc.addresses...), nil
}

// DeleteAddress removes the address with the given id and returns the full
// updated list.
func (s *Store) DeleteAddress(username, id string) ([]domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	for i := range acc.addresses {
		if acc.addresses[i].ID == id {
			acc.addresses = append(acc.addresses[:i], acc.addresses[i+1:]...)
			return append([]domain.Address(nil), acc.addresses...), nil
		}
	}
	return nil, ErrUnknownAddress
}

// Checkout atomically validates and places the order for the user's cart:
// the address must belong to the user, the cart must be non-empty, and the
// wallet must cover the total. On success the balance is debited and the cart
// cleared.
func (s *Store) Checkout(username, addressID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return ErrUnknownUser
	}
	if len(acc.cart) == 0 {
		return ErrEmptyCart
	}

	found := false
	for i := range acc.addresses {
		if acc.addresses[i].ID == addressID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownAddress
	}

	var total float64
	for _, e := range acc.cart {
		for _, p := range s.catalog {
			if p.ID == e.ProductID {
				total += p.Cost * float64(e.Qty)
				break
			}
		}
	}

	if total > acc.balance {
		return ErrBalanceInsufficient
	}

	acc.balance -= total
	acc.cart = nil
	return nil
}

// productExists checks catalog membership. Caller must hold the mutex.
func (s *Store) productExists(productID string) bool {
	for i := range s.catalog {
		if s.catalog[i].ID == productID {
			return true
		}
	}
	return false
}

// seedCatalog returns the fixture product set.
func seedCatalog() []domain.Product {
	return []domain.Product{
		{ID: "v4sLtEcMpzabRyfx", Name: "UNIFACTOR Mens Running Shoes", Category: "Fashion", Cost: 50, Rating: 5, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "upLK9JbQ4rMhTwt4", Name: "BRAND Women's Travel Handbag", Category: "Fashion", Cost: 85, Rating: 4, ImageURL: "https://i.imgur.com/oA3mzNh.jpg"},
		{ID: "KCRwjF7lN97HnEaY", Name: "iPhone XR", Category: "Phones", Cost: 100, Rating: 4, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "BW0jAAeDJmlZCF8i", Name: "Basketball", Category: "Sports", Cost: 100, Rating: 5, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "PmInA797xJhMIPti", Name: "The Minimalist Wall Clock", Category: "Home & Living", Cost: 60, Rating: 3, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
		{ID: "TwMM4OAhmK0VQ93S", Name: "YONEX Smash Badminton Racquet", Category: "Sports", Cost: 100, Rating: 5, ImageURL: "https://i.imgur.com/lulqWzW.jpg"},
	}
}
