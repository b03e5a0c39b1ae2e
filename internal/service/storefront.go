package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/StorefrontGo/internal/api"
	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/session"
)

// Gateway is the backend surface the storefront orchestrates over. api.Client
// implements it; tests substitute a mock.
type Gateway interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	GetCart(ctx context.Context, token string) ([]domain.CartEntry, error)
	UpsertCartItem(ctx context.Context, token, productID string, qty int) ([]domain.CartEntry, error)
	ListAddresses(ctx context.Context, token string) ([]domain.Address, error)
	AddAddress(ctx context.Context, token, text string) ([]domain.Address, error)
	DeleteAddress(ctx context.Context, token, id string) ([]domain.Address, error)
	Checkout(ctx context.Context, token, addressID string) error
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (api.Credentials, error)
}

// Storefront implements the shopper-facing flows: catalog and cart views,
// address management, registration, login, and checkout. It holds no catalog
// or cart state between calls; all data is fetched per call and handed to the
// presentation collaborator.
type Storefront struct {
	gateway Gateway
	session *session.Session
	logger  *slog.Logger
}

// New creates a Storefront over the given backend gateway and session.
func New(gateway Gateway, sess *session.Session, logger *slog.Logger) *Storefront {
	return &Storefront{
		gateway: gateway,
		session: sess,
		logger:  logger,
	}
}

// Session exposes the identity state for the presentation layer.
func (s *Storefront) Session() *session.Session {
	return s.session
}

// Catalog fetches the full product catalog.
func (s *Storefront) Catalog(ctx context.Context) ([]domain.Product, error) {
	return s.gateway.ListProducts(ctx)
}

// CartView fetches the raw cart and the catalog and reconciles them into
// priced line items. Logged out, the view is empty. Cart entries whose product
// is missing from the catalog snapshot are dropped from the view; each drop is
// logged so a catalog/cart desync stays visible to operators.
func (s *Storefront) CartView(ctx context.Context) ([]domain.CartLineItem, error) {
	token := s.session.Token()
	if token == "" {
		return []domain.CartLineItem{}, nil
	}

	catalog, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	entries, err := s.gateway.GetCart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}

	items := domain.Reconcile(entries, catalog)
	if len(items) < len(entries) {
		matched := make(map[string]struct{}, len(items))
		for _, item := range items {
			matched[item.ProductID] = struct{}{}
		}
		for _, e := range entries {
			if _, ok := matched[e.ProductID]; !ok {
				s.logger.WarnContext(ctx, "cart entry has no catalog match, dropped from view",
					slog.String("product_id", e.ProductID),
				)
			}
		}
	}
	return items, nil
}

// AddToCart adds a product not yet in the cart with quantity 1 and returns the
// updated raw cart. Adding a product already present is rejected locally so
// the caller can redirect into the update-quantity flow instead of silently
// creating a second entry.
func (s *Storefront) AddToCart(ctx context.Context, productID string) ([]domain.CartEntry, error) {
	if !s.session.LoggedIn() {
		return nil, session.ErrNotLoggedIn
	}
	entries, err := s.gateway.GetCart(ctx, s.session.Token())
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	if domain.IsInCart(entries, productID) {
		return nil, errAlreadyInCart
	}
	return s.gateway.UpsertCartItem(ctx, s.session.Token(), productID, 1)
}

// UpdateQuantity sets the quantity of a cart entry. Zero removes it.
func (s *Storefront) UpdateQuantity(ctx context.Context, productID string, qty int) ([]domain.CartEntry, error) {
	if !s.session.LoggedIn() {
		return nil, session.ErrNotLoggedIn
	}
	return s.gateway.UpsertCartItem(ctx, s.session.Token(), productID, qty)
}

// Addresses fetches the user's address book with no selection.
func (s *Storefront) Addresses(ctx context.Context) (domain.AddressBook, error) {
	entries, err := s.gateway.ListAddresses(ctx, s.session.Token())
	if err != nil {
		return domain.AddressBook{}, err
	}
	return domain.AddressBook{Entries: entries}, nil
}

// AddAddress adds a shipping address and refreshes the book, keeping the
// current selection when it still exists.
func (s *Storefront) AddAddress(ctx context.Context, book *domain.AddressBook, text string) error {
	entries, err := s.gateway.AddAddress(ctx, s.session.Token(), text)
	if err != nil {
		return err
	}
	book.Replace(entries)
	return nil
}

// DeleteAddress removes a shipping address and refreshes the book. Deleting
// the selected address clears the selection.
func (s *Storefront) DeleteAddress(ctx context.Context, book *domain.AddressBook, id string) error {
	entries, err := s.gateway.DeleteAddress(ctx, s.session.Token(), id)
	if err != nil {
		return err
	}
	book.Replace(entries)
	return nil
}

// CheckoutOutcome reports how a checkout attempt ended.
type CheckoutOutcome struct {
	// Placed is true when the backend accepted the order.
	Placed bool
	// Reason is set when validation rejected the attempt before submission.
	Reason domain.RejectionReason
	// Total is the order value the validation and the wallet debit used.
	Total float64
}

// PerformCheckout validates and submits a checkout for the given line items
// and address selection. Validation rejections end the attempt with a reason
// and no state change. On backend success the wallet balance is debited
// locally by the order total.
//
// Callers must not have two checkout submissions in flight for the same
// session: disable re-submission until the call returns. The core performs no
// mutual exclusion of its own, and nothing is retried automatically.
func (s *Storefront) PerformCheckout(ctx context.Context, items []domain.CartLineItem, book domain.AddressBook) (CheckoutOutcome, error) {
	if !s.session.LoggedIn() {
		return CheckoutOutcome{}, session.ErrNotLoggedIn
	}

	total := domain.TotalValue(items)
	verdict := domain.ValidateCheckout(total, book, s.session.Balance())
	if !verdict.Accepted {
		s.logger.InfoContext(ctx, "checkout rejected",
			slog.String("reason", string(verdict.Reason)),
			slog.Float64("total", total),
		)
		return CheckoutOutcome{Reason: verdict.Reason, Total: total}, nil
	}

	if err := s.gateway.Checkout(ctx, s.session.Token(), book.SelectedID); err != nil {
		return CheckoutOutcome{Total: total}, fmt.Errorf("submit checkout: %w", err)
	}

	if err := s.session.Debit(total); err != nil {
		// The order is already placed; a failed local debit only desyncs the
		// displayed balance until the next login.
		s.logger.ErrorContext(ctx, "order placed but balance debit failed",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.Float64("total", total),
		slog.Int("items", domain.TotalQuantity(items)),
		slog.String("address_id", book.SelectedID),
	)
	return CheckoutOutcome{Placed: true, Total: total}, nil
}

// Register validates the form locally and creates the account. Invalid input
// never reaches the backend.
func (s *Storefront) Register(ctx context.Context, in domain.RegisterInput) error {
	if err := domain.ValidateRegistration(in); err != nil {
		return err
	}
	return s.gateway.Register(ctx, in.Username, in.Password)
}

// Login authenticates and populates the session with the returned token,
// username, and wallet balance.
func (s *Storefront) Login(ctx context.Context, username, password string) error {
	creds, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.session.Login(creds.Token, creds.Username, creds.Balance); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.logger.InfoContext(ctx, "logged in", slog.String("username", creds.Username))
	return nil
}

// Logout clears the session. Collaborators must discard any catalog or cart
// data they hold for the previous identity.
func (s *Storefront) Logout() error {
	return s.session.Logout()
}
