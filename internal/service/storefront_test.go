package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontGo/internal/api"
	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/session"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

// --- Mock Gateway ---

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockGateway) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockGateway) GetCart(ctx context.Context, token string) ([]domain.CartEntry, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartEntry), args.Error(1)
}

func (m *mockGateway) UpsertCartItem(ctx context.Context, token, productID string, qty int) ([]domain.CartEntry, error) {
	args := m.Called(ctx, token, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartEntry), args.Error(1)
}

func (m *mockGateway) ListAddresses(ctx context.Context, token string) ([]domain.Address, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockGateway) AddAddress(ctx context.Context, token, text string) ([]domain.Address, error) {
	args := m.Called(ctx, token, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockGateway) DeleteAddress(ctx context.Context, token, id string) ([]domain.Address, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockGateway) Checkout(ctx context.Context, token, addressID string) error {
	args := m.Called(ctx, token, addressID)
	return args.Error(0)
}

func (m *mockGateway) Register(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *mockGateway) Login(ctx context.Context, username, password string) (api.Credentials, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(api.Credentials), args.Error(1)
}

func newTestStorefront(t *testing.T) (*Storefront, *mockGateway, *session.Session) {
	t.Helper()
	gw := new(mockGateway)
	sess := session.New(session.NewMemoryStore())
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(gw, sess, logger), gw, sess
}

func loggedIn(t *testing.T, sess *session.Session, balance float64) {
	t.Helper()
	require.NoError(t, sess.Login("tok-123", "crio-user", balance))
}

// ============================================================================
// CartView Tests
// ============================================================================

func TestCartView_LoggedOutIsEmpty(t *testing.T) {
	sf, gw, _ := newTestStorefront(t)

	items, err := sf.CartView(context.Background())

	require.NoError(t, err)
	assert.Empty(t, items)
	gw.AssertNotCalled(t, "ListProducts")
	gw.AssertNotCalled(t, "GetCart")
}

func TestCartView_ReconcilesCartWithCatalog(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	gw.On("ListProducts", mock.Anything).Return([]domain.Product{
		{ID: "p1", Name: "iPhone XR", Cost: 100},
		{ID: "p2", Name: "Basketball", Cost: 52},
	}, nil)
	gw.On("GetCart", mock.Anything, "tok-123").Return([]domain.CartEntry{
		{ProductID: "p2", Qty: 2},
	}, nil)

	items, err := sf.CartView(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Basketball", items[0].Name)
	assert.Equal(t, 2, items[0].Qty)
	gw.AssertExpectations(t)
}

func TestCartView_DropsEntriesMissingFromCatalog(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	gw.On("ListProducts", mock.Anything).Return([]domain.Product{
		{ID: "p1", Name: "iPhone XR", Cost: 100},
	}, nil)
	gw.On("GetCart", mock.Anything, "tok-123").Return([]domain.CartEntry{
		{ProductID: "p1", Qty: 1},
		{ProductID: "discontinued", Qty: 4},
	}, nil)

	items, err := sf.CartView(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
}

func TestCartView_CatalogFetchFails(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	gw.On("ListProducts", mock.Anything).Return(nil, apperrors.Network(errors.New("refused")))

	_, err := sf.CartView(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNetwork)
}

// ============================================================================
// AddToCart / UpdateQuantity Tests
// ============================================================================

func TestAddToCart_NewProduct(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	gw.On("GetCart", mock.Anything, "tok-123").Return([]domain.CartEntry{}, nil)
	gw.On("UpsertCartItem", mock.Anything, "tok-123", "p1", 1).Return([]domain.CartEntry{
		{ProductID: "p1", Qty: 1},
	}, nil)

	entries, err := sf.AddToCart(context.Background(), "p1")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	gw.AssertExpectations(t)
}

func TestAddToCart_DuplicateRejectedLocally(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	gw.On("GetCart", mock.Anything, "tok-123").Return([]domain.CartEntry{
		{ProductID: "p1", Qty: 2},
	}, nil)

	_, err := sf.AddToCart(context.Background(), "p1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Item already in cart. Use the cart sidebar to update quantity or remove item.", appErr.Message)
	gw.AssertNotCalled(t, "UpsertCartItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddToCart_RequiresLogin(t *testing.T) {
	sf, _, _ := newTestStorefront(t)

	_, err := sf.AddToCart(context.Background(), "p1")

	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestUpdateQuantity_PassesThrough(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	gw.On("UpsertCartItem", mock.Anything, "tok-123", "p1", 0).Return([]domain.CartEntry{}, nil)

	entries, err := sf.UpdateQuantity(context.Background(), "p1", 0)

	require.NoError(t, err)
	assert.Empty(t, entries)
	gw.AssertExpectations(t)
}

func TestUpdateQuantity_RequiresLogin(t *testing.T) {
	sf, _, _ := newTestStorefront(t)

	_, err := sf.UpdateQuantity(context.Background(), "p1", 2)

	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

// ============================================================================
// Address Tests
// ============================================================================

func TestAddAddress_RefreshesBook(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	gw.On("AddAddress", mock.Anything, "tok-123", "somewhere long enough to pass").Return([]domain.Address{
		{ID: "a1", Text: "somewhere long enough to pass"},
	}, nil)

	book := domain.AddressBook{}
	require.NoError(t, sf.AddAddress(context.Background(), &book, "somewhere long enough to pass"))

	assert.Len(t, book.Entries, 1)
}

func TestDeleteAddress_ClearsSelectionOfDeletedEntry(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	gw.On("DeleteAddress", mock.Anything, "tok-123", "a2").Return([]domain.Address{
		{ID: "a1", Text: "first"},
	}, nil)

	book := domain.AddressBook{
		Entries:    []domain.Address{{ID: "a1"}, {ID: "a2"}},
		SelectedID: "a2",
	}
	require.NoError(t, sf.DeleteAddress(context.Background(), &book, "a2"))

	assert.Len(t, book.Entries, 1)
	assert.Empty(t, book.SelectedID)
}

// ============================================================================
// PerformCheckout Tests
// ============================================================================

func checkoutFixtures() ([]domain.CartLineItem, domain.AddressBook) {
	items := []domain.CartLineItem{
		{ProductID: "p1", Cost: 100, Qty: 2},
		{ProductID: "p2", Cost: 52, Qty: 1},
	}
	book := domain.AddressBook{
		Entries:    []domain.Address{{ID: "a1", Text: "somewhere long enough"}},
		SelectedID: "a1",
	}
	return items, book
}

func TestPerformCheckout_RequiresLogin(t *testing.T) {
	sf, _, _ := newTestStorefront(t)
	items, book := checkoutFixtures()

	_, err := sf.PerformCheckout(context.Background(), items, book)

	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestPerformCheckout_PlacesOrderAndDebitsOnce(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)
	items, book := checkoutFixtures()

	gw.On("Checkout", mock.Anything, "tok-123", "a1").Return(nil).Once()

	outcome, err := sf.PerformCheckout(context.Background(), items, book)

	require.NoError(t, err)
	assert.True(t, outcome.Placed)
	assert.InDelta(t, 252, outcome.Total, 1e-9)
	assert.InDelta(t, 248, sess.Balance(), 1e-9)
	gw.AssertExpectations(t)
}

func TestPerformCheckout_InsufficientBalance(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 100)
	items, book := checkoutFixtures()

	outcome, err := sf.PerformCheckout(context.Background(), items, book)

	require.NoError(t, err)
	assert.False(t, outcome.Placed)
	assert.Equal(t, domain.RejectInsufficientBalance, outcome.Reason)
	assert.InDelta(t, 100, sess.Balance(), 1e-9)
	gw.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestPerformCheckout_NoAddressSelected(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)
	items, book := checkoutFixtures()
	book.SelectedID = ""

	outcome, err := sf.PerformCheckout(context.Background(), items, book)

	require.NoError(t, err)
	assert.Equal(t, domain.RejectNoAddressSelected, outcome.Reason)
	gw.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestPerformCheckout_NoAddresses(t *testing.T) {
	sf, _, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)
	items, _ := checkoutFixtures()

	outcome, err := sf.PerformCheckout(context.Background(), items, domain.AddressBook{})

	require.NoError(t, err)
	assert.Equal(t, domain.RejectNoAddresses, outcome.Reason)
}

func TestPerformCheckout_BackendRejectionLeavesBalance(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)
	items, book := checkoutFixtures()

	gw.On("Checkout", mock.Anything, "tok-123", "a1").
		Return(apperrors.InsufficientBalance("Wallet balance not sufficient to place order"))

	_, err := sf.PerformCheckout(context.Background(), items, book)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
	assert.InDelta(t, 500, sess.Balance(), 1e-9)
}

// ============================================================================
// Register / Login / Logout Tests
// ============================================================================

func TestRegister_InvalidInputNeverReachesBackend(t *testing.T) {
	sf, gw, _ := newTestStorefront(t)

	err := sf.Register(context.Background(), domain.RegisterInput{Username: "abc"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	gw.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_ValidInput(t *testing.T) {
	sf, gw, _ := newTestStorefront(t)

	gw.On("Register", mock.Anything, "crio-user", "learnbydoing").Return(nil)

	err := sf.Register(context.Background(), domain.RegisterInput{
		Username:        "crio-user",
		Password:        "learnbydoing",
		ConfirmPassword: "learnbydoing",
	})

	require.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestLogin_PopulatesSession(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)

	gw.On("Login", mock.Anything, "crio-user", "learnbydoing").Return(api.Credentials{
		Token:    "tok-123",
		Username: "crio-user",
		Balance:  500,
	}, nil)

	require.NoError(t, sf.Login(context.Background(), "crio-user", "learnbydoing"))

	assert.True(t, sess.LoggedIn())
	assert.Equal(t, "crio-user", sess.Username())
	assert.InDelta(t, 500, sess.Balance(), 1e-9)
}

func TestLogin_FailureLeavesSessionEmpty(t *testing.T) {
	sf, gw, sess := newTestStorefront(t)

	gw.On("Login", mock.Anything, "crio-user", "wrong").
		Return(api.Credentials{}, apperrors.Server(400, "Username / Password do not match"))

	err := sf.Login(context.Background(), "crio-user", "wrong")

	require.Error(t, err)
	assert.False(t, sess.LoggedIn())
}

func TestLogout_ClearsSession(t *testing.T) {
	sf, _, sess := newTestStorefront(t)
	loggedIn(t, sess, 500)

	require.NoError(t, sf.Logout())

	assert.False(t, sess.LoggedIn())
}
