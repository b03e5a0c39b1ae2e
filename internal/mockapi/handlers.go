package mockapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/StorefrontGo/pkg/httputil"
	"github.com/utafrali/StorefrontGo/pkg/middleware"
)

// Handler serves the storefront REST contract from the in-memory store.
type Handler struct {
	store           *Store
	tokens          *TokenManager
	logger          *slog.Logger
	startingBalance float64
}

// NewHandler creates a Handler.
func NewHandler(store *Store, tokens *TokenManager, logger *slog.Logger, startingBalance float64) *Handler {
	return &Handler{
		store:           store,
		tokens:          tokens,
		logger:          logger,
		startingBalance: startingBalance,
	}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type cartWriteRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type addressWriteRequest struct {
	Address string `json:"address"`
}

type checkoutRequest struct {
	AddressID string `json:"addressId"`
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Catalog())
}

// SearchProducts handles GET /products/search?value=.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("value")
	httputil.WriteJSON(w, http.StatusOK, h.store.Search(query))
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "Request body is not valid JSON")
		return
	}

	if len(req.Username) < 6 {
		httputil.WriteFailure(w, http.StatusBadRequest, "Username must be at least 6 characters")
		return
	}
	if len(req.Password) < 6 {
		httputil.WriteFailure(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.store.CreateAccount(req.Username, hash, h.startingBalance); err != nil {
		if errors.Is(err, ErrUserExists) {
			httputil.WriteFailure(w, http.StatusBadRequest, "Username is already taken")
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", slog.String("username", req.Username))
	httputil.WriteSuccess(w, http.StatusCreated)
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "Request body is not valid JSON")
		return
	}

	hash, err := h.store.CredentialsFor(req.Username)
	if err != nil || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "Username / Password do not match")
		return
	}

	token, err := h.tokens.Generate(req.Username)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	balance, err := h.store.Balance(req.Username)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"token":    token,
		"username": req.Username,
		"balance":  balance,
	})
}

// GetCart handles GET /cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())
	cart, err := h.store.Cart(username)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}

// UpsertCart handles POST /cart.
func (h *Handler) UpsertCart(w http.ResponseWriter, r *http.Request) {
	var req cartWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "Request body is not valid JSON")
		return
	}

	username := middleware.UsernameFromContext(r.Context())
	cart, err := h.store.UpsertCart(username, req.ProductID, req.Qty)
	if err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			httputil.WriteFailure(w, http.StatusBadRequest, "Product doesn't exist")
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}

// ListAddresses handles GET /user/addresses.
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())
	addresses, err := h.store.Addresses(username)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, addresses)
}

// AddAddress handles POST /user/addresses.
func (h *Handler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req addressWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "Request body is not valid JSON")
		return
	}
	if len(req.Address) < 20 {
		httputil.WriteFailure(w, http.StatusBadRequest, "Address should be greater than 20 characters")
		return
	}

	username := middleware.UsernameFromContext(r.Context())
	addresses, err := h.store.AddAddress(username, req.Address)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, addresses)
}

// DeleteAddress handles DELETE /user/addresses/{id}.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())
	addresses, err := h.store.DeleteAddress(username, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrUnknownAddress) {
			httputil.WriteFailure(w, http.StatusBadRequest, "Address to delete was not found")
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, addresses)
}

// Checkout handles POST /cart/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "Request body is not valid JSON")
		return
	}

	username := middleware.UsernameFromContext(r.Context())
	if err := h.store.Checkout(username, req.AddressID); err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			httputil.WriteFailure(w, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, ErrUnknownAddress):
			httputil.WriteFailure(w, http.StatusBadRequest, "Address not found")
		case errors.Is(err, ErrBalanceInsufficient):
			httputil.WriteFailure(w, http.StatusBadRequest, "Wallet balance not sufficient to place order")
		default:
			httputil.WriteError(w, r, err, h.logger)
		}
		return
	}

	h.logger.InfoContext(r.Context(), "order placed", slog.String("username", username))
	httputil.WriteSuccess(w, http.StatusOK)
}
