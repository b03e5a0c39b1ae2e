package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/StorefrontGo/internal/domain"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	"github.com/utafrali/StorefrontGo/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client is the typed REST client for the storefront backend. Every payload
// in and out has an explicit schema decoded at this boundary; expected HTTP
// failure statuses are converted into the pkg/errors taxonomy and never leak
// as raw transport errors or empty successes.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	logger     *slog.Logger
}

// New creates a backend client rooted at baseURL (no trailing slash).
func New(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Credentials is the identity returned by a successful login.
type Credentials struct {
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
}

type loginResponse struct {
	Success  bool    `json:"success"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
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

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ListProducts fetches the full product catalog.
func (c *Client) ListProducts(ctx context.Context) (products []domain.Product, err error) {
	defer c.observe("list_products", time.Now(), &err)
	err = c.getJSON(ctx, c.baseURL+"/products", "", &products)
	return products, err
}

// SearchProducts fetches products matching the query. An empty result is a
// valid success, not a failure.
func (c *Client) SearchProducts(ctx context.Context, query string) (products []domain.Product, err error) {
	defer c.observe("search_products", time.Now(), &err)
	u := c.baseURL + "/products/search?value=" + url.QueryEscape(query)
	err = c.getJSON(ctx, u, "", &products)
	return products, err
}

// GetCart fetches the raw cart for the session. An absent token is a
// precondition, not a failure: the caller gets an empty cart without any
// network call.
func (c *Client) GetCart(ctx context.Context, token string) (entries []domain.CartEntry, err error) {
	if token == "" {
		return []domain.CartEntry{}, nil
	}
	defer c.observe("get_cart", time.Now(), &err)
	err = c.getJSON(ctx, c.baseURL+"/cart", token, &entries)
	return entries, err
}

// UpsertCartItem sets the quantity for a product in the cart and returns the
// full updated cart. A quantity of zero removes the entry server-side. The
// backend reports an unknown product as a 400 on this route; it is surfaced
// as a not-found error for the product.
func (c *Client) UpsertCartItem(ctx context.Context, token, productID string, qty int) (entries []domain.CartEntry, err error) {
	defer c.observe("upsert_cart_item", time.Now(), &err)
	err = c.postJSON(ctx, c.baseURL+"/cart", token, cartWriteRequest{ProductID: productID, Qty: qty}, &entries)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Status == http.StatusBadRequest && strings.Contains(appErr.Message, "Product doesn't exist") {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, err
	}
	return entries, nil
}

// ListAddresses fetches the user's shipping addresses in server order.
func (c *Client) ListAddresses(ctx context.Context, token string) (addresses []domain.Address, err error) {
	defer c.observe("list_addresses", time.Now(), &err)
	err = c.getJSON(ctx, c.baseURL+"/user/addresses", token, &addresses)
	return addresses, err
}

// AddAddress adds a shipping address and returns the full updated list.
func (c *Client) AddAddress(ctx context.Context, token, text string) (addresses []domain.Address, err error) {
	defer c.observe("add_address", time.Now(), &err)
	err = c.postJSON(ctx, c.baseURL+"/user/addresses", token, addressWriteRequest{Address: text}, &addresses)
	return addresses, err
}

// DeleteAddress removes a shipping address and returns the full updated list.
func (c *Client) DeleteAddress(ctx context.Context, token, id string) (addresses []domain.Address, err error) {
	defer c.observe("delete_address", time.Now(), &err)

	req, err := c.newRequest(ctx, http.MethodDelete, c.baseURL+"/user/addresses/"+id, token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&addresses); err != nil {
		return nil, fmt.Errorf("decode address list: %w", err)
	}
	return addresses, nil
}

// Checkout submits the order for the selected address. The backend debits
// the wallet and clears the cart on success. A 400 on this route covers a
// wallet shortfall as well as empty-cart and unknown-address rejections;
// only the shortfall gets the dedicated sentinel.
func (c *Client) Checkout(ctx context.Context, token, addressID string) (err error) {
	defer c.observe("checkout", time.Now(), &err)

	resp, err := c.post(ctx, c.baseURL+"/cart/checkout", token, checkoutRequest{AddressID: addressID})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var body struct {
			Success bool `json:"success"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode checkout response: %w", err)
		}
		if !body.Success {
			return apperrors.Server(resp.StatusCode, "checkout was not accepted")
		}
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		err := httpclient.ParseResponseError(resp)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && strings.Contains(strings.ToLower(appErr.Message), "balance") {
			// Keep the server message for presentation.
			return apperrors.InsufficientBalance(appErr.Message)
		}
		return err
	default:
		return httpclient.ParseResponseError(resp)
	}
}

// Register creates a new account. Callers are expected to have validated the
// input locally first (domain.ValidateRegistration).
func (c *Client) Register(ctx context.Context, username, password string) (err error) {
	defer c.observe("register", time.Now(), &err)

	resp, err := c.post(ctx, c.baseURL+"/auth/register", "", authRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp)
	}
	return nil
}

// Login authenticates and returns the token, username, and wallet balance the
// session is seeded with.
func (c *Client) Login(ctx context.Context, username, password string) (creds Credentials, err error) {
	defer c.observe("login", time.Now(), &err)

	resp, err := c.post(ctx, c.baseURL+"/auth/login", "", authRequest{Username: username, Password: password})
	if err != nil {
		return Credentials{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Credentials{}, httpclient.ParseResponseError(resp)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Credentials{}, fmt.Errorf("decode login response: %w", err)
	}
	if !body.Success || body.Token == "" {
		return Credentials{}, apperrors.Unauthorized("login was not accepted")
	}
	return Credentials{Token: body.Token, Username: body.Username, Balance: body.Balance}, nil
}

// getJSON performs a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, url, token string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// postJSON performs a POST and decodes a 200 response into out.
func (c *Client) postJSON(ctx context.Context, url, token string, payload, out any) error {
	resp, err := c.post(ctx, url, token, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url, token string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, url, token, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, url, token string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, url, http.NoBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}

	req.Header.Set("X-Request-ID", uuid.New().String())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// transportError normalizes a transport-level failure. Context cancellation
// passes through untouched so callers can distinguish a superseded request
// from an unreachable backend.
func (c *Client) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.logger.WarnContext(ctx, "backend unreachable", slog.String("error", err.Error()))
	return apperrors.Network(err)
}

func (c *Client) observe(operation string, start time.Time, err *error) {
	apiRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	observe(operation, *err)
}
