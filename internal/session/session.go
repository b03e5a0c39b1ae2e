package session

import (
	"errors"
	"fmt"
	"strconv"
)

// Store keys. Balance is persisted as a stringified number.
const (
	keyToken    = "token"
	keyUsername = "username"
	keyBalance  = "balance"
)

// ErrNotLoggedIn is returned by operations that require an active session.
var ErrNotLoggedIn = errors.New("no active session")

// Session holds the current identity: auth token, username, and wallet
// balance, backed by a flat string store so it survives restarts. It is an
// explicit object passed to the components that need it; absence of a token is
// the sole signal gating token-requiring operations (an expired token is only
// discovered when a call returns Unauthorized).
type Session struct {
	store Store
}

// New wraps the given store in a Session.
func New(store Store) *Session {
	return &Session{store: store}
}

// Login records the identity returned by a successful authentication.
func (s *Session) Login(token, username string, balance float64) error {
	if token == "" {
		return errors.New("login requires a token")
	}
	if err := s.store.Set(keyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.store.Set(keyUsername, username); err != nil {
		return fmt.Errorf("persist username: %w", err)
	}
	if err := s.setBalance(balance); err != nil {
		return err
	}
	return nil
}

// Logout clears the whole identity. Collaborators holding catalog or cart
// caches must discard them when this is called.
func (s *Session) Logout() error {
	for _, key := range []string{keyToken, keyUsername, keyBalance} {
		if err := s.store.Delete(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// Token returns the auth token, or "" when logged out.
func (s *Session) Token() string {
	v, _ := s.store.Get(keyToken)
	return v
}

// Username returns the logged-in username, or "".
func (s *Session) Username() string {
	v, _ := s.store.Get(keyUsername)
	return v
}

// LoggedIn reports whether a token is present.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Balance returns the wallet balance. A missing or unparsable stored value
// reads as zero.
func (s *Session) Balance() float64 {
	v, ok := s.store.Get(keyBalance)
	if !ok {
		return 0
	}
	balance, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return balance
}

// Debit decrements the wallet balance locally after a successful checkout.
// This is client-trusted optimistic state: the backend debits authoritatively
// on its side and the two resynchronize on the next login.
func (s *Session) Debit(amount float64) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	return s.setBalance(s.Balance() - amount)
}

func (s *Session) setBalance(balance float64) error {
	if err := s.store.Set(keyBalance, strconv.FormatFloat(balance, 'f', -1, 64)); err != nil {
		return fmt.Errorf("persist balance: %w", err)
	}
	return nil
}
