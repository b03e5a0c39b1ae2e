package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/StorefrontGo/internal/domain"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

var errAlreadyInCart = apperrors.InvalidInput(
	"Item already in cart. Use the cart sidebar to update quantity or remove item.")

// SearchResult is one delivered search outcome.
type SearchResult struct {
	Query    string
	Products []domain.Product
	Err      error
}

// productSearcher is the slice of the Gateway the Searcher needs.
type productSearcher interface {
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}

// Searcher debounces search input and guarantees that a newer query can never
// be overwritten by an older, slower response. Each query gets a generation
// number; scheduling a new query cancels the in-flight request of the previous
// one, and a response whose generation is no longer the latest is discarded
// even if the cancellation raced it.
type Searcher struct {
	gateway productSearcher
	logger  *slog.Logger
	quiet   time.Duration
	results chan SearchResult

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewSearcher creates a Searcher with the given quiet period.
func NewSearcher(gateway productSearcher, logger *slog.Logger, quiet time.Duration) *Searcher {
	return &Searcher{
		gateway: gateway,
		logger:  logger,
		quiet:   quiet,
		results: make(chan SearchResult, 1),
	}
}

// Results delivers outcomes for the latest query only. A pending undelivered
// result is replaced when a newer one arrives.
func (s *Searcher) Results() <-chan SearchResult {
	return s.results
}

// Query schedules a search for text after the quiet period, superseding any
// scheduled or in-flight search.
func (s *Searcher) Query(ctx context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	s.timer = time.AfterFunc(s.quiet, func() {
		s.fire(ctx, gen, text)
	})
}

// Close stops any scheduled or in-flight search.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) fire(ctx context.Context, gen uint64, text string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	products, err := s.gateway.SearchProducts(reqCtx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A newer query superseded this one while the response was in flight.
		s.logger.Debug("discarding stale search response", slog.String("query", text))
		return
	}
	s.cancel = nil
	s.deliver(SearchResult{Query: text, Products: products, Err: err})
}

// deliver replaces any pending result with the new one. Caller holds the mutex.
func (s *Searcher) deliver(res SearchResult) {
	for {
		select {
		case s.results <- res:
			return
		default:
			select {
			case <-s.results:
			default:
			}
		}
	}
}
