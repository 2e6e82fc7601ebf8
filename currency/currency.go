// Package currency fetches and caches the USD->INR exchange rate and
// converts and formats amounts between the two display currencies.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"freelance-checkout-system/models"
)

// DefaultRate is used until a fetch succeeds and whenever no better rate is
// known. Rate fetches fail soft: a failure logs and keeps the previous rate.
const DefaultRate = 83.0

type rateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Service holds the process-wide rate snapshot.
type Service struct {
	mu        sync.RWMutex
	rate      float64
	fetchedAt time.Time

	ttl        time.Duration
	rateURL    string
	httpClient *http.Client
	cache      RateCache
	breaker    *gobreaker.CircuitBreaker[float64]
}

// New creates a currency service. cache may be nil; rateURL must serve a
// JSON body with a "rates" object containing an "INR" entry.
func New(rateURL string, cache RateCache) *Service {
	return &Service{
		rate:    DefaultRate,
		ttl:     30 * time.Minute,
		rateURL: rateURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: cache,
		breaker: gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
			Name:        "exchange-rate-fetch",
			MaxRequests: 1,
			Timeout:     1 * time.Minute,
		}),
	}
}

// Rate returns the current USD->INR rate. A stale rate triggers a refresh,
// but a failed refresh never blocks or errors the caller.
func (s *Service) Rate(ctx context.Context) float64 {
	s.mu.RLock()
	rate, fetchedAt := s.rate, s.fetchedAt
	s.mu.RUnlock()

	if time.Since(fetchedAt) < s.ttl {
		return rate
	}

	if err := s.Refresh(ctx); err != nil {
		log.Printf("exchange rate refresh failed, keeping %.4f: %v", rate, err)
		return rate
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// Refresh fetches a fresh rate, preferring the shared cache over the remote
// provider. The remote call goes through a circuit breaker; an open breaker
// counts as a failed fetch.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache != nil {
		if rate, err := s.cache.Get(ctx); err == nil {
			s.store(rate)
			return nil
		}
	}

	rate, err := s.breaker.Execute(func() (float64, error) {
		return s.fetchRemote(ctx)
	})
	if err != nil {
		return err
	}

	s.store(rate)

	if s.cache != nil {
		if err := s.cache.Set(ctx, rate); err != nil {
			log.Printf("failed to share exchange rate via cache: %v", err)
		}
	}
	return nil
}

func (s *Service) fetchRemote(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.rateURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create rate request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call rate provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("rate provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode rate response: %w", err)
	}

	rate, ok := parsed.Rates["INR"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate response missing INR rate")
	}
	return rate, nil
}

func (s *Service) store(rate float64) {
	s.mu.Lock()
	s.rate = rate
	s.fetchedAt = time.Now()
	s.mu.Unlock()
}

// Snapshot returns the current rate and when it was fetched.
func (s *Service) Snapshot() models.ExchangeRate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ExchangeRate{Rate: s.rate, FetchedAt: s.fetchedAt}
}

// Convert converts amount between currencies using the given USD->INR rate.
// Identity when from == to.
func Convert(amount float64, from, to models.Currency, rate float64) float64 {
	if from == to {
		return amount
	}
	if from == models.CurrencyINR && to == models.CurrencyUSD {
		return amount / rate
	}
	return amount * rate
}

// Round2 rounds to two decimals, the precision display prices are held at.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Format renders an amount in the locale pattern of the currency:
// USD as "$12.34", INR as "₹12" (rounded to a whole rupee).
func Format(amount float64, c models.Currency) string {
	if c == models.CurrencyUSD {
		return fmt.Sprintf("$%.2f", amount)
	}
	return fmt.Sprintf("₹%d", int64(math.Round(amount)))
}

// Convert is also available on the service using its current rate.
func (s *Service) Convert(ctx context.Context, amount float64, from, to models.Currency) float64 {
	return Convert(amount, from, to, s.Rate(ctx))
}
