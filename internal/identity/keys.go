package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// MinRefetchInterval bounds how often a cache miss may refetch the provider's
// certificates.
const MinRefetchInterval = time.Minute

// CertKeySet fetches the provider's x509 certificates (a JSON object of
// kid -> PEM) and caches the parsed keys. A miss on an unknown kid refetches
// at most once per MinRefetchInterval, and concurrent misses share one fetch.
type CertKeySet struct {
	url     string
	http    *http.Client
	log     *zap.Logger
	refetch *rate.Limiter
	flight  singleflight.Group

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	lastErr error
}

func NewCertKeySet(url string, log *zap.Logger) *CertKeySet {
	return &CertKeySet{
		url:     url,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
		refetch: rate.NewLimiter(rate.Every(MinRefetchInterval), 1),
		keys:    map[string]*rsa.PublicKey{},
	}
}

func (s *CertKeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := s.cached(kid); ok {
		return key, nil
	}

	_, err, _ := s.flight.Do("refetch", func() (any, error) {
		if _, ok := s.cached(kid); ok {
			return nil, nil
		}
		if !s.refetch.Allow() {
			// Throttled: report the provider as down only while the last
			// fetch failed.
			s.mu.RLock()
			defer s.mu.RUnlock()
			return nil, s.lastErr
		}
		return nil, s.Refresh(ctx)
	})
	if err != nil {
		return nil, err
	}

	if key, ok := s.cached(kid); ok {
		return key, nil
	}
	return nil, ErrUnknownKeyID
}

func (s *CertKeySet) cached(kid string) (*rsa.PublicKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[kid]
	return key, ok
}

// Refresh replaces the cached key set with the provider's current one.
// Failures wrap ErrKeysUnavailable and keep the previous keys.
func (s *CertKeySet) Refresh(ctx context.Context) error {
	certs, err := s.fetch(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrKeysUnavailable, err)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			s.log.Warn("skipping unparsable identity cert", zap.String("kid", kid), zap.Error(err))
			continue
		}
		keys[kid] = key
	}

	s.mu.Lock()
	s.keys = keys
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

func (s *CertKeySet) fetch(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch certs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch certs: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return nil, fmt.Errorf("decode certs: %w", err)
	}
	return certs, nil
}

// StartRefresh schedules Refresh on spec (e.g. "@every 1h"). The caller stops
// the returned cron on shutdown.
func (s *CertKeySet) StartRefresh(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.log.Warn("identity key refresh failed", zap.Error(err))
			return
		}
		s.log.Debug("identity keys refreshed")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// StaticKeySet serves a fixed set of keys.
type StaticKeySet map[string]*rsa.PublicKey

func (s StaticKeySet) Key(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := s[kid]; ok {
		return key, nil
	}
	return nil, ErrUnknownKeyID
}
