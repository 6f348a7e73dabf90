package oidc

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

const jwksTTL = 1 * time.Hour

type cachedSet struct {
	keys    jwk.Set
	expires time.Time
}

// JWKSManager fetches and caches JWKS documents per URL. Entries are refreshed
// lazily once they pass the TTL; a stale entry is never served.
type JWKSManager struct {
	mu     sync.Mutex
	cache  map[string]cachedSet
	client *http.Client
}

func NewJWKSManager() *JWKSManager {
	return &JWKSManager{
		cache:  make(map[string]cachedSet),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetJWKS returns the key set at jwksURL, fetching if the cached copy is
// missing or expired.
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	m.mu.Lock()
	entry, ok := m.cache[jwksURL]
	m.mu.Unlock()

	if ok && time.Now().Before(entry.expires) {
		return entry.keys, nil
	}

	keys, err := jwk.Fetch(ctx, jwksURL, jwk.WithHTTPClient(m.client))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	m.mu.Lock()
	m.cache[jwksURL] = cachedSet{keys: keys, expires: time.Now().Add(jwksTTL)}
	m.mu.Unlock()

	return keys, nil
}
