package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims are the token claims the API cares about.
type Claims struct {
	Sub   string
	Email string
	Name  string
}

// Verifier verifies JWT bearer tokens against an OIDC issuer.
type Verifier struct {
	jwksManager *JWKSManager
	issuer      string
	audience    string

	mu      sync.Mutex
	jwksURL string
}

// NewVerifier creates a new JWT verifier. audience may be empty to skip
// the audience check.
func NewVerifier(jwksManager *JWKSManager, issuer, audience string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		issuer:      strings.TrimRight(issuer, "/"),
		audience:    audience,
	}
}

// Verify verifies a JWT token and extracts claims
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	jwksURL, err := v.resolveJWKSURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve JWKS URL: %w", err)
	}

	keys, err := v.jwksManager.GetJWKS(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	claims := &Claims{Sub: token.Subject()}
	if email, ok := token.Get("email"); ok {
		if s, ok := email.(string); ok {
			claims.Email = s
		}
	}
	if name, ok := token.Get("name"); ok {
		if s, ok := name.(string); ok {
			claims.Name = s
		}
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}

	return claims, nil
}

// resolveJWKSURL discovers the issuer's JWKS endpoint once and caches it.
func (v *Verifier) resolveJWKSURL(ctx context.Context) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.jwksURL != "" {
		return v.jwksURL, nil
	}

	discoveryURL := v.issuer + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return "", err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err == nil && resp.StatusCode == http.StatusOK {
		defer resp.Body.Close()
		var discovery struct {
			JWKSURI string `json:"jwks_uri"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&discovery); err == nil && discovery.JWKSURI != "" {
			v.jwksURL = discovery.JWKSURI
			return v.jwksURL, nil
		}
	} else if resp != nil {
		resp.Body.Close()
	}

	// Fall back to the conventional location when discovery is unavailable
	v.jwksURL = v.issuer + "/.well-known/jwks.json"
	return v.jwksURL, nil
}
