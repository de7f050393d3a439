package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwksCacheTTL = time.Hour

var ErrInvalidToken = errors.New("invalid token")

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Alg string `json:"alg"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type cachedKey struct {
	key       *ecdsa.PublicKey
	method    jwt.SigningMethod
	fetchedAt time.Time
}

// JWKSCache verifies provider-issued JWTs against the provider's published
// JWKS endpoint, caching keys by kid.
type JWKSCache struct {
	jwksURL string
	anonKey string
	client  *http.Client
	logger  *slog.Logger

	mu   sync.RWMutex
	keys map[string]cachedKey
}

func NewJWKSCache(jwksURL, anonKey string, logger *slog.Logger) *JWKSCache {
	return &JWKSCache{
		jwksURL: jwksURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		keys:    make(map[string]cachedKey),
	}
}

// ValidateToken checks the signature and expiry of token and returns its
// claims.
func (j *JWKSCache) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no kid")
		}
		entry, err := j.keyFor(ctx, kid)
		if err != nil {
			return nil, err
		}
		if t.Method.Alg() != entry.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return entry.key, nil
	}, jwt.WithValidMethods([]string{"ES256", "ES384"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (j *JWKSCache) keyFor(ctx context.Context, kid string) (cachedKey, error) {
	j.mu.RLock()
	entry, ok := j.keys[kid]
	j.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < jwksCacheTTL {
		return entry, nil
	}

	doc, err := j.fetchJWKS(ctx)
	if err != nil {
		// A stale key beats no key when the endpoint is flaking.
		if ok {
			j.logger.Warn("jwks refresh failed, using cached key", "kid", kid, "error", err)
			return entry, nil
		}
		return cachedKey{}, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, k := range doc.Keys {
		parsed, err := parseECKey(k)
		if err != nil {
			j.logger.Warn("skipping unparseable jwk", "kid", k.Kid, "error", err)
			continue
		}
		j.keys[k.Kid] = parsed
	}
	entry, ok = j.keys[kid]
	if !ok {
		return cachedKey{}, fmt.Errorf("key with kid=%s not found in jwks", kid)
	}
	return entry, nil
}

func (j *JWKSCache) fetchJWKS(ctx context.Context) (*jwksDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.jwksURL, nil)
	if err != nil {
		return nil, err
	}
	if j.anonKey != "" {
		req.Header.Set("apikey", j.anonKey)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch jwks: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read jwks body: %w", err)
	}

	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse jwks: %w", err)
	}
	return &doc, nil
}

func parseECKey(k jwk) (cachedKey, error) {
	if k.Kty != "EC" {
		return cachedKey{}, fmt.Errorf("unsupported kty %q", k.Kty)
	}

	var curve elliptic.Curve
	var method jwt.SigningMethod
	switch k.Alg {
	case "", "ES256":
		curve, method = elliptic.P256(), jwt.SigningMethodES256
	case "ES384":
		curve, method = elliptic.P384(), jwt.SigningMethodES384
	default:
		return cachedKey{}, fmt.Errorf("unsupported alg %q", k.Alg)
	}

	xb, err := base64.RawURLEncoding.DecodeString(k.X)
	if err != nil {
		return cachedKey{}, fmt.Errorf("bad x coordinate: %w", err)
	}
	yb, err := base64.RawURLEncoding.DecodeString(k.Y)
	if err != nil {
		return cachedKey{}, fmt.Errorf("bad y coordinate: %w", err)
	}

	pub := &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xb),
		Y:     new(big.Int).SetBytes(yb),
	}
	if !curve.IsOnCurve(pub.X, pub.Y) {
		return cachedKey{}, errors.New("point is not on curve")
	}

	return cachedKey{key: pub, method: method, fetchedAt: time.Now()}, nil
}
