// Package auth resolves the NERIS permissions of an embedded dashboard user
// and keeps them in the shared cache, keyed by a per-session ID. Only the
// session ID travels to the client, inside a signed cookie.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"nerisdash/pkg/cache"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/neris"
	"nerisdash/pkg/serrors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	keyPrefix = "neris:auth"

	// DefaultTTL is how long resolved permissions stay cached.
	DefaultTTL = time.Hour
	// LocalContext is the only dashboard context that honours mock IDs.
	LocalContext = "local"
)

// Processor reduces a permissions response to the value cached for the
// session, e.g. the list of readable NERIS IDs.
type Processor func(perms neris.UserPermissions) any

// Options configures a Manager.
type Options struct {
	// CacheKey names the cached value; cache sourced filters read it back.
	CacheKey  string
	Processor Processor
	TTL       time.Duration
	// Context is the dashboard context (local, dev, test, staging, prod).
	Context string
	// SecretKey verifies HS256 embed tokens.
	SecretKey string
	// MockIDs is a JSON value cached instead of calling the API in the
	// local context.
	MockIDs string
}

// Manager resolves and caches permissions. It is safe for concurrent use.
type Manager struct {
	cache  cache.Cache
	client neris.Client
	opts   Options
}

// New builds a Manager.
func New(c cache.Cache, client neris.Client, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Processor == nil {
		opts.Processor = IncidentReadNerisIDs
	}

	return &Manager{cache: c, client: client, opts: opts}
}

// Key returns the cache key of a session value.
func Key(sid, cacheKey string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, sid, cacheKey)
}

// Result of PermissionsAndCache. SessionID differs from the caller's session
// ID when a new value was stored, and the session cookie must be reissued.
type Result struct {
	Value     any
	SessionID string
	Cached    bool
}

// PermissionsAndCache returns the cached value of session sid when present.
// Otherwise it resolves the permissions (mock IDs in the local context, or the
// embed token of r and the NERIS API) and stores them under a fresh session ID.
func (m *Manager) PermissionsAndCache(ctx context.Context, r *http.Request, sid string) (Result, error) {
	if sid != "" {
		v, err := m.Value(ctx, sid, m.opts.CacheKey)
		switch {
		case err == nil:
			return Result{Value: v, SessionID: sid, Cached: true}, nil
		case !errors.Is(err, cache.ErrMiss):
			logger.Warn(ctx, "could not read cached permissions", zap.Error(err))
		}
	}

	if m.opts.MockIDs != "" && m.opts.Context == LocalContext {
		var v any
		if err := json.Unmarshal([]byte(m.opts.MockIDs), &v); err != nil {
			return Result{}, fmt.Errorf("could not decode mock ids: %w", err)
		}
		logger.Debug(ctx, "using mock permissions")

		return m.store(ctx, v)
	}

	userSub, accessToken, err := m.parseToken(r)
	if err != nil {
		return Result{}, serrors.Wrap(serrors.ErrUnauthorized, err, "could not parse jwt")
	}

	perms, err := m.client.UserPermissions(ctx, userSub, accessToken)
	if err != nil {
		return Result{}, fmt.Errorf("could not fetch permissions: %w", err)
	}

	return m.store(ctx, m.opts.Processor(perms))
}

// Value reads a cached session value. It returns cache.ErrMiss when the
// session has no such value.
func (m *Manager) Value(ctx context.Context, sid, key string) (any, error) {
	return Value(ctx, m.cache, sid, key)
}

// Value reads a cached session value from c.
func Value(ctx context.Context, c cache.Cache, sid, key string) (any, error) {
	if sid == "" {
		return nil, cache.ErrMiss
	}

	raw, err := c.Get(ctx, Key(sid, key))
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("could not decode cached value: %w", err)
	}

	return v, nil
}

// Lookup adapts the session values of sid to a filters.CacheLookup. Read
// errors other than a miss are logged and treated as absent.
func Lookup(ctx context.Context, c cache.Cache, sid string) filters.CacheLookup {
	return func(key string) (any, bool) {
		v, err := Value(ctx, c, sid, key)
		if err != nil {
			if !errors.Is(err, cache.ErrMiss) {
				logger.Warn(ctx, "could not read session value", zap.String("key", key), zap.Error(err))
			}

			return nil, false
		}

		return v, true
	}
}

func (m *Manager) store(ctx context.Context, v any) (Result, error) {
	sid, err := NewSessionID()
	if err != nil {
		return Result{}, err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return Result{}, fmt.Errorf("could not encode permissions: %w", err)
	}
	if err := m.cache.Set(ctx, Key(sid, m.opts.CacheKey), b, m.opts.TTL); err != nil {
		return Result{}, fmt.Errorf("could not cache permissions: %w", err)
	}

	return Result{Value: v, SessionID: sid}, nil
}

// Token returns the embed token of r: the Authorization bearer token, or the
// token query parameter.
func Token(r *http.Request) string {
	if r == nil {
		return ""
	}
	if t, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return t
	}

	return r.URL.Query().Get("token")
}

func (m *Manager) parseToken(r *http.Request) (string, string, error) {
	raw := Token(r)
	if raw == "" {
		return "", "", errors.New("no token in request")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(m.opts.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", fmt.Errorf("invalid token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	accessToken, _ := claims["access_token"].(string)
	if sub == "" {
		return "", "", errors.New("token has no subject")
	}

	return sub, accessToken, nil
}
