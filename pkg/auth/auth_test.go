package auth_test

import (
	"context"
	"errors"
	"nerisdash/pkg/auth"
	"nerisdash/pkg/cache"
	"nerisdash/pkg/cache/memcache"
	mockcache "nerisdash/pkg/cache/mock"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/neris"
	mockneris "nerisdash/pkg/neris/mock"
	"nerisdash/pkg/serrors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const secret = "test-secret"

func TestMain(m *testing.M) {
	logger.Setup("development")
	os.Exit(m.Run())
}

func embedToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)

	return signed
}

func newCache(t *testing.T) *memcache.Cache {
	t.Helper()
	c := memcache.New(memcache.Options{})
	t.Cleanup(c.Close)

	return c
}

var perms = neris.UserPermissions{Entities: map[string]neris.EntityPermissions{ //nolint: gochecknoglobals
	"FD2": {Resources: neris.Resources{"INCIDENT": {"READ"}}},
	"FD1": {Resources: neris.Resources{"INCIDENT": {"WRITE", "READ"}}},
	"FD3": {Resources: neris.Resources{"STATION": {"READ"}}},
}}

func TestPermissionsAndCache_fetchesAndCaches(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mockneris.NewMockClient(ctrl)
	c := newCache(t)

	m := auth.New(c, client, auth.Options{CacheKey: "neris_id_dept_list", Context: "dev", SecretKey: secret})
	client.EXPECT().UserPermissions(gomock.Any(), "user-1", "upstream-token").Return(perms, nil).Times(1)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+embedToken(t, secret, jwt.MapClaims{
		"sub": "user-1", "access_token": "upstream-token",
	}))

	res, err := m.PermissionsAndCache(ctx, r, "")
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, []string{"FD1", "FD2"}, res.Value)
	require.Len(t, res.SessionID, 43)

	stored, err := m.Value(ctx, res.SessionID, "neris_id_dept_list")
	require.NoError(t, err)
	require.Equal(t, []any{"FD1", "FD2"}, stored)

	// second request with the session short circuits
	again, err := m.PermissionsAndCache(ctx, httptest.NewRequest(http.MethodGet, "/", nil), res.SessionID)
	require.NoError(t, err)
	require.True(t, again.Cached)
	require.Equal(t, res.SessionID, again.SessionID)
	require.Equal(t, []any{"FD1", "FD2"}, again.Value)

	lookup := auth.Lookup(ctx, c, res.SessionID)
	v, ok := lookup("neris_id_dept_list")
	require.True(t, ok)
	require.Equal(t, []any{"FD1", "FD2"}, v)
	_, ok = lookup("other")
	require.False(t, ok)
}

func TestPermissionsAndCache_queryToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockneris.NewMockClient(ctrl)
	m := auth.New(newCache(t), client, auth.Options{
		CacheKey:  "ids",
		SecretKey: secret,
		Processor: auth.NerisIDsByActionResource("STATION", "READ"),
	})
	client.EXPECT().UserPermissions(gomock.Any(), "u", "").Return(perms, nil)

	r := httptest.NewRequest(http.MethodGet, "/?token="+embedToken(t, secret, jwt.MapClaims{"sub": "u"}), nil)
	res, err := m.PermissionsAndCache(context.Background(), r, "")
	require.NoError(t, err)
	require.Equal(t, []string{"FD3"}, res.Value)
}

func TestPermissionsAndCache_mockIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockneris.NewMockClient(ctrl)

	m := auth.New(newCache(t), client, auth.Options{
		CacheKey: "ids",
		Context:  auth.LocalContext,
		MockIDs:  `["FD9", "FD8"]`,
	})
	res, err := m.PermissionsAndCache(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), "")
	require.NoError(t, err)
	require.Equal(t, []any{"FD9", "FD8"}, res.Value)
	require.NotEmpty(t, res.SessionID)

	// mock ids only apply to the local context
	m = auth.New(newCache(t), client, auth.Options{CacheKey: "ids", Context: "prod", MockIDs: `["FD9"]`, SecretKey: secret})
	_, err = m.PermissionsAndCache(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), "")
	require.ErrorIs(t, err, serrors.ErrUnauthorized)
}

func TestPermissionsAndCache_unauthorized(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{name: "no token", token: func(*testing.T) string { return "" }},
		{name: "garbage", token: func(*testing.T) string { return "not-a-jwt" }},
		{name: "wrong key", token: func(t *testing.T) string {
			return embedToken(t, "other", jwt.MapClaims{"sub": "u"})
		}},
		{name: "expired", token: func(t *testing.T) string {
			return embedToken(t, secret, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()})
		}},
		{name: "no subject", token: func(t *testing.T) string {
			return embedToken(t, secret, jwt.MapClaims{"access_token": "a"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := auth.New(newCache(t), mockneris.NewMockClient(ctrl), auth.Options{CacheKey: "ids", SecretKey: secret})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tok := tt.token(t); tok != "" {
				r.Header.Set("Authorization", "Bearer "+tok)
			}
			_, err := m.PermissionsAndCache(context.Background(), r, "")
			require.ErrorIs(t, err, serrors.ErrUnauthorized)
		})
	}
}

func TestPermissionsAndCache_apiFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockneris.NewMockClient(ctrl)
	c := newCache(t)
	m := auth.New(c, client, auth.Options{CacheKey: "ids", SecretKey: secret})
	client.EXPECT().UserPermissions(gomock.Any(), "u", "a").
		Return(neris.UserPermissions{}, serrors.With(serrors.ErrUnauthorized, "403"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+embedToken(t, secret, jwt.MapClaims{"sub": "u", "access_token": "a"}))
	_, err := m.PermissionsAndCache(context.Background(), r, "")
	require.ErrorIs(t, err, serrors.ErrUnauthorized)
	require.Zero(t, c.Len())
}

func TestPermissionsAndCache_cacheErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockcache.NewMockCache(ctrl)
	m := auth.New(c, mockneris.NewMockClient(ctrl), auth.Options{
		CacheKey: "ids", Context: auth.LocalContext, MockIDs: `["FD1"]`, TTL: time.Minute,
	})

	c.EXPECT().Get(gomock.Any(), auth.Key("old", "ids")).Return(nil, errors.New("connection refused"))
	c.EXPECT().Set(gomock.Any(), gomock.Any(), []byte(`["FD1"]`), time.Minute).Return(errors.New("connection refused"))

	_, err := m.PermissionsAndCache(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), "old")
	require.Error(t, err)
}

func TestValue(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)

	_, err := auth.Value(ctx, c, "", "ids")
	require.ErrorIs(t, err, cache.ErrMiss)
	_, err = auth.Value(ctx, c, "sid", "ids")
	require.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "neris:auth:sid:ids", []byte(`{"a": 1}`), 0))
	v, err := auth.Value(ctx, c, "sid", "ids")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": float64(1)}, v)
}

func TestProcessors(t *testing.T) {
	require.Equal(t, []string{"FD1", "FD2"}, auth.IncidentReadNerisIDs(perms))
	require.Equal(t, []string{"FD1"}, auth.NerisIDsByActionResource("INCIDENT", "WRITE")(perms))
	require.Equal(t, []string{}, auth.IncidentReadNerisIDs(neris.UserPermissions{}))
}
