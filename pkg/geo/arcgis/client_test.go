package arcgis_test

import (
	"context"
	"errors"
	"io"
	"nerisdash/pkg/geo"
	"nerisdash/pkg/geo/arcgis"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func respond(status int, body string) (*http.Response, error) {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}, nil
}

func newClient(fn rtFunc) *arcgis.Client {
	return arcgis.New(&http.Client{Transport: fn}, "key", "https://services.example.com/FeatureServer/", "")
}

func TestQueryLayer(t *testing.T) {
	c := newClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, "services.example.com", r.URL.Host)
		require.Equal(t, "/FeatureServer/2/query", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "neris_id = 'FD1'", q.Get("where"))
		require.Equal(t, "name", q.Get("outFields"))
		require.Equal(t, "geojson", q.Get("f"))
		require.Equal(t, "true", q.Get("returnGeometry"))
		require.Empty(t, q.Get("token"))

		return respond(http.StatusOK, `{"type":"FeatureCollection","features":[{"type":"Feature"}]}`)
	})

	raw, err := c.QueryLayer(context.Background(), geo.LayerQuery{Layer: 2, Where: geo.Eq("neris_id", "FD1"), OutFields: "name"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"FeatureCollection","features":[{"type":"Feature"}]}`, string(raw))
}

func TestSuggest(t *testing.T) {
	c := newClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, "geocode-api.arcgis.com", r.URL.Host)
		require.True(t, strings.HasSuffix(r.URL.Path, "/GeocodeServer/suggest"))
		q := r.URL.Query()
		require.Equal(t, "123 Main", q.Get("text"))
		require.Equal(t, "Address", q.Get("category"))
		require.Equal(t, "USA", q.Get("countryCode"))
		require.Equal(t, "key", q.Get("token"))

		return respond(http.StatusOK, `{"suggestions":[{"text":"123 Main St, Springfield","magicKey":"mk1","isCollection":false}]}`)
	})

	got, err := c.Suggest(context.Background(), "123 Main", "Address")
	require.NoError(t, err)
	require.Equal(t, []geo.Suggestion{{Text: "123 Main St, Springfield", MagicKey: "mk1"}}, got)
}

func TestFindAddress(t *testing.T) {
	c := newClient(func(r *http.Request) (*http.Response, error) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/findAddressCandidates"))
		q := r.URL.Query()
		require.Equal(t, "123 Main St", q.Get("SingleLine"))
		require.Equal(t, "mk1", q.Get("magicKey"))

		return respond(http.StatusOK, `{"candidates":[{"address":"123 Main St","location":{"x":-89.6,"y":39.8},"score":100}]}`)
	})

	loc, err := c.FindAddress(context.Background(), "123 Main St", "mk1")
	require.NoError(t, err)
	require.Equal(t, &geo.Location{Address: "123 Main St", X: -89.6, Y: 39.8}, loc)

	empty := newClient(func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{"candidates":[]}`)
	})
	loc, err = empty.FindAddress(context.Background(), "nowhere", "")
	require.NoError(t, err)
	require.Nil(t, loc)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   rtFunc
	}{
		{name: "status", fn: func(*http.Request) (*http.Response, error) { return respond(http.StatusBadGateway, "") }},
		{name: "api error", fn: func(*http.Request) (*http.Response, error) {
			return respond(http.StatusOK, `{"error":{"code":498,"message":"Invalid token."}}`)
		}},
		{name: "transport", fn: func(*http.Request) (*http.Response, error) { return nil, errors.New("boom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newClient(tt.fn).Suggest(context.Background(), "12345 Elm", "")
			require.Error(t, err)
		})
	}
}
