// Package arcgis provides a geo.ArcGIS backed by the ArcGIS REST API.
package arcgis

import (
	"context"
	"encoding/json"
	"io"
	"nerisdash/pkg/geo"
	"nerisdash/pkg/metrics"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// DefaultGeocoderURL is the ArcGIS World geocoding service.
const DefaultGeocoderURL = "https://geocode-api.arcgis.com/arcgis/rest/services/World/GeocodeServer"

const country = "USA"

// Client calls a feature server and a geocoding service.
type Client struct {
	httpClient    *http.Client
	apiKey        string
	featureServer string
	geocoder      string
}

// New builds a Client. An empty geocoderURL means DefaultGeocoderURL.
func New(httpClient *http.Client, apiKey, featureServerURL, geocoderURL string) *Client {
	if geocoderURL == "" {
		geocoderURL = DefaultGeocoderURL
	}

	return &Client{
		httpClient:    httpClient,
		apiKey:        apiKey,
		featureServer: strings.TrimRight(featureServerURL, "/"),
		geocoder:      strings.TrimRight(geocoderURL, "/"),
	}
}

// QueryLayer implements geo.ArcGIS.
func (c *Client) QueryLayer(ctx context.Context, q geo.LayerQuery) (json.RawMessage, error) {
	params := url.Values{
		"where":          {q.Where},
		"outFields":      {q.OutFields},
		"f":              {"geojson"},
		"returnGeometry": {"true"},
	}
	body, err := c.get(ctx, c.featureServer+"/"+strconv.Itoa(q.Layer)+"/query", params, false)
	if err != nil {
		return nil, errors.Wrapf(err, "query layer %d", q.Layer)
	}

	return body, nil
}

type suggestResponse struct {
	Suggestions []struct {
		Text     string `json:"text"`
		MagicKey string `json:"magicKey"`
	} `json:"suggestions"`
}

// Suggest implements geo.ArcGIS.
func (c *Client) Suggest(ctx context.Context, text, category string) ([]geo.Suggestion, error) {
	params := url.Values{
		"text":        {text},
		"countryCode": {country},
		"f":           {"json"},
	}
	if category != "" {
		params.Set("category", category)
	}
	body, err := c.get(ctx, c.geocoder+"/suggest", params, true)
	if err != nil {
		return nil, errors.Wrap(err, "suggest")
	}

	var resp suggestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode suggestions")
	}

	out := make([]geo.Suggestion, 0, len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		out = append(out, geo.Suggestion{Text: s.Text, MagicKey: s.MagicKey})
	}

	return out, nil
}

type candidatesResponse struct {
	Candidates []struct {
		Address  string `json:"address"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
	} `json:"candidates"`
}

// FindAddress implements geo.ArcGIS.
func (c *Client) FindAddress(ctx context.Context, address, magicKey string) (*geo.Location, error) {
	params := url.Values{
		"SingleLine":    {address},
		"sourceCountry": {country},
		"maxLocations":  {"1"},
		"f":             {"json"},
	}
	if magicKey != "" {
		params.Set("magicKey", magicKey)
	}
	body, err := c.get(ctx, c.geocoder+"/findAddressCandidates", params, true)
	if err != nil {
		return nil, errors.Wrap(err, "find address")
	}

	var resp candidatesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode candidates")
	}
	if len(resp.Candidates) == 0 {
		return nil, nil //nolint: nilnil
	}

	cand := resp.Candidates[0]

	return &geo.Location{Address: cand.Address, X: cand.Location.X, Y: cand.Location.Y}, nil
}

// apiError is the error body ArcGIS returns with a 200 status.
type apiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, auth bool) ([]byte, error) {
	if auth && c.apiKey != "" {
		params.Set("token", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamDuration.WithLabelValues("arcgis", "error").Observe(time.Since(start).Seconds())

		return nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	metrics.UpstreamDuration.WithLabelValues("arcgis", strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
		return nil, errors.Errorf("arcgis error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
	}

	return body, nil
}

// Ensure Client conforms to the geo.ArcGIS interface at compile time.
var _ geo.ArcGIS = (*Client)(nil)
