package poi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
	"github.com/ironsheep/ramen-tools-mcp/internal/poi/dto"
)

// DefaultNominatimURL is the public Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// shopAddressKeys are the address entries that name an eating place, in
// order of preference.
var shopAddressKeys = []string{"restaurant", "cafe", "fast_food"}

// ReverseGeocoder looks up the eating place at a coordinate.
type ReverseGeocoder struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// NewReverseGeocoder returns a Nominatim client. Empty values take the
// defaults; Nominatim's usage policy requires a real User-Agent.
func NewReverseGeocoder(baseURL, userAgent string, httpClient *http.Client, logger *slog.Logger) *ReverseGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultHTTPTimeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReverseGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      httpClient,
		logger:    logger,
	}
}

// ShopAt returns the restaurant, cafe or fast-food name Nominatim reports
// for c. Plain addresses are never returned.
func (g *ReverseGeocoder) ShopAt(ctx context.Context, c geo.Coordinate) (string, bool, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', 7, 64))
	q.Set("lon", strconv.FormatFloat(c.Lon, 'f', 7, 64))
	q.Set("accept-language", "ja")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to build reverse request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	res, err := g.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("reverse geocode failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			g.logger.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return "", false, fmt.Errorf("nominatim http %d: %w", res.StatusCode, ErrStatus)
	}

	var body dto.NominatimReverse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", false, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if body.Error != "" {
		return "", false, nil
	}

	for _, key := range shopAddressKeys {
		if name := strings.TrimSpace(body.Address[key]); name != "" {
			return name, true, nil
		}
	}
	return "", false, nil
}
