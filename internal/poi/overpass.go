package poi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
	"github.com/ironsheep/ramen-tools-mcp/internal/poi/dto"
	"github.com/ironsheep/ramen-tools-mcp/internal/vocab"
)

// Defaults for the public Overpass instance.
const (
	DefaultOverpassURL  = "https://overpass-api.de/api/interpreter"
	DefaultQueryTimeout = 15 * time.Second
	DefaultHTTPTimeout  = 20 * time.Second
	DefaultUserAgent    = "ramen-tools-mcp"
)

// ErrStatus is returned for non-200 responses.
var ErrStatus = errors.New("unexpected status")

// Config holds the Overpass endpoint settings.
type Config struct {
	URL string

	// QueryTimeout is sent to the server as [timeout:N].
	QueryTimeout time.Duration

	// Cuisine, when set, is a regular expression the cuisine tag must
	// match. Empty accepts any cuisine.
	Cuisine string

	UserAgent string
}

// Client queries Overpass.
type Client struct {
	cfg    Config
	http   *http.Client
	vocab  vocab.Vocabulary
	logger *slog.Logger
}

var _ Finder = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithVocabulary replaces the default keyword and denylist tables.
func WithVocabulary(v vocab.Vocabulary) ClientOption {
	return func(c *Client) { c.vocab = v }
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient returns an Overpass client. A nil httpClient gets
// NewHTTPClient(DefaultHTTPTimeout).
func NewClient(cfg Config, httpClient *http.Client, opts ...ClientOption) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultOverpassURL
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultHTTPTimeout)
	}

	c := &Client{cfg: cfg, http: httpClient, vocab: vocab.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient creates an HTTP client for the external APIs. Timeout
// bounds the whole request.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

// Query builds the Overpass QL for a radius search.
func (c *Client) Query(center geo.Coordinate, radius int) string {
	filter := `["cuisine"]`
	if c.cfg.Cuisine != "" {
		filter = fmt.Sprintf(`["cuisine"~%q]`, c.cfg.Cuisine)
	}
	around := fmt.Sprintf("(around:%d,%f,%f)", radius, center.Lat, center.Lon)
	return fmt.Sprintf("[out:json][timeout:%d];\n(\n  node%s%s;\n  way%s%s;\n);\nout body center;",
		int(c.cfg.QueryTimeout.Seconds()), filter, around, filter, around)
}

// Search returns the candidates within radius meters of center, in the
// order Overpass returned them.
func (c *Client) Search(ctx context.Context, center geo.Coordinate, radius int) ([]Candidate, error) {
	form := url.Values{}
	form.Set("data", c.Query(center, radius))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("overpass http %d: %w", res.StatusCode, ErrStatus)
	}

	var body dto.OverpassResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	if body.Remark != "" {
		c.logger.Debug("overpass remark", "remark", body.Remark)
	}

	candidates := make([]Candidate, 0, len(body.Elements))
	for _, el := range body.Elements {
		cand, ok := c.toCandidate(center, el)
		if !ok {
			continue
		}
		candidates = append(candidates, cand)
	}

	c.logger.Debug("overpass search", "radius", radius, "elements", len(body.Elements), "candidates", len(candidates))
	return candidates, nil
}

func (c *Client) toCandidate(center geo.Coordinate, el dto.OverpassElement) (Candidate, bool) {
	name := strings.TrimSpace(el.Tags["name"])
	if name == "" {
		name = strings.TrimSpace(el.Tags["name:ja"])
	}
	if name == "" {
		return Candidate{}, false
	}
	if c.vocab.IsExcluded(name) {
		c.logger.Debug("excluded chain", "name", name)
		return Candidate{}, false
	}

	point, ok := position(el)
	if !ok {
		c.logger.Debug("element without position", "type", el.Type, "id", el.ID)
		return Candidate{}, false
	}

	cuisine := el.Tags["cuisine"]
	return Candidate{
		Name:           name,
		DistanceMeters: center.DistanceTo(point),
		Coordinate:     point,
		IsRamen:        IsRamen(name, cuisine, c.vocab.RamenNameKeywords),
		Cuisine:        cuisine,
		Source:         SourceOverpass,
	}, true
}

// position resolves a representative point. Ways use their center.
func position(el dto.OverpassElement) (geo.Coordinate, bool) {
	if el.Type == "way" || el.Type == "relation" {
		if el.Center == nil {
			return geo.Coordinate{}, false
		}
		return geo.Coordinate{Lat: el.Center.Lat, Lon: el.Center.Lon}, true
	}
	if el.Lat == nil || el.Lon == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: *el.Lat, Lon: *el.Lon}, true
}

// IsRamen reports whether a place is a ramen shop: its cuisine tag
// mentions ramen or its name contains one of keywords.
func IsRamen(name, cuisine string, keywords []string) bool {
	if strings.Contains(strings.ToLower(cuisine), "ramen") {
		return true
	}
	return vocab.ContainsAny(name, keywords)
}
