package poi

import (
	"context"
	"log/slog"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
)

// DefaultRadii are the escalating search radii in meters.
var DefaultRadii = []int{500, 2000, 5000}

// DefaultMinCandidates is how many candidates stop the escalation.
const DefaultMinCandidates = 3

// Searcher escalates a Finder over widening radii.
type Searcher struct {
	finder        Finder
	radii         []int
	minCandidates int
	logger        *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithRadii replaces DefaultRadii.
func WithRadii(radii ...int) SearcherOption {
	return func(s *Searcher) { s.radii = radii }
}

// WithMinCandidates replaces DefaultMinCandidates.
func WithMinCandidates(n int) SearcherOption {
	return func(s *Searcher) { s.minCandidates = n }
}

// WithSearcherLogger sets the logger.
func WithSearcherLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) { s.logger = logger }
}

// NewSearcher returns a Searcher over finder.
func NewSearcher(finder Finder, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		finder:        finder,
		radii:         DefaultRadii,
		minCandidates: DefaultMinCandidates,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collect searches the first radius and each further radius only while
// fewer than minCandidates have been collected. A name found at a smaller
// radius is not added again; repeats within one radius are all kept. A failed radius is logged and contributes
// nothing.
func (s *Searcher) Collect(ctx context.Context, center geo.Coordinate) []Candidate {
	var all []Candidate
	seen := make(map[string]bool)

	for i, radius := range s.radii {
		if i > 0 && len(all) >= s.minCandidates {
			break
		}
		if ctx.Err() != nil {
			s.logger.Debug("candidate search cancelled", "radius", radius)
			break
		}

		found, err := s.finder.Search(ctx, center, radius)
		if err != nil {
			s.logger.Warn("candidate search failed", "radius", radius, "error", err)
			continue
		}

		added := 0
		for _, c := range found {
			if seen[c.Name] {
				continue
			}
			all = append(all, c)
			added++
		}
		for _, c := range all[len(all)-added:] {
			seen[c.Name] = true
		}
		s.logger.Debug("candidate search", "radius", radius, "found", len(found), "added", added, "total", len(all))
	}
	return all
}
