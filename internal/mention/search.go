package mention

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jobpad/jobpad/internal/model"
)

// Aggregator fans a mention search out across record kinds in parallel and
// returns one ranked, truncated list.
type Aggregator struct {
	searcher model.RecordSearcher
	logger   *slog.Logger
}

// NewAggregator wires the aggregator with its record provider.
func NewAggregator(searcher model.RecordSearcher, logger *slog.Logger) *Aggregator {
	return &Aggregator{searcher: searcher, logger: logger}
}

// Search queries each requested kind concurrently, concatenates the hits,
// ranks them, and truncates to filter.Limit. A failing kind contributes an
// empty slice rather than failing the whole search; the suggestion list
// degrades instead of breaking.
func (a *Aggregator) Search(ctx context.Context, ownerID string, filter model.SearchFilter) ([]model.SearchResult, error) {
	kinds := model.Kinds
	if filter.Kind != "" && filter.Kind != model.KindAll {
		kinds = []model.RecordKind{filter.Kind}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	perKind := make([][]model.SearchResult, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			hits, err := a.searcher.SearchRecords(gctx, ownerID, kind, filter.Query, limit)
			if err != nil {
				a.logger.Warn("record search failed", "kind", kind, "error", err)
				return nil
			}
			perKind[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.SearchResult
	for _, hits := range perKind {
		all = append(all, hits...)
	}

	Rank(all, filter.Query)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Rank orders hits for a query: exact title matches first, then title-prefix
// matches, then everything else. The sort is stable so provider order
// (most-recent-first) is preserved within each band. Matching is
// case-insensitive. An empty query leaves provider order untouched.
func Rank(hits []model.SearchResult, query string) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return rankBand(hits[i], q) < rankBand(hits[j], q)
	})
}

func rankBand(hit model.SearchResult, q string) int {
	title := strings.ToLower(hit.Title)
	switch {
	case title == q:
		return 0
	case strings.HasPrefix(title, q):
		return 1
	default:
		return 2
	}
}
